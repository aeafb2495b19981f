// Package rng constructs the deterministic random generators used by the
// scheduling strategies. Every stochastic component receives an explicit
// *rand.Rand built here; nothing in the engine touches a process-global
// generator, so a run is reproducible from its seed alone.
package rng

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"
)

// New returns a generator seeded with seed. The same seed always yields the
// same sequence.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DeriveSeed maps a base seed plus the identity of a run (strategy name,
// workload name, replicate index rendered as strings) onto a sub-seed.
// Identical identities always derive the same seed; any changed part derives
// an unrelated one.
func DeriveSeed(base uint64, parts ...string) uint64 {
	var buf bytes.Buffer
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], base)
	buf.Write(b[:])
	for _, p := range parts {
		// Length prefix keeps ("ab","c") and ("a","bc") distinct.
		binary.LittleEndian.PutUint64(b[:], uint64(len(p)))
		buf.Write(b[:])
		buf.WriteString(p)
	}
	sum := blake2b.Sum256(buf.Bytes())
	return binary.LittleEndian.Uint64(sum[:8])
}

// NewDerived is shorthand for New(DeriveSeed(base, parts...)).
func NewDerived(base uint64, parts ...string) *rand.Rand {
	return New(DeriveSeed(base, parts...))
}

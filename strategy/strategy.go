// Package strategy implements the scheduling strategies of the engine: the
// deterministic greedy heuristics (Min-Min, First-Fit), the single-objective
// metaheuristics (genetic algorithm, particle swarm and its enhanced
// variant), the multi-objective NSGA-II, and the hybrid strategy combining
// fog placement with evolutionary refinement. All strategies share one
// invocation contract and report numbers produced by the decoder, so their
// results are directly comparable.
package strategy

import (
	"context"

	"fogsched/node"
	"fogsched/workflow"
)

// Strategy names as registered in the default registry.
const (
	NameMinMin      = "minmin"
	NameFirstFit    = "firstfit"
	NameGA          = "ga"
	NamePSO         = "pso"
	NameEnhancedPSO = "epso"
	NameNSGA2       = "nsga2"
	NameHFCO        = "hfco"
)

// Strategy schedules a workflow onto a node pool. Implementations are
// stateless between calls: everything a run needs travels in the Config,
// and all randomness flows from the seeded generator derived from it.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string
	// Schedule computes an assignment of all tasks. The context is consumed
	// by instrumentation wrappers and checked between iterations; a run
	// never blocks on anything but CPU.
	Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error)
}

// Progress is a per-iteration snapshot of an evolutionary run.
type Progress struct {
	Strategy    string  `json:"strategy"`
	Iteration   int     `json:"iteration"`
	Best        float64 `json:"best"`
	Evaluations int     `json:"evaluations"`
}

// ProgressFunc receives Progress snapshots. Callbacks run synchronously in
// the strategy loop and must be fast.
type ProgressFunc func(Progress)

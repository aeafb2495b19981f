// Package generator produces seeded synthetic workflows, node pools and
// candidate sites for benchmarks and ad-hoc scheduling requests. Every
// output is a pure function of its spec and seed: the same pair always
// yields the same workload, byte for byte.
package generator

import (
	"fmt"
	"math/rand/v2"

	"fogsched/node"
	"fogsched/rng"
	"fogsched/validation"
	"fogsched/workflow"
)

// Range is an inclusive sampling interval. Max at or below Min collapses
// the interval to the single value Min.
type Range struct {
	Min float64 `json:"min" yaml:"min" mapstructure:"min"`
	Max float64 `json:"max" yaml:"max" mapstructure:"max"`
}

func (r Range) sample(rnd *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rnd.Float64()*(r.Max-r.Min)
}

// WorkflowSpec bounds a layered random DAG. Call ApplyDefaults before
// Validate; Workflow does both on entry.
type WorkflowSpec struct {
	// Tasks is the total task count.
	Tasks int `json:"tasks" yaml:"tasks" mapstructure:"tasks" validate:"gte=1"`
	// Width is the maximum number of tasks per layer.
	Width int `json:"width" yaml:"width" mapstructure:"width" validate:"gte=1"`
	// EdgeDensity is the probability of a dependency between a task and
	// each node of the previous layer, beyond the one guaranteed parent.
	EdgeDensity float64 `json:"edge_density" yaml:"edge_density" mapstructure:"edge_density" validate:"gte=0,lte=1"`
	// Length bounds the computational demand in million instructions.
	Length Range `json:"length" yaml:"length" mapstructure:"length"`
	// Data bounds the input and output sizes in MB.
	Data Range `json:"data" yaml:"data" mapstructure:"data"`
	// PEsMax is the largest processing-element requirement of a task.
	PEsMax int `json:"pes_max" yaml:"pes_max" mapstructure:"pes_max" validate:"gte=1"`
	// DeadlineSlack scales the per-layer finish estimate into deadlines.
	DeadlineSlack float64 `json:"deadline_slack" yaml:"deadline_slack" mapstructure:"deadline_slack" validate:"gt=0"`
	// ReferenceMIPS is the capacity the deadline estimate assumes.
	ReferenceMIPS float64 `json:"reference_mips" yaml:"reference_mips" mapstructure:"reference_mips" validate:"gt=0"`
}

// ApplyDefaults fills unset fields with the documented defaults.
func (s *WorkflowSpec) ApplyDefaults() {
	if s.Tasks == 0 {
		s.Tasks = 20
	}
	if s.Width == 0 {
		s.Width = 4
	}
	if s.EdgeDensity == 0 {
		s.EdgeDensity = 0.5
	}
	if s.Length == (Range{}) {
		s.Length = Range{Min: 500, Max: 2000}
	}
	if s.Data == (Range{}) {
		s.Data = Range{Min: 5, Max: 50}
	}
	if s.PEsMax == 0 {
		s.PEsMax = 2
	}
	if s.DeadlineSlack == 0 {
		s.DeadlineSlack = 2.0
	}
	if s.ReferenceMIPS == 0 {
		s.ReferenceMIPS = 1000
	}
}

// Validate checks the spec after defaults have been applied.
func (s WorkflowSpec) Validate() error {
	return validation.Validate(s)
}

// Workflow generates a layered random DAG. The first layer has no parents;
// every later task depends on at least one task of the previous layer, plus
// extra previous-layer parents drawn with probability EdgeDensity. Deadlines
// grow with layer depth: layer finish estimates on ReferenceMIPS scaled by
// DeadlineSlack.
func Workflow(spec WorkflowSpec, seed uint64) (*workflow.Workflow, error) {
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rnd := rng.New(seed)

	// Partition task IDs into layers of 1..Width tasks.
	var layers [][]int
	next := 0
	for next < spec.Tasks {
		width := min(spec.Width, spec.Tasks-next)
		if width > 1 {
			width = 1 + rnd.IntN(width)
		}
		layer := make([]int, width)
		for i := range layer {
			layer[i] = next
			next++
		}
		layers = append(layers, layer)
	}

	b := workflow.NewBuilder()
	for li, layer := range layers {
		for _, id := range layer {
			b.AddTask(workflow.Task{
				ID:         id,
				Length:     spec.Length.sample(rnd),
				InputSize:  spec.Data.sample(rnd),
				OutputSize: spec.Data.sample(rnd),
				PEs:        1 + rnd.IntN(spec.PEsMax),
				Deadline:   0, // stamped below once the layer estimates are known
			})
		}

		if li > 0 {
			prev := layers[li-1]
			for _, id := range layer {
				b.AddDependency(prev[rnd.IntN(len(prev))], id)
				for _, p := range prev {
					if rnd.Float64() < spec.EdgeDensity {
						b.AddDependency(p, id)
					}
				}
			}
		}
	}

	wf, err := b.Build()
	if err != nil {
		return nil, err
	}

	// Layer l gets DeadlineSlack times the estimated finish of layers 0..l.
	return stampDeadlines(wf, layers, spec)
}

// stampDeadlines rebuilds the workflow with per-layer deadlines.
func stampDeadlines(wf *workflow.Workflow, layers [][]int, spec WorkflowSpec) (*workflow.Workflow, error) {
	deadline := make([]float64, wf.Size())
	finish := 0.0
	for _, layer := range layers {
		slowest := 0.0
		for _, id := range layer {
			if exec := wf.Task(id).Length / spec.ReferenceMIPS; exec > slowest {
				slowest = exec
			}
		}
		finish += slowest
		for _, id := range layer {
			deadline[id] = spec.DeadlineSlack * finish
		}
	}

	b := workflow.NewBuilder()
	for _, t := range wf.Tasks() {
		t.Deadline = deadline[t.ID]
		b.AddTask(t)
	}
	for _, e := range wf.Edges() {
		b.AddDependency(e.From, e.To)
	}
	return b.Build()
}

// ClassProfile bounds the sampled parameters of one node tier.
type ClassProfile struct {
	// Count is the number of nodes of this tier.
	Count int `json:"count" yaml:"count" mapstructure:"count" validate:"gte=0"`
	// MIPS bounds the processing capacity.
	MIPS Range `json:"mips" yaml:"mips" mapstructure:"mips"`
	// CostRate bounds the price of one busy second.
	CostRate Range `json:"cost_rate" yaml:"cost_rate" mapstructure:"cost_rate"`
	// Bandwidth bounds the network bandwidth in MB/s.
	Bandwidth Range `json:"bandwidth" yaml:"bandwidth" mapstructure:"bandwidth"`
	// Latency bounds the fixed per-message latency in seconds.
	Latency Range `json:"latency" yaml:"latency" mapstructure:"latency"`
	// PowerDraw bounds the execution power in watts.
	PowerDraw Range `json:"power_draw" yaml:"power_draw" mapstructure:"power_draw"`
	// PEs is the processing-element count of every node of the tier.
	PEs int `json:"pes" yaml:"pes" mapstructure:"pes" validate:"gte=0"`
	// Memory is the memory of every node of the tier in MB.
	Memory float64 `json:"memory" yaml:"memory" mapstructure:"memory" validate:"gte=0"`
	// Storage is the storage of every node of the tier in MB.
	Storage float64 `json:"storage" yaml:"storage" mapstructure:"storage" validate:"gte=0"`
}

// PoolSpec bounds a heterogeneous two-tier node pool.
type PoolSpec struct {
	Fog   ClassProfile `json:"fog" yaml:"fog" mapstructure:"fog"`
	Cloud ClassProfile `json:"cloud" yaml:"cloud" mapstructure:"cloud"`
}

// ApplyDefaults fills unset fields with the documented defaults: a pool of
// six constrained fog nodes and two powerful, expensive cloud nodes.
func (s *PoolSpec) ApplyDefaults() {
	if s.Fog.Count == 0 && s.Cloud.Count == 0 {
		s.Fog.Count = 6
		s.Cloud.Count = 2
	}
	applyProfileDefaults(&s.Fog, ClassProfile{
		MIPS:      Range{Min: 500, Max: 1500},
		CostRate:  Range{Min: 0.01, Max: 0.05},
		Bandwidth: Range{Min: 100, Max: 500},
		Latency:   Range{Min: 0.001, Max: 0.01},
		PowerDraw: Range{Min: 10, Max: 40},
		PEs:       4,
		Memory:    4096,
		Storage:   65536,
	})
	applyProfileDefaults(&s.Cloud, ClassProfile{
		MIPS:      Range{Min: 3000, Max: 8000},
		CostRate:  Range{Min: 0.1, Max: 0.5},
		Bandwidth: Range{Min: 500, Max: 1000},
		Latency:   Range{Min: 0.05, Max: 0.15},
		PowerDraw: Range{Min: 100, Max: 300},
		PEs:       16,
		Memory:    32768,
		Storage:   1 << 20,
	})
}

func applyProfileDefaults(p *ClassProfile, d ClassProfile) {
	if p.MIPS == (Range{}) {
		p.MIPS = d.MIPS
	}
	if p.CostRate == (Range{}) {
		p.CostRate = d.CostRate
	}
	if p.Bandwidth == (Range{}) {
		p.Bandwidth = d.Bandwidth
	}
	if p.Latency == (Range{}) {
		p.Latency = d.Latency
	}
	if p.PowerDraw == (Range{}) {
		p.PowerDraw = d.PowerDraw
	}
	if p.PEs == 0 {
		p.PEs = d.PEs
	}
	if p.Memory == 0 {
		p.Memory = d.Memory
	}
	if p.Storage == 0 {
		p.Storage = d.Storage
	}
}

// Validate checks the spec after defaults have been applied.
func (s PoolSpec) Validate() error {
	if err := validation.Validate(s); err != nil {
		return err
	}
	v := validation.New()
	v.Custom(s.Fog.Count+s.Cloud.Count >= 1, "fog.count", "pool needs at least one node")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Pool generates a heterogeneous pool: fog nodes first, cloud nodes after,
// with dense IDs in that order.
func Pool(spec PoolSpec, seed uint64) (*node.Pool, error) {
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rnd := rng.New(seed)
	nodes := make([]node.Node, 0, spec.Fog.Count+spec.Cloud.Count)
	for i := 0; i < spec.Fog.Count; i++ {
		nodes = append(nodes, sampleNode(rnd, spec.Fog, node.ClassFog, len(nodes), fmt.Sprintf("fog-%d", i)))
	}
	for i := 0; i < spec.Cloud.Count; i++ {
		nodes = append(nodes, sampleNode(rnd, spec.Cloud, node.ClassCloud, len(nodes), fmt.Sprintf("cloud-%d", i)))
	}
	return node.NewPool(nodes)
}

func sampleNode(rnd *rand.Rand, p ClassProfile, class node.Class, id int, name string) node.Node {
	return node.Node{
		ID:        id,
		Name:      name,
		Class:     class,
		MIPS:      p.MIPS.sample(rnd),
		Memory:    p.Memory,
		Bandwidth: p.Bandwidth.sample(rnd),
		Storage:   p.Storage,
		PEs:       p.PEs,
		CostRate:  p.CostRate.sample(rnd),
		Latency:   p.Latency.sample(rnd),
		PowerDraw: p.PowerDraw.sample(rnd),
	}
}

// SiteSpec bounds a set of candidate fog sites for placement.
type SiteSpec struct {
	// Count is the number of candidate sites.
	Count int `json:"count" yaml:"count" mapstructure:"count" validate:"gte=1"`
	// Profile bounds the node parameters of an opened site. Count inside
	// the profile is ignored.
	Profile ClassProfile `json:"profile" yaml:"profile" mapstructure:"profile"`
	// Latency bounds the uniform site latency estimate in seconds.
	Latency Range `json:"latency" yaml:"latency" mapstructure:"latency"`
}

// ApplyDefaults fills unset fields with the documented defaults.
func (s *SiteSpec) ApplyDefaults() {
	if s.Count == 0 {
		s.Count = 8
	}
	applyProfileDefaults(&s.Profile, ClassProfile{
		MIPS:      Range{Min: 500, Max: 1500},
		CostRate:  Range{Min: 0.01, Max: 0.05},
		Bandwidth: Range{Min: 100, Max: 500},
		Latency:   Range{Min: 0.001, Max: 0.01},
		PowerDraw: Range{Min: 10, Max: 40},
		PEs:       4,
		Memory:    4096,
		Storage:   65536,
	})
	if s.Latency == (Range{}) {
		s.Latency = Range{Min: 0.005, Max: 0.1}
	}
}

// Validate checks the spec after defaults have been applied.
func (s SiteSpec) Validate() error {
	return validation.Validate(s)
}

// Sites generates candidate fog sites. Opened nodes take their ID from the
// pool they join, so generated sites carry no IDs.
func Sites(spec SiteSpec, seed uint64) ([]node.Site, error) {
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rnd := rng.New(seed)
	sites := make([]node.Site, spec.Count)
	for i := range sites {
		n := sampleNode(rnd, spec.Profile, node.ClassFog, 0, fmt.Sprintf("site-%d", i))
		sites[i] = node.Site{Node: n, Latency: spec.Latency.sample(rnd)}
	}
	return sites, nil
}

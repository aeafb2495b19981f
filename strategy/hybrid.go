package strategy

import (
	"context"
	"time"

	"fogsched/errors"
	"fogsched/node"
	"fogsched/placement"
	"fogsched/rng"
	"fogsched/workflow"
)

// HFCO is the hybrid fog-cloud optimizer: it first opens HybridSites of the
// candidate fog sites by demand-weighted latency, merges them into the base
// pool, and then evolves assignments over the merged pool with the genetic
// loop. Both phases draw from one seeded generator.
type HFCO struct{}

// NewHFCO returns the hybrid placement-plus-evolution strategy.
func NewHFCO() *HFCO { return &HFCO{} }

// Name returns the registry name.
func (s *HFCO) Name() string { return NameHFCO }

// Schedule places fog sites and evolves assignments over the merged pool.
// A nil base pool schedules purely onto the opened sites. The Result's Pool
// field carries the merged node list the assignments refer to.
func (s *HFCO) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	start := time.Now()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Sites) == 0 {
		return nil, errors.InvalidConfig("sites", "hybrid strategy requires candidate sites")
	}

	rnd := rng.New(cfg.Seed)
	placed, err := placement.Optimize(wf, cfg.Sites, cfg.HybridSites, cfg.SwapBudget, rnd)
	if err != nil {
		return nil, err
	}

	var nodes []node.Node
	if pool != nil {
		nodes = append(nodes, pool.Nodes()...)
	}
	for _, si := range placed.Sites {
		nodes = append(nodes, cfg.Sites[si].Open(len(nodes)))
	}
	merged, err := node.NewPool(nodes)
	if err != nil {
		return nil, err
	}

	e, err := newEngine(wf, merged, cfg, rnd)
	if err != nil {
		return nil, err
	}
	best, iters, err := e.runGA(ctx, s.Name())
	if err != nil {
		return nil, err
	}

	r := newResult(s.Name(), best, e.decode(best))
	r.Pool = merged.Nodes()
	r.Evaluations = e.evals
	r.Iterations = iters
	r.Elapsed = time.Since(start)
	return r, nil
}

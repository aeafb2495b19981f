package strategy

import (
	"context"
	"time"

	"fogsched/node"
	"fogsched/rng"
	"fogsched/workflow"
)

// GA is a generational genetic algorithm over assignment vectors: tournament
// selection, uniform or one-point crossover, per-gene mutation into the
// task's feasible node set, and elitism.
type GA struct{}

// NewGA returns the genetic algorithm strategy.
func NewGA() *GA { return &GA{} }

// Name returns the registry name.
func (s *GA) Name() string { return NameGA }

// Schedule evolves assignments for Generations generations and decodes the
// best one found.
func (s *GA) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	start := time.Now()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e, err := newEngine(wf, pool, cfg, rng.New(cfg.Seed))
	if err != nil {
		return nil, err
	}

	best, iters, err := e.runGA(ctx, s.Name())
	if err != nil {
		return nil, err
	}

	r := newResult(s.Name(), best, e.decode(best))
	r.Evaluations = e.evals
	r.Iterations = iters
	r.Elapsed = time.Since(start)
	return r, nil
}

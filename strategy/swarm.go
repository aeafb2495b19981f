package strategy

import (
	"context"
	"math"
	"sort"
	"time"

	"fogsched/decoder"
	"fogsched/node"
	"fogsched/rng"
	"fogsched/workflow"
)

// PSO is particle swarm optimization over a continuous relaxation of the
// assignment space: dimension i is a position in the index range of task i's
// feasible node list, rounded to the nearest list entry on evaluation. The
// enhanced variant decays the inertia weight linearly over the run and
// periodically restarts the worst particles to keep the swarm exploring.
type PSO struct {
	enhanced bool
}

// NewPSO returns the plain particle swarm strategy.
func NewPSO() *PSO { return &PSO{} }

// NewEnhancedPSO returns the particle swarm strategy with inertia decay and
// worst-particle reseeding.
func NewEnhancedPSO() *PSO { return &PSO{enhanced: true} }

// Name returns the registry name.
func (s *PSO) Name() string {
	if s.enhanced {
		return NameEnhancedPSO
	}
	return NamePSO
}

// Schedule flies the swarm for Generations iterations and decodes the best
// position found.
func (s *PSO) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	start := time.Now()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e, err := newEngine(wf, pool, cfg, rng.New(cfg.Seed))
	if err != nil {
		return nil, err
	}

	pos, iters, err := e.runPSO(ctx, s.Name(), s.enhanced)
	if err != nil {
		return nil, err
	}

	best := e.mapAssignment(pos)
	r := newResult(s.Name(), best, e.decode(best))
	r.Evaluations = e.evals
	r.Iterations = iters
	r.Elapsed = time.Since(start)
	return r, nil
}

// particle is one swarm member. bestPos tracks its personal best position.
type particle struct {
	pos, vel []float64
	fit      float64
	bestPos  []float64
	bestFit  float64
}

// mapAssignment rounds a continuous position onto feasible node IDs.
func (e *engine) mapAssignment(pos []float64) decoder.Assignment {
	a := make(decoder.Assignment, len(pos))
	for i, x := range pos {
		idx := int(math.Round(x))
		if idx < 0 {
			idx = 0
		}
		if last := len(e.feasible[i]) - 1; idx > last {
			idx = last
		}
		a[i] = e.feasible[i][idx]
	}
	return a
}

// runPSO executes the swarm loop and returns the global best position and
// the number of iterations performed.
func (e *engine) runPSO(ctx context.Context, name string, enhanced bool) ([]float64, int, error) {
	n := len(e.feasible)
	spans := make([]float64, n)
	for i := range spans {
		spans[i] = float64(len(e.feasible[i]) - 1)
	}

	swarm := make([]particle, e.cfg.Population)
	for i := range swarm {
		p := particle{pos: make([]float64, n), vel: make([]float64, n), bestPos: make([]float64, n)}
		for d := range p.pos {
			p.pos[d] = e.rnd.Float64() * spans[d]
		}
		p.fit = e.evaluate(e.mapAssignment(p.pos))
		p.bestFit = p.fit
		copy(p.bestPos, p.pos)
		swarm[i] = p
	}

	gbestPos := make([]float64, n)
	gbestFit := math.Inf(1)
	for i := range swarm {
		if swarm[i].fit < gbestFit {
			gbestFit = swarm[i].fit
			copy(gbestPos, swarm[i].pos)
		}
	}

	stop := newStopper(e.cfg.EarlyStopWindow)
	stop.observe(gbestFit)

	iters := 0
	for iter := 1; iter <= e.cfg.Generations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, iters, err
		}

		w := e.cfg.Inertia
		if enhanced && e.cfg.Generations > 1 {
			frac := float64(iter-1) / float64(e.cfg.Generations-1)
			w -= (e.cfg.Inertia - e.cfg.InertiaFinal) * frac
		}

		for i := range swarm {
			p := &swarm[i]
			for d := 0; d < n; d++ {
				r1, r2 := e.rnd.Float64(), e.rnd.Float64()
				v := w*p.vel[d] +
					e.cfg.Cognitive*r1*(p.bestPos[d]-p.pos[d]) +
					e.cfg.Social*r2*(gbestPos[d]-p.pos[d])
				vmax := math.Max(1, spans[d])
				p.vel[d] = clampFloat(v, -vmax, vmax)
				p.pos[d] = clampFloat(p.pos[d]+p.vel[d], 0, spans[d])
			}
			p.fit = e.evaluate(e.mapAssignment(p.pos))
			if p.fit < p.bestFit {
				p.bestFit = p.fit
				copy(p.bestPos, p.pos)
			}
			if p.fit < gbestFit {
				gbestFit = p.fit
				copy(gbestPos, p.pos)
			}
		}

		if enhanced && iter%e.cfg.ReseedEvery == 0 {
			e.reseedWorst(swarm, spans, gbestPos, &gbestFit)
		}

		iters = iter
		e.progress(name, iter, gbestFit)
		if stop.observe(gbestFit) {
			break
		}
	}
	return gbestPos, iters, nil
}

// reseedWorst restarts the worst ReseedFraction of the swarm from uniform
// positions with zero velocity. The global best survives reseeding; a lucky
// restart may still improve it.
func (e *engine) reseedWorst(swarm []particle, spans []float64, gbestPos []float64, gbestFit *float64) {
	count := int(float64(len(swarm)) * e.cfg.ReseedFraction)
	if count == 0 {
		return
	}
	idx := make([]int, len(swarm))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return swarm[idx[a]].fit > swarm[idx[b]].fit })

	for _, i := range idx[:count] {
		p := &swarm[i]
		for d := range p.pos {
			p.pos[d] = e.rnd.Float64() * spans[d]
			p.vel[d] = 0
		}
		p.fit = e.evaluate(e.mapAssignment(p.pos))
		p.bestFit = p.fit
		copy(p.bestPos, p.pos)
		if p.fit < *gbestFit {
			*gbestFit = p.fit
			copy(gbestPos, p.pos)
		}
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

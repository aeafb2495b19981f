package strategy

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"fogsched/decoder"
	"fogsched/node"
	"fogsched/workflow"
)

// engine bundles the machinery shared by the evolutionary strategies: the
// decoder, the per-task feasible node lists, the variation operators and the
// evaluation bookkeeping. One engine serves one invocation.
type engine struct {
	dec      *decoder.Decoder
	feasible [][]int
	rnd      *rand.Rand
	cfg      Config
	evals    int
}

func newEngine(wf *workflow.Workflow, pool *node.Pool, cfg Config, rnd *rand.Rand) (*engine, error) {
	dec, err := decoder.New(wf, pool, cfg.Rule, cfg.Cost)
	if err != nil {
		return nil, err
	}
	feasible := pool.FeasibleSets(wf, cfg.Rule)
	// Tasks no node can host draw from the whole pool; the decoder's
	// infeasibility penalty keeps search pressure against those genes.
	var all []int
	for i := range feasible {
		if len(feasible[i]) == 0 {
			if all == nil {
				all = make([]int, pool.Size())
				for j := range all {
					all[j] = j
				}
			}
			feasible[i] = all
		}
	}
	return &engine{dec: dec, feasible: feasible, rnd: rnd, cfg: cfg}, nil
}

// decode evaluates an engine-built assignment. Such assignments are always
// in range, so the decoder cannot reject them.
func (e *engine) decode(a decoder.Assignment) *decoder.Schedule {
	e.evals++
	s, _ := e.dec.Decode(a)
	return s
}

func (e *engine) evaluate(a decoder.Assignment) float64 {
	return e.decode(a).TotalCost
}

// randomAssignment draws every gene uniformly from the task's feasible list.
func (e *engine) randomAssignment() decoder.Assignment {
	a := make(decoder.Assignment, len(e.feasible))
	for i, f := range e.feasible {
		a[i] = f[e.rnd.IntN(len(f))]
	}
	return a
}

func (e *engine) progress(name string, iter int, best float64) {
	if e.cfg.Progress != nil {
		e.cfg.Progress(Progress{Strategy: name, Iteration: iter, Best: best, Evaluations: e.evals})
	}
}

// individual is one candidate with its scalar fitness.
type individual struct {
	assign decoder.Assignment
	fit    float64
}

// tournament returns the index of the fittest among TournamentSize uniformly
// drawn candidates.
func (e *engine) tournament(pop []individual) int {
	best := e.rnd.IntN(len(pop))
	for i := 1; i < e.cfg.TournamentSize; i++ {
		c := e.rnd.IntN(len(pop))
		if pop[c].fit < pop[best].fit {
			best = c
		}
	}
	return best
}

func (e *engine) crossover(a, b decoder.Assignment) (decoder.Assignment, decoder.Assignment) {
	if e.cfg.Crossover == "onepoint" {
		return e.onePointCrossover(a, b)
	}
	return e.uniformCrossover(a, b)
}

func (e *engine) uniformCrossover(a, b decoder.Assignment) (decoder.Assignment, decoder.Assignment) {
	c1, c2 := a.Clone(), b.Clone()
	for i := range c1 {
		if e.rnd.Float64() < 0.5 {
			c1[i], c2[i] = c2[i], c1[i]
		}
	}
	return c1, c2
}

func (e *engine) onePointCrossover(a, b decoder.Assignment) (decoder.Assignment, decoder.Assignment) {
	c1, c2 := a.Clone(), b.Clone()
	if len(c1) < 2 {
		return c1, c2
	}
	cut := 1 + e.rnd.IntN(len(c1)-1)
	for i := cut; i < len(c1); i++ {
		c1[i], c2[i] = c2[i], c1[i]
	}
	return c1, c2
}

// mutate reassigns each gene with probability MutationRate to a random
// feasible node.
func (e *engine) mutate(a decoder.Assignment) {
	for i := range a {
		if e.rnd.Float64() < e.cfg.MutationRate {
			a[i] = e.feasible[i][e.rnd.IntN(len(e.feasible[i]))]
		}
	}
}

// fittest returns the index of the lowest-cost individual; ties keep the
// earliest index.
func fittest(pop []individual) int {
	best := 0
	for i := 1; i < len(pop); i++ {
		if pop[i].fit < pop[best].fit {
			best = i
		}
	}
	return best
}

// elites returns the indices of the n best individuals ordered by fitness,
// ties by position.
func elites(pop []individual, n int) []int {
	idx := make([]int, len(pop))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return pop[idx[a]].fit < pop[idx[b]].fit })
	if n > len(idx) {
		n = len(idx)
	}
	return idx[:n]
}

// stopper tracks the best value seen and signals when no improvement
// occurred for the configured window. A zero window never stops.
type stopper struct {
	window int
	best   float64
	idle   int
}

func newStopper(window int) *stopper {
	return &stopper{window: window, best: math.Inf(1)}
}

func (s *stopper) observe(v float64) bool {
	if v < s.best {
		s.best = v
		s.idle = 0
		return false
	}
	s.idle++
	return s.window > 0 && s.idle >= s.window
}

// runGA executes the shared generational loop: elitism, tournament
// selection, crossover, mutation. It returns the best assignment found and
// the number of generations performed.
func (e *engine) runGA(ctx context.Context, name string) (decoder.Assignment, int, error) {
	pop := make([]individual, e.cfg.Population)
	for i := range pop {
		a := e.randomAssignment()
		pop[i] = individual{assign: a, fit: e.evaluate(a)}
	}
	b := fittest(pop)
	best := individual{assign: pop[b].assign.Clone(), fit: pop[b].fit}

	stop := newStopper(e.cfg.EarlyStopWindow)
	stop.observe(best.fit)

	iters := 0
	for gen := 1; gen <= e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, iters, err
		}

		next := make([]individual, 0, e.cfg.Population)
		for _, idx := range elites(pop, e.cfg.Elitism) {
			next = append(next, individual{assign: pop[idx].assign.Clone(), fit: pop[idx].fit})
		}
		for len(next) < e.cfg.Population {
			p1 := pop[e.tournament(pop)].assign
			p2 := pop[e.tournament(pop)].assign
			var c1, c2 decoder.Assignment
			if e.rnd.Float64() < e.cfg.CrossoverRate {
				c1, c2 = e.crossover(p1, p2)
			} else {
				c1, c2 = p1.Clone(), p2.Clone()
			}
			e.mutate(c1)
			next = append(next, individual{assign: c1, fit: e.evaluate(c1)})
			if len(next) < e.cfg.Population {
				e.mutate(c2)
				next = append(next, individual{assign: c2, fit: e.evaluate(c2)})
			}
		}
		pop = next
		iters = gen

		g := fittest(pop)
		if pop[g].fit < best.fit {
			best = individual{assign: pop[g].assign.Clone(), fit: pop[g].fit}
		}
		e.progress(name, gen, best.fit)
		if stop.observe(pop[g].fit) {
			break
		}
	}
	return best.assign, iters, nil
}

package strategy

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"fogsched/decoder"
	"fogsched/node"
	"fogsched/rng"
	"fogsched/workflow"
)

// NSGA2 is the elitist non-dominated sorting genetic algorithm over three
// minimized objectives: total cost, makespan and missed-deadline count. The
// returned Result carries the whole first front; the representative schedule
// is chosen by Config.ParetoPick.
type NSGA2 struct{}

// NewNSGA2 returns the multi-objective strategy.
func NewNSGA2() *NSGA2 { return &NSGA2{} }

// Name returns the registry name.
func (s *NSGA2) Name() string { return NameNSGA2 }

// Schedule evolves the population and decodes the representative of the
// final first front.
func (s *NSGA2) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	start := time.Now()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e, err := newEngine(wf, pool, cfg, rng.New(cfg.Seed))
	if err != nil {
		return nil, err
	}

	pop, iters, err := e.runNSGA(ctx, s.Name())
	if err != nil {
		return nil, err
	}

	var front []nsgaIndividual
	for i := range pop {
		if pop[i].rank == 0 {
			front = append(front, pop[i])
		}
	}
	rep := front[pickRepresentative(front, cfg.ParetoPick)]

	r := newResult(s.Name(), rep.assign, e.decode(rep.assign))
	r.Front = frontMembers(front)
	r.Evaluations = e.evals
	r.Iterations = iters
	r.Elapsed = time.Since(start)
	return r, nil
}

// nsgaIndividual is one candidate with its objective vector, non-domination
// rank and crowding distance.
type nsgaIndividual struct {
	assign decoder.Assignment
	obj    [3]float64
	rank   int
	crowd  float64
}

// objectives decodes the assignment into (total cost, makespan, missed
// deadlines).
func (e *engine) objectives(a decoder.Assignment) [3]float64 {
	s := e.decode(a)
	missed := 0
	for id := range s.Tasks {
		if s.Tasks[id].Finish > e.dec.Workflow().Task(id).Deadline {
			missed++
		}
	}
	return [3]float64{s.TotalCost, s.Makespan(), float64(missed)}
}

// dominates reports whether a is at least as good as b in every objective
// and strictly better in at least one.
func dominates(a, b [3]float64) bool {
	better := false
	for m := 0; m < 3; m++ {
		if a[m] > b[m] {
			return false
		}
		if a[m] < b[m] {
			better = true
		}
	}
	return better
}

// fastNonDominatedSort partitions the population into fronts of indices and
// stamps each individual's rank.
func fastNonDominatedSort(pop []nsgaIndividual) [][]int {
	n := len(pop)
	dominated := make([][]int, n)
	count := make([]int, n)

	var first []int
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if p == q {
				continue
			}
			if dominates(pop[p].obj, pop[q].obj) {
				dominated[p] = append(dominated[p], q)
			} else if dominates(pop[q].obj, pop[p].obj) {
				count[p]++
			}
		}
		if count[p] == 0 {
			pop[p].rank = 0
			first = append(first, p)
		}
	}

	fronts := [][]int{first}
	for i := 0; len(fronts[i]) > 0; i++ {
		var next []int
		for _, p := range fronts[i] {
			for _, q := range dominated[p] {
				count[q]--
				if count[q] == 0 {
					pop[q].rank = i + 1
					next = append(next, q)
				}
			}
		}
		fronts = append(fronts, next)
	}
	return fronts[:len(fronts)-1]
}

// crowdingAssign computes crowding distances within one front. Boundary
// candidates get infinite distance; degenerate or infinite objective ranges
// contribute nothing.
func crowdingAssign(pop []nsgaIndividual, front []int) {
	for _, i := range front {
		pop[i].crowd = 0
	}
	if len(front) <= 2 {
		for _, i := range front {
			pop[i].crowd = math.Inf(1)
		}
		return
	}

	idx := append([]int(nil), front...)
	for m := 0; m < 3; m++ {
		sort.SliceStable(idx, func(a, b int) bool {
			if pop[idx[a]].obj[m] != pop[idx[b]].obj[m] {
				return pop[idx[a]].obj[m] < pop[idx[b]].obj[m]
			}
			return idx[a] < idx[b]
		})
		pop[idx[0]].crowd = math.Inf(1)
		pop[idx[len(idx)-1]].crowd = math.Inf(1)

		span := pop[idx[len(idx)-1]].obj[m] - pop[idx[0]].obj[m]
		if span == 0 || math.IsInf(span, 0) {
			continue
		}
		for k := 1; k < len(idx)-1; k++ {
			pop[idx[k]].crowd += (pop[idx[k+1]].obj[m] - pop[idx[k-1]].obj[m]) / span
		}
	}
}

// crowdedLess orders by rank, then by larger crowding distance.
func crowdedLess(a, b nsgaIndividual) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.crowd > b.crowd
}

// crowdedTournament picks the crowded-comparison winner of two uniformly
// drawn candidates.
func (e *engine) crowdedTournament(pop []nsgaIndividual) int {
	a, b := e.rnd.IntN(len(pop)), e.rnd.IntN(len(pop))
	if crowdedLess(pop[b], pop[a]) {
		return b
	}
	return a
}

// rankAndCrowd runs the full sort and crowding pass over a population.
func rankAndCrowd(pop []nsgaIndividual) {
	for _, front := range fastNonDominatedSort(pop) {
		crowdingAssign(pop, front)
	}
}

// selectNext reduces parents plus offspring to the next population: whole
// fronts while they fit, then the most spread part of the splitting front.
func selectNext(combined []nsgaIndividual, size int) []nsgaIndividual {
	next := make([]nsgaIndividual, 0, size)
	for _, front := range fastNonDominatedSort(combined) {
		crowdingAssign(combined, front)
		if len(next)+len(front) <= size {
			for _, i := range front {
				next = append(next, combined[i])
			}
			continue
		}
		sort.SliceStable(front, func(a, b int) bool {
			ca, cb := combined[front[a]], combined[front[b]]
			if ca.crowd != cb.crowd {
				return ca.crowd > cb.crowd
			}
			if ca.obj[0] != cb.obj[0] {
				return ca.obj[0] < cb.obj[0]
			}
			return front[a] < front[b]
		})
		for _, i := range front[:size-len(next)] {
			next = append(next, combined[i])
		}
		break
	}
	return next
}

// runNSGA executes the generational loop and returns the final ranked
// population.
func (e *engine) runNSGA(ctx context.Context, name string) ([]nsgaIndividual, int, error) {
	pop := make([]nsgaIndividual, e.cfg.Population)
	for i := range pop {
		a := e.randomAssignment()
		pop[i] = nsgaIndividual{assign: a, obj: e.objectives(a)}
	}
	rankAndCrowd(pop)

	stop := newStopper(e.cfg.EarlyStopWindow)
	stop.observe(minCost(pop))

	iters := 0
	for gen := 1; gen <= e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, iters, err
		}

		offspring := make([]nsgaIndividual, 0, e.cfg.Population)
		for len(offspring) < e.cfg.Population {
			p1 := pop[e.crowdedTournament(pop)].assign
			p2 := pop[e.crowdedTournament(pop)].assign
			var c1, c2 decoder.Assignment
			if e.rnd.Float64() < e.cfg.CrossoverRate {
				c1, c2 = e.crossover(p1, p2)
			} else {
				c1, c2 = p1.Clone(), p2.Clone()
			}
			e.mutate(c1)
			offspring = append(offspring, nsgaIndividual{assign: c1, obj: e.objectives(c1)})
			if len(offspring) < e.cfg.Population {
				e.mutate(c2)
				offspring = append(offspring, nsgaIndividual{assign: c2, obj: e.objectives(c2)})
			}
		}

		pop = selectNext(append(pop, offspring...), e.cfg.Population)
		iters = gen

		best := minCost(pop)
		e.progress(name, gen, best)
		if stop.observe(best) {
			break
		}
	}
	return pop, iters, nil
}

func minCost(pop []nsgaIndividual) float64 {
	best := math.Inf(1)
	for i := range pop {
		if pop[i].obj[0] < best {
			best = pop[i].obj[0]
		}
	}
	return best
}

// pickRepresentative selects the front index collapsing the front to one
// schedule: lowest cost, or fewest missed deadlines with cost as tie-break.
func pickRepresentative(front []nsgaIndividual, mode string) int {
	best := 0
	for i := 1; i < len(front); i++ {
		if nsgaBetter(front[i], front[best], mode) {
			best = i
		}
	}
	return best
}

func nsgaBetter(a, b nsgaIndividual, mode string) bool {
	if mode == "deadlines" && a.obj[2] != b.obj[2] {
		return a.obj[2] < b.obj[2]
	}
	return a.obj[0] < b.obj[0]
}

// frontMembers converts a front to the result contract, dropping duplicate
// assignments.
func frontMembers(front []nsgaIndividual) []FrontMember {
	seen := make(map[string]bool, len(front))
	members := make([]FrontMember, 0, len(front))
	for _, ind := range front {
		key := fmt.Sprint([]int(ind.assign))
		if seen[key] {
			continue
		}
		seen[key] = true
		members = append(members, FrontMember{
			Assignment:      ind.assign.Clone(),
			Cost:            ind.obj[0],
			Makespan:        ind.obj[1],
			MissedDeadlines: int(ind.obj[2]),
		})
	}
	return members
}

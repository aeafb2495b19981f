// Package placement decides which candidate fog sites to open before any
// task scheduling happens. The objective is the demand-weighted latency
// between tasks and their nearest open site: a greedy pass opens sites one
// by one, and a bounded random-swap search then trades opened sites against
// closed ones while that lowers the objective.
package placement

import (
	"math"
	"math/rand/v2"
	"sort"

	"fogsched/errors"
	"fogsched/node"
	"fogsched/workflow"
)

// Result is the outcome of a placement optimization.
type Result struct {
	// Sites lists the opened candidate indices in ascending order.
	Sites []int `json:"sites"`
	// Objective is the demand-weighted latency of the selection.
	Objective float64 `json:"objective"`
}

// Optimize opens k of the candidate sites for the workflow. The greedy phase
// is deterministic; the swap phase draws from rnd and runs swapBudget
// iterations, accepting only strict improvements. A nil rnd skips the swap
// phase.
func Optimize(wf *workflow.Workflow, sites []node.Site, k, swapBudget int, rnd *rand.Rand) (*Result, error) {
	if wf == nil || wf.Size() == 0 {
		return nil, errors.InvalidWorkflow("placement requires a built workflow")
	}
	if k <= 0 {
		return nil, errors.InvalidConfig("hybrid_sites", "must be positive")
	}
	if k > len(sites) {
		return nil, errors.NoFeasibleSite(k, len(sites))
	}

	weights := taskWeights(wf)

	open := make([]int, 0, k)
	used := make([]bool, len(sites))
	for len(open) < k {
		bestSite := -1
		bestObj := math.Inf(1)
		for s := range sites {
			if used[s] {
				continue
			}
			obj := objective(wf, sites, weights, append(open, s))
			if bestSite == -1 || obj < bestObj {
				bestSite, bestObj = s, obj
			}
		}
		open = append(open, bestSite)
		used[bestSite] = true
	}

	cur := objective(wf, sites, weights, open)
	if rnd != nil && len(open) < len(sites) {
		closed := make([]int, 0, len(sites)-k)
		for s := range sites {
			if !used[s] {
				closed = append(closed, s)
			}
		}
		for i := 0; i < swapBudget; i++ {
			oi := rnd.IntN(len(open))
			ci := rnd.IntN(len(closed))
			open[oi], closed[ci] = closed[ci], open[oi]
			if obj := objective(wf, sites, weights, open); obj < cur {
				cur = obj
			} else {
				open[oi], closed[ci] = closed[ci], open[oi]
			}
		}
	}

	sort.Ints(open)
	return &Result{Sites: open, Objective: cur}, nil
}

// objective sums each task's weight times its latency to the nearest open
// site.
func objective(wf *workflow.Workflow, sites []node.Site, weights []float64, open []int) float64 {
	var total float64
	for _, t := range wf.Tasks() {
		best := math.Inf(1)
		for _, s := range open {
			if l := sites[s].LatencyTo(t.ID); l < best {
				best = l
			}
		}
		total += weights[t.ID] * best
	}
	return total
}

// taskWeights weighs tasks by input demand, or uniformly when the workflow
// moves no data.
func taskWeights(wf *workflow.Workflow) []float64 {
	weights := make([]float64, wf.Size())
	var any bool
	for _, t := range wf.Tasks() {
		weights[t.ID] = t.InputSize
		if t.InputSize > 0 {
			any = true
		}
	}
	if !any {
		for i := range weights {
			weights[i] = 1
		}
	}
	return weights
}

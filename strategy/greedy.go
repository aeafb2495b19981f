package strategy

import (
	"context"
	"math"
	"time"

	"fogsched/cost"
	"fogsched/decoder"
	"fogsched/node"
	"fogsched/workflow"
)

// MinMin is the classic Min-Min heuristic: among all (ready task, feasible
// node) pairs it repeatedly commits the pair with the globally earliest
// completion time. It is deterministic and ignores the seed.
type MinMin struct{}

// NewMinMin returns the Min-Min strategy.
func NewMinMin() *MinMin { return &MinMin{} }

// Name returns the registry name.
func (s *MinMin) Name() string { return NameMinMin }

// Schedule runs Min-Min. Probing uses incremental per-node clocks; the
// final numbers come from a single decoder pass over the commit order, so
// the reported totals always match a decode of the returned assignment.
func (s *MinMin) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	start := time.Now()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dec, err := decoder.New(wf, pool, cfg.Rule, cfg.Cost)
	if err != nil {
		return nil, err
	}

	n := wf.Size()
	feasible := pool.FeasibleSets(wf, cfg.Rule)
	all := make([]int, pool.Size())
	for i := range all {
		all[i] = i
	}

	assign := make(decoder.Assignment, n)
	finish := make([]float64, n)
	clocks := make([]float64, pool.Size())
	committed := make([]bool, n)
	waiting := make([]int, n)
	for id := 0; id < n; id++ {
		waiting[id] = len(wf.Parents(id))
	}

	// readyTime is when the task could start on the node: all parents done
	// and their outputs transferred when they ran elsewhere.
	readyTime := func(id, nid int) float64 {
		var ready float64
		nd := pool.Node(nid)
		for _, parent := range wf.Parents(id) {
			available := finish[parent]
			if assign[parent] != nid {
				available += cost.TransferTime(wf.Task(parent).OutputSize, nd)
			}
			if available > ready {
				ready = available
			}
		}
		return ready
	}

	order := make([]int, 0, n)
	for len(order) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bestTask, bestNode := -1, -1
		bestFinish := math.Inf(1)

		// Scanning tasks and nodes in ascending ID order makes the strict
		// comparison below resolve completion ties by task then node ID.
		for id := 0; id < n; id++ {
			if committed[id] || waiting[id] > 0 {
				continue
			}
			cands := feasible[id]
			if len(cands) == 0 {
				// No feasible node: fall back to the full pool and let the
				// decoder's penalty account for the violation.
				cands = all
			}
			t := wf.Task(id)
			for _, nid := range cands {
				st := math.Max(readyTime(id, nid), clocks[nid])
				f := cost.FinishTime(t, pool.Node(nid), st)
				if bestTask == -1 || f < bestFinish {
					bestTask, bestNode, bestFinish = id, nid, f
				}
			}
		}

		assign[bestTask] = bestNode
		finish[bestTask] = bestFinish
		clocks[bestNode] = bestFinish
		committed[bestTask] = true
		order = append(order, bestTask)
		for _, child := range wf.Children(bestTask) {
			waiting[child]--
		}
	}

	sched, err := dec.DecodeOrdered(assign, order)
	if err != nil {
		return nil, err
	}
	r := newResult(s.Name(), assign, sched)
	r.Evaluations = 1
	r.Iterations = n
	r.Elapsed = time.Since(start)
	return r, nil
}

// FirstFit walks tasks in topological order and assigns each to the first
// node (by ID) satisfying the capability rule, falling back to the least
// loaded node when none fits. It is deterministic and ignores the seed.
type FirstFit struct{}

// NewFirstFit returns the First-Fit strategy.
func NewFirstFit() *FirstFit { return &FirstFit{} }

// Name returns the registry name.
func (s *FirstFit) Name() string { return NameFirstFit }

// Schedule runs First-Fit.
func (s *FirstFit) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	start := time.Now()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dec, err := decoder.New(wf, pool, cfg.Rule, cfg.Cost)
	if err != nil {
		return nil, err
	}

	n := wf.Size()
	assign := make(decoder.Assignment, n)
	finish := make([]float64, n)
	clocks := make([]float64, pool.Size())

	for _, id := range wf.TopologicalOrder() {
		t := wf.Task(id)
		nid := -1
		for _, nd := range pool.Nodes() {
			if cfg.Rule.Feasible(t, nd) {
				nid = nd.ID
				break
			}
		}
		if nid == -1 {
			// Least loaded: earliest free node, ties by ID.
			nid = 0
			for i := 1; i < pool.Size(); i++ {
				if clocks[i] < clocks[nid] {
					nid = i
				}
			}
		}

		nd := pool.Node(nid)
		var ready float64
		for _, parent := range wf.Parents(id) {
			available := finish[parent]
			if assign[parent] != nid {
				available += cost.TransferTime(wf.Task(parent).OutputSize, nd)
			}
			if available > ready {
				ready = available
			}
		}
		st := math.Max(ready, clocks[nid])
		f := cost.FinishTime(t, nd, st)

		assign[id] = nid
		finish[id] = f
		clocks[nid] = f
	}

	sched, err := dec.Decode(assign)
	if err != nil {
		return nil, err
	}
	r := newResult(s.Name(), assign, sched)
	r.Evaluations = 1
	r.Iterations = n
	r.Elapsed = time.Since(start)
	return r, nil
}

// Package benchmark runs strategy comparison experiments: a matrix of
// strategies, workloads and seeded replicates executed on a goroutine pool,
// with derived metrics, CSV reports and significance tests over the runs.
package benchmark

import (
	"fmt"

	"fogsched/cost"
	"fogsched/errors"
	"fogsched/node"
	"fogsched/strategy"
	"fogsched/workflow"
)

// Metrics are the derived quality measures of one schedule, recomputed from
// the result's assignments and start times through the cost model rather
// than read from strategy bookkeeping.
type Metrics struct {
	// Makespan is the latest finish time in seconds.
	Makespan float64 `json:"makespan"`
	// TotalCost is the combined cost of the schedule.
	TotalCost float64 `json:"total_cost"`
	// Energy is the total execution energy in joules.
	Energy float64 `json:"energy"`
	// DeadlineHits counts tasks finishing at or before their deadline.
	DeadlineHits int `json:"deadline_hits"`
	// HitRate is the fraction of tasks meeting their deadline.
	HitRate float64 `json:"hit_rate"`
	// Infeasible counts tasks on nodes violating the capability rule.
	Infeasible int `json:"infeasible"`
}

// Compute derives metrics for a result scheduled on the given workflow and
// pool. A result that materializes its own pool (hybrid placement) is
// measured against that pool instead.
func Compute(wf *workflow.Workflow, pool *node.Pool, res *strategy.Result, rule node.Rule, params cost.Params) (Metrics, error) {
	if res == nil {
		return Metrics{}, errors.BadAssignment("no result to measure")
	}
	if len(res.Pool) > 0 {
		p, err := node.NewPool(res.Pool)
		if err != nil {
			return Metrics{}, err
		}
		pool = p
	}

	var m Metrics
	for id := 0; id < wf.Size(); id++ {
		t := wf.Task(id)
		nid, ok := res.Assignments[id]
		if !ok {
			return Metrics{}, errors.BadAssignment(fmt.Sprintf("task %d has no assignment", id))
		}
		if nid < 0 || nid >= pool.Size() {
			return Metrics{}, errors.BadAssignment(fmt.Sprintf("task %d assigned to unknown node %d", id, nid))
		}
		start, ok := res.StartTimes[id]
		if !ok {
			return Metrics{}, errors.BadAssignment(fmt.Sprintf("task %d has no start time", id))
		}

		n := pool.Node(nid)
		finish := cost.FinishTime(t, n, start)
		if finish > m.Makespan {
			m.Makespan = finish
		}
		m.Energy += cost.Energy(t, n)

		c := cost.MonetaryCost(t, n) + params.DeadlinePenalty(t, finish)
		if shortfall := rule.Shortfall(t, n); shortfall > 0 {
			m.Infeasible++
			c += params.InfeasiblePenalty * (1 + shortfall)
		}
		m.TotalCost += c

		if finish <= t.Deadline {
			m.DeadlineHits++
		}
	}
	if wf.Size() > 0 {
		m.HitRate = float64(m.DeadlineHits) / float64(wf.Size())
	}
	return m, nil
}

// Package decoder turns task-to-node assignments into concrete schedules.
// The decoder is the single evaluation path of the engine: greedy heuristics
// and metaheuristics alike report numbers that come out of a decode, so
// every strategy's totals are comparable by construction.
package decoder

import (
	"fmt"
	"math"

	"fogsched/cost"
	"fogsched/errors"
	"fogsched/node"
	"fogsched/workflow"
)

// Decoder schedules assignments of one workflow onto one node pool. It
// derives the topological order once at construction and reuses it for every
// decode; the per-decode state (node clocks, task finish times) lives on the
// call stack, so a Decoder is safe for sequential reuse across thousands of
// candidate evaluations.
type Decoder struct {
	wf     *workflow.Workflow
	pool   *node.Pool
	rule   node.Rule
	params cost.Params
	order  []int
}

// New creates a decoder for the workflow and pool. The workflow must be
// acyclic (guaranteed by its builder) and the pool non-empty.
func New(wf *workflow.Workflow, pool *node.Pool, rule node.Rule, params cost.Params) (*Decoder, error) {
	if wf == nil || wf.Size() == 0 {
		return nil, errors.InvalidWorkflow("decoder requires a built workflow")
	}
	if pool == nil || pool.Size() == 0 {
		return nil, errors.EmptyPool()
	}
	return &Decoder{
		wf:     wf,
		pool:   pool,
		rule:   rule,
		params: params,
		order:  wf.TopologicalOrder(),
	}, nil
}

// Workflow returns the workflow the decoder schedules.
func (d *Decoder) Workflow() *workflow.Workflow { return d.wf }

// Pool returns the node pool the decoder schedules onto.
func (d *Decoder) Pool() *node.Pool { return d.pool }

// Params returns the cost parameters in effect.
func (d *Decoder) Params() cost.Params { return d.params }

// Rule returns the capability rule in effect.
func (d *Decoder) Rule() node.Rule { return d.rule }

// Decode schedules the assignment in the decoder's topological order.
func (d *Decoder) Decode(assign Assignment) (*Schedule, error) {
	if err := d.validate(assign); err != nil {
		return nil, err
	}
	return d.decode(assign, d.order), nil
}

// DecodeOrdered schedules the assignment visiting tasks in the given order.
// The order must be a topology-consistent permutation of all task IDs;
// violating that is a caller bug and fails fatally.
func (d *Decoder) DecodeOrdered(assign Assignment, order []int) (*Schedule, error) {
	if err := d.validate(assign); err != nil {
		return nil, err
	}
	if err := d.wf.ValidateOrder(order); err != nil {
		return nil, err
	}
	return d.decode(assign, order), nil
}

// Evaluate returns only the total cost of the assignment. It is the hot
// path of the metaheuristics.
func (d *Decoder) Evaluate(assign Assignment) (float64, error) {
	s, err := d.Decode(assign)
	if err != nil {
		return 0, err
	}
	return s.TotalCost, nil
}

func (d *Decoder) validate(assign Assignment) error {
	if len(assign) != d.wf.Size() {
		return errors.BadAssignment(fmt.Sprintf("assignment has %d entries, workflow has %d tasks", len(assign), d.wf.Size()))
	}
	for id, nd := range assign {
		if nd < 0 || nd >= d.pool.Size() {
			return errors.BadAssignment(fmt.Sprintf("task %d assigned to unknown node %d", id, nd))
		}
	}
	return nil
}

// decode runs the list scheduler. Tasks are visited in the given order; a
// task becomes ready when all parents have finished and their outputs have
// reached the task's node, and starts at the later of its ready time and
// the node's clock. Nodes execute non-preemptively in encounter order.
func (d *Decoder) decode(assign Assignment, order []int) *Schedule {
	clocks := make([]float64, d.pool.Size())
	finish := make([]float64, d.wf.Size())
	sched := &Schedule{Tasks: make([]TaskSchedule, d.wf.Size())}

	for _, id := range order {
		t := d.wf.Task(id)
		nd := d.pool.Node(assign[id])

		var ready float64
		for _, parent := range d.wf.Parents(id) {
			available := finish[parent]
			if assign[parent] != assign[id] {
				available += cost.TransferTime(d.wf.Task(parent).OutputSize, nd)
			}
			if available > ready {
				ready = available
			}
		}

		start := math.Max(ready, clocks[nd.ID])
		end, c := d.params.TaskCost(t, nd, start)
		ts := TaskSchedule{
			Node:   nd.ID,
			Start:  start,
			Finish: end,
			Cost:   c,
			Energy: cost.Energy(t, nd),
		}
		if shortfall := d.rule.Shortfall(t, nd); shortfall > 0 {
			ts.Infeasible = true
			ts.Cost += d.params.InfeasiblePenalty * (1 + shortfall)
		}

		clocks[nd.ID] = end
		finish[id] = end
		sched.Tasks[id] = ts
		sched.TotalCost += ts.Cost
	}
	return sched
}

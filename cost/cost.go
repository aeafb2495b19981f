// Package cost implements the closed-form cost model shared by every
// scheduling strategy. All functions are stateless and operate on immutable
// task and node values; degenerate capacities (zero MIPS, zero bandwidth)
// yield +Inf times rather than errors, and zero rates yield zero cost so
// that NaN can never arise from Inf*0.
package cost

import (
	"math"

	"fogsched/node"
	"fogsched/workflow"
)

// Params holds the knobs of the cost model. They are shared across all
// strategies of a run so results stay comparable.
type Params struct {
	// PenaltyPerSecond converts deadline overrun into cost.
	PenaltyPerSecond float64 `json:"penalty_per_second" yaml:"penalty_per_second" validate:"gte=0"`
	// InfeasiblePenalty is the base charge for assigning a task to a node
	// that fails the capability rule. It must dominate any feasible total.
	InfeasiblePenalty float64 `json:"infeasible_penalty" yaml:"infeasible_penalty" validate:"gte=0"`
}

// DefaultParams returns the documented defaults: 10 currency units per
// second of overrun and a 1e9 infeasibility charge.
func DefaultParams() Params {
	return Params{PenaltyPerSecond: 10, InfeasiblePenalty: 1e9}
}

// ExecutionTime returns the task's runtime on the node in seconds.
func ExecutionTime(t workflow.Task, n node.Node) float64 {
	if n.MIPS == 0 {
		return math.Inf(1)
	}
	return t.Length / n.MIPS
}

// TransferTime returns the time to move size MB onto the node.
func TransferTime(size float64, n node.Node) float64 {
	if size == 0 {
		return 0
	}
	if n.Bandwidth == 0 {
		return math.Inf(1)
	}
	return size / n.Bandwidth
}

// TransferDelay returns the time to move the task's input onto the node.
func TransferDelay(t workflow.Task, n node.Node) float64 {
	return TransferTime(t.InputSize, n)
}

// Energy returns the energy consumed by executing the task on the node, in
// joules.
func Energy(t workflow.Task, n node.Node) float64 {
	return scale(ExecutionTime(t, n), n.PowerDraw)
}

// OccupiedTime returns how long the task occupies the node: execution plus
// input transfer plus the node's fixed latency.
func OccupiedTime(t workflow.Task, n node.Node) float64 {
	return ExecutionTime(t, n) + TransferDelay(t, n) + n.Latency
}

// FinishTime returns the task's completion time when started at start.
func FinishTime(t workflow.Task, n node.Node, start float64) float64 {
	return start + OccupiedTime(t, n)
}

// MonetaryCost returns the price of running the task on the node.
func MonetaryCost(t workflow.Task, n node.Node) float64 {
	return scale(OccupiedTime(t, n), n.CostRate)
}

// DeadlinePenalty returns the cost of finishing the task at finish: zero
// when the deadline is met, overrun times PenaltyPerSecond otherwise.
func (p Params) DeadlinePenalty(t workflow.Task, finish float64) float64 {
	return scale(math.Max(0, finish-t.Deadline), p.PenaltyPerSecond)
}

// TaskCost returns the task's finish time and combined cost (monetary plus
// deadline penalty) when started at start on the node.
func (p Params) TaskCost(t workflow.Task, n node.Node, start float64) (finish, cost float64) {
	finish = FinishTime(t, n, start)
	cost = MonetaryCost(t, n) + p.DeadlinePenalty(t, finish)
	return finish, cost
}

// scale multiplies a duration by a rate, treating a zero rate as free even
// for infinite durations.
func scale(d, rate float64) float64 {
	if rate == 0 {
		return 0
	}
	return d * rate
}

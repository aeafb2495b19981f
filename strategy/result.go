package strategy

import (
	"time"

	"fogsched/decoder"
	"fogsched/node"
)

// Result is the outcome of one strategy invocation. Assignments, StartTimes
// and TotalCost form the minimal contract every strategy fills; the
// remaining fields carry the full decoded schedule and run bookkeeping.
// Derived quality metrics (makespan, deadline hit rate, energy) are
// computed by consumers from the schedule, not reported here.
type Result struct {
	// Strategy is the name of the producing strategy.
	Strategy string `json:"strategy"`
	// Assignments maps task ID to the executing node ID.
	Assignments map[int]int `json:"assignments"`
	// StartTimes maps task ID to its start time in seconds.
	StartTimes map[int]float64 `json:"start_times"`
	// TotalCost is the combined cost of the schedule.
	TotalCost float64 `json:"total_cost"`

	// Schedule is the full decoded timetable.
	Schedule *decoder.Schedule `json:"schedule,omitempty"`
	// Pool lists the nodes scheduled onto when the strategy materializes
	// its own pool (the hybrid strategy after placement). Nil otherwise.
	Pool []node.Node `json:"pool,omitempty"`
	// Front is the first non-dominated front for Pareto strategies.
	Front []FrontMember `json:"front,omitempty"`

	// Evaluations counts decoder evaluations performed.
	Evaluations int `json:"evaluations"`
	// Iterations counts generations or swarm iterations performed.
	Iterations int `json:"iterations"`
	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// FrontMember is one candidate on a Pareto front.
type FrontMember struct {
	Assignment      decoder.Assignment `json:"assignment"`
	Cost            float64            `json:"cost"`
	Makespan        float64            `json:"makespan"`
	MissedDeadlines int                `json:"missed_deadlines"`
}

// newResult assembles the minimal contract from a decoded schedule.
func newResult(name string, assign decoder.Assignment, sched *decoder.Schedule) *Result {
	r := &Result{
		Strategy:    name,
		Assignments: make(map[int]int, len(assign)),
		StartTimes:  make(map[int]float64, len(assign)),
		TotalCost:   sched.TotalCost,
		Schedule:    sched,
	}
	for id := range sched.Tasks {
		r.Assignments[id] = sched.Tasks[id].Node
		r.StartTimes[id] = sched.Tasks[id].Start
	}
	return r
}

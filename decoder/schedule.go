package decoder

// Assignment maps each task to a node: entry i is the node ID executing
// task i.
type Assignment []int

// Clone returns an independent copy of the assignment.
func (a Assignment) Clone() Assignment {
	c := make(Assignment, len(a))
	copy(c, a)
	return c
}

// TaskSchedule is the placement of one task in a decoded schedule.
type TaskSchedule struct {
	// Node is the ID of the executing node.
	Node int `json:"node"`
	// Start is when the task begins occupying the node, in seconds.
	Start float64 `json:"start"`
	// Finish is when the task completes, in seconds.
	Finish float64 `json:"finish"`
	// Cost is the task's combined cost including any infeasibility charge.
	Cost float64 `json:"cost"`
	// Energy is the execution energy in joules.
	Energy float64 `json:"energy"`
	// Infeasible marks an assignment that violates the capability rule.
	Infeasible bool `json:"infeasible,omitempty"`
}

// Schedule is the decoded timetable of one assignment. It is freshly
// allocated by every decode and never mutated afterwards.
type Schedule struct {
	// Tasks is indexed by task ID.
	Tasks []TaskSchedule `json:"tasks"`
	// TotalCost is the sum of all task costs.
	TotalCost float64 `json:"total_cost"`
}

// Makespan returns the latest finish time in the schedule.
func (s *Schedule) Makespan() float64 {
	var max float64
	for i := range s.Tasks {
		if s.Tasks[i].Finish > max {
			max = s.Tasks[i].Finish
		}
	}
	return max
}

// InfeasibleCount returns how many tasks sit on nodes violating the
// capability rule.
func (s *Schedule) InfeasibleCount() int {
	count := 0
	for i := range s.Tasks {
		if s.Tasks[i].Infeasible {
			count++
		}
	}
	return count
}

package node

import "fogsched/workflow"

// Rule is the capability rule deciding whether a node can host a task.
// Memory demand is estimated from the task's input size and storage demand
// from input plus output, each scaled by a configurable factor.
type Rule struct {
	MemoryFactor  float64 `json:"memory_factor" yaml:"memory_factor" validate:"gt=0"`
	StorageFactor float64 `json:"storage_factor" yaml:"storage_factor" validate:"gt=0"`
}

// DefaultRule returns the rule with both factors at 1.0.
func DefaultRule() Rule {
	return Rule{MemoryFactor: 1, StorageFactor: 1}
}

// Feasible reports whether the node satisfies the task's processing-element,
// memory and storage requirements.
func (r Rule) Feasible(t workflow.Task, n Node) bool {
	return n.PEs >= t.PEs &&
		n.Memory >= r.MemoryFactor*t.InputSize &&
		n.Storage >= r.StorageFactor*(t.InputSize+t.OutputSize)
}

// Shortfall returns the largest relative capability gap of the node for the
// task, or 0 when the node is feasible. A gap of 0.5 means the node provides
// only two thirds of one requirement.
func (r Rule) Shortfall(t workflow.Task, n Node) float64 {
	var worst float64
	if t.PEs > 0 && n.PEs < t.PEs {
		if gap := float64(t.PEs-n.PEs) / float64(t.PEs); gap > worst {
			worst = gap
		}
	}
	if need := r.MemoryFactor * t.InputSize; need > 0 && n.Memory < need {
		if gap := (need - n.Memory) / need; gap > worst {
			worst = gap
		}
	}
	if need := r.StorageFactor * (t.InputSize + t.OutputSize); need > 0 && n.Storage < need {
		if gap := (need - n.Storage) / need; gap > worst {
			worst = gap
		}
	}
	return worst
}

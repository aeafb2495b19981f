package node

import (
	"fmt"

	"fogsched/errors"
	"fogsched/workflow"
)

// Pool is a validated, ID-ordered collection of nodes. It is read-only after
// construction.
type Pool struct {
	nodes []Node
}

// NewPool validates the nodes and returns the pool. The pool must be
// non-empty with dense unique IDs; zero MIPS or zero bandwidth are legal
// (they surface as infinite times during decoding), negative parameters are
// not.
func NewPool(nodes []Node) (*Pool, error) {
	m := len(nodes)
	if m == 0 {
		return nil, errors.EmptyPool()
	}
	ordered := make([]Node, m)
	seen := make(map[int]bool, m)
	for _, n := range nodes {
		if n.ID < 0 || n.ID >= m {
			return nil, errors.InvalidPool(fmt.Sprintf("node ID %d outside dense range 0..%d", n.ID, m-1))
		}
		if seen[n.ID] {
			return nil, errors.InvalidPool(fmt.Sprintf("node ID %d is defined more than once", n.ID))
		}
		if !n.Class.Valid() {
			return nil, errors.InvalidPool(fmt.Sprintf("node %d has unknown class %q", n.ID, n.Class))
		}
		if n.MIPS < 0 || n.Memory < 0 || n.Bandwidth < 0 || n.Storage < 0 ||
			n.CostRate < 0 || n.Latency < 0 || n.PowerDraw < 0 {
			return nil, errors.InvalidPool(fmt.Sprintf("node %d has a negative parameter", n.ID))
		}
		if n.PEs < 1 {
			return nil, errors.InvalidPool(fmt.Sprintf("node %d has %d processing elements", n.ID, n.PEs))
		}
		if n.Name == "" {
			n.Name = fmt.Sprintf("%s-%d", n.Class, n.ID)
		}
		seen[n.ID] = true
		ordered[n.ID] = n
	}
	return &Pool{nodes: ordered}, nil
}

// Size returns the number of nodes.
func (p *Pool) Size() int { return len(p.nodes) }

// Node returns the node with the given ID. The ID must be in range.
func (p *Pool) Node(id int) Node { return p.nodes[id] }

// Nodes returns all nodes ordered by ID. The slice is shared; callers must
// not modify it.
func (p *Pool) Nodes() []Node { return p.nodes }

// Feasible returns the IDs of the nodes that satisfy the rule for the task,
// in ID order. The result may be empty.
func (p *Pool) Feasible(t workflow.Task, r Rule) []int {
	var ids []int
	for _, n := range p.nodes {
		if r.Feasible(t, n) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// FeasibleSets precomputes the feasible node IDs for every task of the
// workflow. Entry i may be empty when no node can host task i.
func (p *Pool) FeasibleSets(wf *workflow.Workflow, r Rule) [][]int {
	sets := make([][]int, wf.Size())
	for _, t := range wf.Tasks() {
		sets[t.ID] = p.Feasible(t, r)
	}
	return sets
}

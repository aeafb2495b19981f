package workflow

import (
	"fmt"
	"sort"

	"fogsched/errors"
)

// Workflow is a validated, read-only task graph. Construct one through a
// Builder; the zero value is not usable.
type Workflow struct {
	tasks    []Task
	edges    []Edge
	parents  [][]int
	children [][]int
	levels   [][]int
	topo     []int
}

// Builder assembles a Workflow. Validation happens in Build, so Add calls
// never fail.
type Builder struct {
	tasks []Task
	edges []Edge
}

// NewBuilder returns an empty workflow builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddTask appends a task and returns the builder.
func (b *Builder) AddTask(t Task) *Builder {
	b.tasks = append(b.tasks, t)
	return b
}

// AddTasks appends several tasks and returns the builder.
func (b *Builder) AddTasks(tasks ...Task) *Builder {
	b.tasks = append(b.tasks, tasks...)
	return b
}

// AddDependency records that task to consumes the output of task from.
func (b *Builder) AddDependency(from, to int) *Builder {
	b.edges = append(b.edges, Edge{From: from, To: to})
	return b
}

// Build validates the assembled graph and returns the immutable Workflow.
// Any defect is a fatal configuration error: duplicate or non-dense task IDs,
// invalid task parameters, dependency endpoints that do not exist, self
// dependencies, or a cycle.
func (b *Builder) Build() (*Workflow, error) {
	n := len(b.tasks)
	if n == 0 {
		return nil, errors.InvalidWorkflow("no tasks defined")
	}

	tasks := make([]Task, n)
	seen := make(map[int]bool, n)
	for _, t := range b.tasks {
		if t.ID < 0 || t.ID >= n {
			return nil, errors.InvalidWorkflow(fmt.Sprintf("task ID %d outside dense range 0..%d", t.ID, n-1))
		}
		if seen[t.ID] {
			return nil, errors.DuplicateTask(t.ID)
		}
		if t.Length <= 0 {
			return nil, errors.InvalidWorkflow(fmt.Sprintf("task %d has non-positive length %g", t.ID, t.Length))
		}
		if t.InputSize < 0 || t.OutputSize < 0 {
			return nil, errors.InvalidWorkflow(fmt.Sprintf("task %d has negative data size", t.ID))
		}
		if t.PEs < 1 {
			return nil, errors.InvalidWorkflow(fmt.Sprintf("task %d requires %d processing elements", t.ID, t.PEs))
		}
		if t.Deadline < 0 {
			return nil, errors.InvalidWorkflow(fmt.Sprintf("task %d has negative deadline %g", t.ID, t.Deadline))
		}
		seen[t.ID] = true
		tasks[t.ID] = t
	}

	parents := make([][]int, n)
	children := make([][]int, n)
	edges := make([]Edge, 0, len(b.edges))
	dup := make(map[[2]int]bool, len(b.edges))
	for _, e := range b.edges {
		if e.From < 0 || e.From >= n {
			return nil, errors.UnknownTask(e.From)
		}
		if e.To < 0 || e.To >= n {
			return nil, errors.UnknownTask(e.To)
		}
		if e.From == e.To {
			return nil, errors.InvalidWorkflow(fmt.Sprintf("task %d depends on itself", e.To))
		}
		key := [2]int{e.From, e.To}
		if dup[key] {
			continue
		}
		dup[key] = true
		edges = append(edges, e)
		parents[e.To] = append(parents[e.To], e.From)
		children[e.From] = append(children[e.From], e.To)
	}
	for i := range parents {
		sort.Ints(parents[i])
		sort.Ints(children[i])
	}

	levels, topo, err := buildLevels(n, children, parents)
	if err != nil {
		return nil, err
	}

	return &Workflow{
		tasks:    tasks,
		edges:    edges,
		parents:  parents,
		children: children,
		levels:   levels,
		topo:     topo,
	}, nil
}

// buildLevels groups tasks by dependency level with Kahn's algorithm.
// Tasks within the same level have no precedence between each other. Levels
// are sorted by task ID so the derived topological order is deterministic.
func buildLevels(n int, children, parents [][]int) ([][]int, []int, error) {
	inDegree := make([]int, n)
	for id := range parents {
		inDegree[id] = len(parents[id])
	}

	var queue []int
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	var levels [][]int
	topo := make([]int, 0, n)
	visited := 0

	for len(queue) > 0 {
		sort.Ints(queue)
		levels = append(levels, queue)
		topo = append(topo, queue...)
		visited += len(queue)

		var next []int
		for _, id := range queue {
			for _, child := range children[id] {
				inDegree[child]--
				if inDegree[child] == 0 {
					next = append(next, child)
				}
			}
		}
		queue = next
	}

	if visited != n {
		return nil, nil, errors.CyclicWorkflow(visited, n)
	}
	return levels, topo, nil
}

// Size returns the number of tasks.
func (w *Workflow) Size() int { return len(w.tasks) }

// Task returns the task with the given ID. The ID must be in range.
func (w *Workflow) Task(id int) Task { return w.tasks[id] }

// Tasks returns all tasks ordered by ID. The slice is shared; callers must
// not modify it.
func (w *Workflow) Tasks() []Task { return w.tasks }

// Edges returns the deduplicated dependency edges. The slice is shared;
// callers must not modify it.
func (w *Workflow) Edges() []Edge { return w.edges }

// Parents returns the IDs of the tasks the given task depends on, sorted.
// The slice is shared; callers must not modify it.
func (w *Workflow) Parents(id int) []int { return w.parents[id] }

// Children returns the IDs of the tasks depending on the given task, sorted.
// The slice is shared; callers must not modify it.
func (w *Workflow) Children(id int) []int { return w.children[id] }

// Levels returns the tasks grouped by dependency level, each level sorted by
// task ID. The slices are shared; callers must not modify them.
func (w *Workflow) Levels() [][]int { return w.levels }

// TopologicalOrder returns a fresh copy of the deterministic task order:
// level by level, lowest ID first within a level.
func (w *Workflow) TopologicalOrder() []int {
	order := make([]int, len(w.topo))
	copy(order, w.topo)
	return order
}

// ValidateOrder checks that order is a permutation of all task IDs that
// visits every task after all of its parents.
func (w *Workflow) ValidateOrder(order []int) error {
	n := len(w.tasks)
	if len(order) != n {
		return errors.InvalidOrder(fmt.Sprintf("order has %d entries, workflow has %d tasks", len(order), n))
	}
	pos := make([]int, n)
	for i := range pos {
		pos[i] = -1
	}
	for i, id := range order {
		if id < 0 || id >= n {
			return errors.InvalidOrder(fmt.Sprintf("order entry %d references unknown task %d", i, id))
		}
		if pos[id] != -1 {
			return errors.InvalidOrder(fmt.Sprintf("order visits task %d twice", id))
		}
		pos[id] = i
	}
	for _, id := range order {
		for _, parent := range w.parents[id] {
			if pos[parent] > pos[id] {
				return errors.NonTopologicalOrder(id, parent)
			}
		}
	}
	return nil
}

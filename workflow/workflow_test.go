package workflow

import (
	"strings"
	"testing"

	"fogsched/errors"
)

// --- test helpers ---

func task(id int, length float64) Task {
	return Task{ID: id, Length: length, InputSize: 10, OutputSize: 5, PEs: 1, Deadline: 100}
}

// diamond builds t0 -> {t1, t2} -> t3.
func diamond(t *testing.T) *Workflow {
	t.Helper()
	wf, err := NewBuilder().
		AddTasks(task(0, 100), task(1, 200), task(2, 300), task(3, 400)).
		AddDependency(0, 1).
		AddDependency(0, 2).
		AddDependency(1, 3).
		AddDependency(2, 3).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return wf
}

// --- Build tests ---

func TestBuild_Linear(t *testing.T) {
	wf, err := NewBuilder().
		AddTasks(task(0, 1), task(1, 1), task(2, 1)).
		AddDependency(0, 1).
		AddDependency(1, 2).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.Size() != 3 {
		t.Fatalf("expected 3 tasks, got %d", wf.Size())
	}
	if got := wf.Parents(2); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected parents of 2 to be [1], got %v", got)
	}
	if got := wf.Children(0); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected children of 0 to be [1], got %v", got)
	}
}

func TestBuild_Empty(t *testing.T) {
	_, err := NewBuilder().Build()
	if errors.CodeOf(err) != errors.ErrCodeInvalidWorkflow {
		t.Fatalf("expected INVALID_WORKFLOW, got %v", err)
	}
}

func TestBuild_Cycle(t *testing.T) {
	_, err := NewBuilder().
		AddTasks(task(0, 1), task(1, 1), task(2, 1)).
		AddDependency(0, 1).
		AddDependency(1, 2).
		AddDependency(2, 0).
		Build()
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if errors.CodeOf(err) != errors.ErrCodeCyclicWorkflow {
		t.Fatalf("expected CYCLIC_WORKFLOW, got %v", err)
	}
}

func TestBuild_PartialCycle(t *testing.T) {
	// t0 is fine, t1 and t2 form a cycle.
	_, err := NewBuilder().
		AddTasks(task(0, 1), task(1, 1), task(2, 1)).
		AddDependency(1, 2).
		AddDependency(2, 1).
		Build()
	schedErr, ok := errors.AsSchedError(err)
	if !ok {
		t.Fatalf("expected SchedError, got %v", err)
	}
	if schedErr.Details["ordered"] != 1 {
		t.Errorf("expected 1 ordered task before the stall, got %v", schedErr.Details["ordered"])
	}
}

func TestBuild_DuplicateTask(t *testing.T) {
	_, err := NewBuilder().
		AddTasks(task(0, 1), task(0, 2)).
		Build()
	if errors.CodeOf(err) != errors.ErrCodeDuplicateTask {
		t.Fatalf("expected DUPLICATE_TASK, got %v", err)
	}
}

func TestBuild_NonDenseID(t *testing.T) {
	_, err := NewBuilder().
		AddTasks(task(0, 1), task(5, 1)).
		Build()
	if errors.CodeOf(err) != errors.ErrCodeInvalidWorkflow {
		t.Fatalf("expected INVALID_WORKFLOW, got %v", err)
	}
}

func TestBuild_UnknownEdgeEndpoint(t *testing.T) {
	_, err := NewBuilder().
		AddTasks(task(0, 1), task(1, 1)).
		AddDependency(0, 7).
		Build()
	if errors.CodeOf(err) != errors.ErrCodeUnknownTask {
		t.Fatalf("expected UNKNOWN_TASK, got %v", err)
	}
}

func TestBuild_SelfDependency(t *testing.T) {
	_, err := NewBuilder().
		AddTasks(task(0, 1)).
		AddDependency(0, 0).
		Build()
	if errors.CodeOf(err) != errors.ErrCodeInvalidWorkflow {
		t.Fatalf("expected INVALID_WORKFLOW, got %v", err)
	}
}

func TestBuild_BadTaskParameters(t *testing.T) {
	cases := []struct {
		name string
		t    Task
	}{
		{"zero length", Task{ID: 0, Length: 0, PEs: 1}},
		{"negative input", Task{ID: 0, Length: 1, InputSize: -1, PEs: 1}},
		{"zero PEs", Task{ID: 0, Length: 1, PEs: 0}},
		{"negative deadline", Task{ID: 0, Length: 1, PEs: 1, Deadline: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBuilder().AddTask(tc.t).Build()
			if errors.CodeOf(err) != errors.ErrCodeInvalidWorkflow {
				t.Fatalf("expected INVALID_WORKFLOW, got %v", err)
			}
		})
	}
}

func TestBuild_DeduplicatesEdges(t *testing.T) {
	wf, err := NewBuilder().
		AddTasks(task(0, 1), task(1, 1)).
		AddDependency(0, 1).
		AddDependency(0, 1).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wf.Edges()) != 1 {
		t.Errorf("expected 1 edge after dedup, got %d", len(wf.Edges()))
	}
	if len(wf.Parents(1)) != 1 {
		t.Errorf("expected 1 parent entry, got %v", wf.Parents(1))
	}
}

// --- Level and order tests ---

func TestLevels_Diamond(t *testing.T) {
	wf := diamond(t)
	levels := wf.Levels()
	want := [][]int{{0}, {1, 2}, {3}}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(levels))
	}
	for i := range want {
		if len(levels[i]) != len(want[i]) {
			t.Fatalf("level %d: expected %v, got %v", i, want[i], levels[i])
		}
		for j := range want[i] {
			if levels[i][j] != want[i][j] {
				t.Fatalf("level %d: expected %v, got %v", i, want[i], levels[i])
			}
		}
	}
}

func TestTopologicalOrder_RespectsPrecedence(t *testing.T) {
	wf := diamond(t)
	order := wf.TopologicalOrder()
	if err := wf.ValidateOrder(order); err != nil {
		t.Fatalf("own topological order rejected: %v", err)
	}
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	a := diamond(t).TopologicalOrder()
	b := diamond(t).TopologicalOrder()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order differs at %d: %v vs %v", i, a, b)
		}
	}
}

func TestTopologicalOrder_CopyIsolated(t *testing.T) {
	wf := diamond(t)
	order := wf.TopologicalOrder()
	order[0] = 99
	if wf.TopologicalOrder()[0] == 99 {
		t.Error("mutating the returned order leaked into the workflow")
	}
}

func TestValidateOrder_ParentAfterChild(t *testing.T) {
	wf := diamond(t)
	err := wf.ValidateOrder([]int{1, 0, 2, 3})
	if errors.CodeOf(err) != errors.ErrCodeNonTopologicalOrder {
		t.Fatalf("expected NON_TOPOLOGICAL_ORDER, got %v", err)
	}
}

func TestValidateOrder_WrongLength(t *testing.T) {
	wf := diamond(t)
	if err := wf.ValidateOrder([]int{0, 1}); err == nil {
		t.Fatal("expected error for short order")
	}
}

func TestValidateOrder_DuplicateEntry(t *testing.T) {
	wf := diamond(t)
	if err := wf.ValidateOrder([]int{0, 1, 1, 3}); err == nil {
		t.Fatal("expected error for duplicate entry")
	}
}

// --- DOT tests ---

func TestDOT_ContainsTasksAndEdges(t *testing.T) {
	out := diamond(t).DOT()
	if !strings.Contains(out, "digraph") {
		t.Errorf("expected digraph header, got %q", out)
	}
	for _, frag := range []string{"t0", "t3", "->"} {
		if !strings.Contains(out, frag) {
			t.Errorf("expected %q in DOT output", frag)
		}
	}
}

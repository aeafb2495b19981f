package decoder

import (
	"math"
	"reflect"
	"sort"
	"testing"

	"fogsched/cost"
	"fogsched/errors"
	"fogsched/node"
	"fogsched/workflow"
)

// --- test helpers ---

func testPool(t *testing.T, nodes ...node.Node) *node.Pool {
	t.Helper()
	p, err := node.NewPool(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

// roomyNode executes 1000 MI/s over 100 MB/s with no fixed latency, so a
// length-1000 task runs for 1s and 100 MB move in 1s.
func roomyNode(id int) node.Node {
	return node.Node{
		ID: id, Class: node.ClassFog, MIPS: 1000, Memory: 1 << 20,
		Bandwidth: 100, Storage: 1 << 20, PEs: 8,
		CostRate: 1, Latency: 0, PowerDraw: 10,
	}
}

func chainWorkflow(t *testing.T, n int) *workflow.Workflow {
	t.Helper()
	b := workflow.NewBuilder()
	for i := 0; i < n; i++ {
		b.AddTask(workflow.Task{ID: i, Length: 1000, InputSize: 100, OutputSize: 50, PEs: 1, Deadline: 1000})
	}
	for i := 1; i < n; i++ {
		b.AddDependency(i-1, i)
	}
	wf, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return wf
}

func newTestDecoder(t *testing.T, wf *workflow.Workflow, p *node.Pool) *Decoder {
	t.Helper()
	d, err := New(wf, p, node.DefaultRule(), cost.DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

// --- precedence tests ---

func TestDecode_LinearSameNode(t *testing.T) {
	wf := chainWorkflow(t, 3)
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0)))

	s, err := d.Decode(Assignment{0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Each task: 1s exec + 1s input transfer.
	for i := 0; i < 3; i++ {
		wantStart := float64(i) * 2
		if s.Tasks[i].Start != wantStart {
			t.Errorf("task %d: expected start %g, got %g", i, wantStart, s.Tasks[i].Start)
		}
	}
	if s.Makespan() != 6 {
		t.Errorf("expected makespan 6, got %g", s.Makespan())
	}
}

func TestDecode_CrossNodeTransferGap(t *testing.T) {
	wf := chainWorkflow(t, 2)
	slow := roomyNode(1)
	slow.Bandwidth = 50
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0), slow))

	s, err := d.Decode(Assignment{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// t0 finishes at 2; its 50 MB output crosses to node 1 at 50 MB/s.
	wantReady := s.Tasks[0].Finish + 1
	if s.Tasks[1].Start != wantReady {
		t.Errorf("expected child start %g (parent finish + transfer), got %g", wantReady, s.Tasks[1].Start)
	}
}

func TestDecode_SameNodeNoTransferGap(t *testing.T) {
	wf := chainWorkflow(t, 2)
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0)))

	s, err := d.Decode(Assignment{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Tasks[1].Start != s.Tasks[0].Finish {
		t.Errorf("expected child to start at parent finish %g, got %g", s.Tasks[0].Finish, s.Tasks[1].Start)
	}
}

func TestDecode_EncounterOrder(t *testing.T) {
	// Two independent tasks forced onto one node serialize in visit order.
	wf, err := workflow.NewBuilder().
		AddTask(workflow.Task{ID: 0, Length: 1000, InputSize: 0, OutputSize: 0, PEs: 1, Deadline: 100}).
		AddTask(workflow.Task{ID: 1, Length: 1000, InputSize: 0, OutputSize: 0, PEs: 1, Deadline: 100}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0)))

	s, err := d.Decode(Assignment{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Tasks[0].Start != 0 {
		t.Errorf("expected first visited task to start at 0, got %g", s.Tasks[0].Start)
	}
	if s.Tasks[1].Start != s.Tasks[0].Finish {
		t.Errorf("expected second task to start at %g, got %g", s.Tasks[0].Finish, s.Tasks[1].Start)
	}
}

func TestDecode_NonOverlapPerNode(t *testing.T) {
	// Wide two-level workflow spread across two nodes.
	b := workflow.NewBuilder()
	for i := 0; i < 8; i++ {
		b.AddTask(workflow.Task{ID: i, Length: 500, InputSize: 20, OutputSize: 10, PEs: 1, Deadline: 1000})
	}
	for i := 2; i < 8; i++ {
		b.AddDependency(i%2, i)
	}
	wf, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0), roomyNode(1)))

	assign := Assignment{0, 1, 0, 1, 0, 1, 0, 1}
	s, err := d.Decode(assign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	perNode := map[int][]TaskSchedule{}
	for i := range s.Tasks {
		perNode[s.Tasks[i].Node] = append(perNode[s.Tasks[i].Node], s.Tasks[i])
	}
	for nd, tasks := range perNode {
		sort.Slice(tasks, func(i, j int) bool { return tasks[i].Start < tasks[j].Start })
		for i := 1; i < len(tasks); i++ {
			if tasks[i].Start < tasks[i-1].Finish {
				t.Errorf("node %d: task starting at %g overlaps previous finishing at %g",
					nd, tasks[i].Start, tasks[i-1].Finish)
			}
		}
	}

	// Precedence holds regardless of node.
	for _, id := range wf.TopologicalOrder() {
		for _, parent := range wf.Parents(id) {
			if s.Tasks[id].Start < s.Tasks[parent].Finish {
				t.Errorf("task %d starts at %g before parent %d finishes at %g",
					id, s.Tasks[id].Start, parent, s.Tasks[parent].Finish)
			}
		}
	}
}

// --- accounting tests ---

func TestDecode_TotalCostMatchesSum(t *testing.T) {
	wf := chainWorkflow(t, 4)
	p := testPool(t, roomyNode(0), roomyNode(1))
	d := newTestDecoder(t, wf, p)

	s, err := d.Decode(Assignment{0, 1, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var want float64
	params := cost.DefaultParams()
	for id := 0; id < wf.Size(); id++ {
		ts := s.Tasks[id]
		_, c := params.TaskCost(wf.Task(id), p.Node(ts.Node), ts.Start)
		want += c
	}
	if math.Abs(s.TotalCost-want) > 1e-9 {
		t.Errorf("TotalCost %g does not match independent recomputation %g", s.TotalCost, want)
	}
}

func TestDecode_Deterministic(t *testing.T) {
	wf := chainWorkflow(t, 5)
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0), roomyNode(1)))
	assign := Assignment{0, 1, 0, 1, 0}

	a, err := d.Decode(assign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := d.Decode(assign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("two decodes of the same assignment differ")
	}
}

func TestDecode_FreshSchedulePerCall(t *testing.T) {
	wf := chainWorkflow(t, 2)
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0)))

	a, _ := d.Decode(Assignment{0, 0})
	a.Tasks[0].Cost = -1
	b, _ := d.Decode(Assignment{0, 0})
	if b.Tasks[0].Cost == -1 {
		t.Error("mutating a returned schedule leaked into a later decode")
	}
}

// --- validation tests ---

func TestDecode_WrongLength(t *testing.T) {
	wf := chainWorkflow(t, 3)
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0)))
	_, err := d.Decode(Assignment{0})
	if errors.CodeOf(err) != errors.ErrCodeBadAssignment {
		t.Fatalf("expected BAD_ASSIGNMENT, got %v", err)
	}
}

func TestDecode_UnknownNode(t *testing.T) {
	wf := chainWorkflow(t, 2)
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0)))
	_, err := d.Decode(Assignment{0, 5})
	if errors.CodeOf(err) != errors.ErrCodeBadAssignment {
		t.Fatalf("expected BAD_ASSIGNMENT, got %v", err)
	}
}

func TestDecodeOrdered_InvalidOrder(t *testing.T) {
	wf := chainWorkflow(t, 3)
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0)))
	_, err := d.DecodeOrdered(Assignment{0, 0, 0}, []int{2, 1, 0})
	if errors.CodeOf(err) != errors.ErrCodeNonTopologicalOrder {
		t.Fatalf("expected NON_TOPOLOGICAL_ORDER, got %v", err)
	}
}

func TestDecodeOrdered_CustomOrder(t *testing.T) {
	// Two independent tasks: visiting 1 before 0 flips who gets the node first.
	wf, err := workflow.NewBuilder().
		AddTask(workflow.Task{ID: 0, Length: 1000, InputSize: 0, OutputSize: 0, PEs: 1, Deadline: 100}).
		AddTask(workflow.Task{ID: 1, Length: 1000, InputSize: 0, OutputSize: 0, PEs: 1, Deadline: 100}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0)))

	s, err := d.DecodeOrdered(Assignment{0, 0}, []int{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Tasks[1].Start != 0 {
		t.Errorf("expected task 1 to run first, started at %g", s.Tasks[1].Start)
	}
	if s.Tasks[0].Start != s.Tasks[1].Finish {
		t.Errorf("expected task 0 to wait until %g, started at %g", s.Tasks[1].Finish, s.Tasks[0].Start)
	}
}

func TestNew_EmptyPool(t *testing.T) {
	wf := chainWorkflow(t, 2)
	_, err := New(wf, nil, node.DefaultRule(), cost.DefaultParams())
	if errors.CodeOf(err) != errors.ErrCodeEmptyPool {
		t.Fatalf("expected EMPTY_NODE_POOL, got %v", err)
	}
}

// --- infeasibility tests ---

func TestDecode_InfeasiblePenalty(t *testing.T) {
	wf, err := workflow.NewBuilder().
		AddTask(workflow.Task{ID: 0, Length: 1000, InputSize: 100, OutputSize: 0, PEs: 4, Deadline: 1000}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tiny := roomyNode(0)
	tiny.PEs = 1 // shortfall 0.75 on the PE requirement
	d := newTestDecoder(t, wf, testPool(t, tiny))

	s, err := d.Decode(Assignment{0})
	if err != nil {
		t.Fatalf("infeasible assignment must decode, got error %v", err)
	}
	if !s.Tasks[0].Infeasible {
		t.Fatal("expected the task to be flagged infeasible")
	}
	params := cost.DefaultParams()
	wantPenalty := params.InfeasiblePenalty * 1.75
	if s.Tasks[0].Cost < wantPenalty {
		t.Errorf("expected cost to include penalty %g, got %g", wantPenalty, s.Tasks[0].Cost)
	}
	if s.TotalCost < wantPenalty {
		t.Errorf("expected TotalCost to include the penalty, got %g", s.TotalCost)
	}
	if s.InfeasibleCount() != 1 {
		t.Errorf("expected 1 infeasible task, got %d", s.InfeasibleCount())
	}
}

func TestDecode_ZeroBandwidthPropagates(t *testing.T) {
	wf := chainWorkflow(t, 2)
	dead := roomyNode(0)
	dead.Bandwidth = 0
	d := newTestDecoder(t, wf, testPool(t, dead))

	s, err := d.Decode(Assignment{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(s.Tasks[0].Finish, 1) {
		t.Errorf("expected infinite finish on zero bandwidth, got %g", s.Tasks[0].Finish)
	}
	if !math.IsInf(s.TotalCost, 1) {
		t.Errorf("expected infinite total cost, got %g", s.TotalCost)
	}
	if math.IsNaN(s.TotalCost) {
		t.Error("total cost must never be NaN")
	}
}

// --- convenience tests ---

func TestEvaluate_MatchesDecode(t *testing.T) {
	wf := chainWorkflow(t, 3)
	d := newTestDecoder(t, wf, testPool(t, roomyNode(0), roomyNode(1)))
	assign := Assignment{0, 1, 0}

	s, err := d.Decode(assign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := d.Evaluate(assign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != s.TotalCost {
		t.Errorf("Evaluate returned %g, Decode returned %g", got, s.TotalCost)
	}
}

func TestAssignment_Clone(t *testing.T) {
	a := Assignment{0, 1, 2}
	c := a.Clone()
	c[0] = 9
	if a[0] == 9 {
		t.Error("clone shares backing array with original")
	}
}

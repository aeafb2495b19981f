package cost

import (
	"math"
	"testing"

	"fogsched/node"
	"fogsched/workflow"
)

// --- test helpers ---

var testTask = workflow.Task{
	ID: 0, Length: 2000, InputSize: 100, OutputSize: 50, PEs: 1, Deadline: 10,
}

var testNode = node.Node{
	ID: 0, Class: node.ClassFog, MIPS: 1000, Memory: 1024,
	Bandwidth: 50, Storage: 2048, PEs: 2,
	CostRate: 0.5, Latency: 0.1, PowerDraw: 30,
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --- time tests ---

func TestExecutionTime_Basic(t *testing.T) {
	if got := ExecutionTime(testTask, testNode); !almost(got, 2.0) {
		t.Errorf("expected 2000/1000 = 2s, got %g", got)
	}
}

func TestExecutionTime_ZeroMIPS(t *testing.T) {
	n := testNode
	n.MIPS = 0
	if got := ExecutionTime(testTask, n); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf on zero MIPS, got %g", got)
	}
}

func TestTransferDelay_Basic(t *testing.T) {
	if got := TransferDelay(testTask, testNode); !almost(got, 2.0) {
		t.Errorf("expected 100/50 = 2s, got %g", got)
	}
}

func TestTransferDelay_ZeroBandwidth(t *testing.T) {
	n := testNode
	n.Bandwidth = 0
	if got := TransferDelay(testTask, n); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf on zero bandwidth, got %g", got)
	}
}

func TestTransferDelay_NoInput(t *testing.T) {
	task := testTask
	task.InputSize = 0
	n := testNode
	n.Bandwidth = 0
	// Nothing to move: even a zero-bandwidth node transfers it instantly.
	if got := TransferDelay(task, n); got != 0 {
		t.Errorf("expected 0 for empty input, got %g", got)
	}
}

func TestFinishTime_Basic(t *testing.T) {
	// 3 + exec 2 + transfer 2 + latency 0.1
	if got := FinishTime(testTask, testNode, 3); !almost(got, 7.1) {
		t.Errorf("expected 7.1, got %g", got)
	}
}

// --- cost tests ---

func TestEnergy_Basic(t *testing.T) {
	if got := Energy(testTask, testNode); !almost(got, 60) {
		t.Errorf("expected 2s * 30W = 60J, got %g", got)
	}
}

func TestMonetaryCost_Basic(t *testing.T) {
	// (2 + 2 + 0.1) * 0.5
	if got := MonetaryCost(testTask, testNode); !almost(got, 2.05) {
		t.Errorf("expected 2.05, got %g", got)
	}
}

func TestDeadlinePenalty_Met(t *testing.T) {
	p := DefaultParams()
	if got := p.DeadlinePenalty(testTask, 9.5); got != 0 {
		t.Errorf("expected no penalty before the deadline, got %g", got)
	}
	if got := p.DeadlinePenalty(testTask, 10.0); got != 0 {
		t.Errorf("expected no penalty exactly at the deadline, got %g", got)
	}
}

func TestDeadlinePenalty_Missed(t *testing.T) {
	p := DefaultParams()
	if got := p.DeadlinePenalty(testTask, 12.5); !almost(got, 25) {
		t.Errorf("expected 2.5s * 10 = 25, got %g", got)
	}
}

func TestTaskCost_Combined(t *testing.T) {
	p := DefaultParams()
	finish, c := p.TaskCost(testTask, testNode, 8)
	if !almost(finish, 12.1) {
		t.Errorf("expected finish 12.1, got %g", finish)
	}
	// Monetary 2.05 plus penalty 2.1*10.
	if !almost(c, 23.05) {
		t.Errorf("expected cost 23.05, got %g", c)
	}
}

// --- degeneracy tests ---

func TestCost_NeverNaN(t *testing.T) {
	p := DefaultParams()
	zero := node.Node{ID: 0, Class: node.ClassCloud, PEs: 1} // all capacities zero
	finish, c := p.TaskCost(testTask, zero, 0)
	if math.IsNaN(finish) || math.IsNaN(c) {
		t.Fatalf("degenerate node produced NaN: finish=%g cost=%g", finish, c)
	}
	if !math.IsInf(finish, 1) {
		t.Errorf("expected infinite finish on zero-capacity node, got %g", finish)
	}
	if got := Energy(testTask, zero); math.IsNaN(got) {
		t.Errorf("expected energy without NaN, got %g", got)
	}
}

func TestCost_ZeroPenaltyRate(t *testing.T) {
	p := Params{PenaltyPerSecond: 0, InfeasiblePenalty: 1e9}
	n := testNode
	n.MIPS = 0
	finish, c := p.TaskCost(testTask, n, 0)
	if !math.IsInf(finish, 1) {
		t.Fatalf("expected infinite finish, got %g", finish)
	}
	if math.IsNaN(c) {
		t.Fatalf("zero penalty rate with infinite overrun produced NaN")
	}
}

func TestDefaultParams_Values(t *testing.T) {
	p := DefaultParams()
	if p.PenaltyPerSecond != 10 {
		t.Errorf("expected penalty 10/s, got %g", p.PenaltyPerSecond)
	}
	if p.InfeasiblePenalty != 1e9 {
		t.Errorf("expected infeasible penalty 1e9, got %g", p.InfeasiblePenalty)
	}
}

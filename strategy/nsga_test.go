package strategy

import (
	"context"
	"math"
	"reflect"
	"testing"

	"fogsched/workflow"
)

// --- domination tests ---

func TestDominates(t *testing.T) {
	tests := []struct {
		name string
		a, b [3]float64
		want bool
	}{
		{"strictly better everywhere", [3]float64{1, 1, 0}, [3]float64{2, 2, 1}, true},
		{"better in one equal in rest", [3]float64{1, 2, 2}, [3]float64{2, 2, 2}, true},
		{"equal vectors", [3]float64{2, 2, 2}, [3]float64{2, 2, 2}, false},
		{"trade-off", [3]float64{1, 3, 1}, [3]float64{2, 2, 2}, false},
		{"worse in one", [3]float64{1, 5, 0}, [3]float64{1, 4, 0}, false},
		{"infinite values", [3]float64{math.Inf(1), 1, 0}, [3]float64{math.Inf(1), 2, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dominates(tt.a, tt.b); got != tt.want {
				t.Errorf("dominates(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFastNonDominatedSort(t *testing.T) {
	pop := []nsgaIndividual{
		{obj: [3]float64{1, 1, 0}}, // dominates everything
		{obj: [3]float64{2, 3, 0}}, // trade-off with the next
		{obj: [3]float64{3, 2, 0}},
		{obj: [3]float64{4, 4, 1}}, // dominated by all
	}
	fronts := fastNonDominatedSort(pop)

	want := [][]int{{0}, {1, 2}, {3}}
	if !reflect.DeepEqual(fronts, want) {
		t.Fatalf("expected fronts %v, got %v", want, fronts)
	}
	for i, wantRank := range []int{0, 1, 1, 2} {
		if pop[i].rank != wantRank {
			t.Errorf("individual %d: expected rank %d, got %d", i, wantRank, pop[i].rank)
		}
	}
}

// --- crowding tests ---

func TestCrowdingAssign(t *testing.T) {
	// Four points on a line: cost ascending, makespan descending, missed
	// constant. The missed dimension has zero span and contributes nothing.
	pop := []nsgaIndividual{
		{obj: [3]float64{0, 3, 1}},
		{obj: [3]float64{1, 2, 1}},
		{obj: [3]float64{2, 1, 1}},
		{obj: [3]float64{3, 0, 1}},
	}
	crowdingAssign(pop, []int{0, 1, 2, 3})

	if !math.IsInf(pop[0].crowd, 1) || !math.IsInf(pop[3].crowd, 1) {
		t.Errorf("expected infinite boundary distances, got %g and %g", pop[0].crowd, pop[3].crowd)
	}
	want := 2.0/3 + 2.0/3
	for _, i := range []int{1, 2} {
		if math.Abs(pop[i].crowd-want) > 1e-12 {
			t.Errorf("individual %d: expected crowding %g, got %g", i, want, pop[i].crowd)
		}
	}
}

func TestCrowdingAssign_SmallFronts(t *testing.T) {
	pop := []nsgaIndividual{
		{obj: [3]float64{1, 2, 0}},
		{obj: [3]float64{2, 1, 0}},
	}
	crowdingAssign(pop, []int{0, 1})
	for i := range pop {
		if !math.IsInf(pop[i].crowd, 1) {
			t.Errorf("individual %d of a two-member front: expected infinite crowding, got %g", i, pop[i].crowd)
		}
	}
}

func TestCrowdingAssign_InfiniteRange(t *testing.T) {
	// An infinite cost span must not poison the interior with NaN.
	pop := []nsgaIndividual{
		{obj: [3]float64{1, 0, 0}},
		{obj: [3]float64{2, 0, 0}},
		{obj: [3]float64{math.Inf(1), 0, 0}},
	}
	crowdingAssign(pop, []int{0, 1, 2})
	for i := range pop {
		if math.IsNaN(pop[i].crowd) {
			t.Fatalf("individual %d has NaN crowding", i)
		}
	}
}

// --- selection tests ---

func TestSelectNext_WholeFrontsThenCrowding(t *testing.T) {
	// A first front of three fits whole into a population of five; the two
	// remaining slots go to the crowding-ranked members of the second front,
	// which are its infinite-distance boundaries, cheapest first.
	first := [][3]float64{{1, 5, 0}, {2, 4, 0}, {3, 3, 0}}
	second := [][3]float64{{10, 13, 0}, {11, 12, 0}, {12, 11, 0}, {13, 10, 0}}

	var combined []nsgaIndividual
	for _, o := range append(append([][3]float64{}, first...), second...) {
		combined = append(combined, nsgaIndividual{obj: o})
	}

	next := selectNext(combined, 5)
	if len(next) != 5 {
		t.Fatalf("expected 5 survivors, got %d", len(next))
	}
	for i, o := range first {
		if next[i].obj != o {
			t.Errorf("survivor %d: expected the whole first front, got %v", i, next[i].obj)
		}
	}
	if next[3].obj != second[0] || next[4].obj != second[3] {
		t.Errorf("expected boundaries %v and %v from the split front, got %v and %v",
			second[0], second[3], next[3].obj, next[4].obj)
	}
	for _, ind := range next[3:] {
		if !math.IsInf(ind.crowd, 1) {
			t.Errorf("split-front survivor %v lacks boundary crowding", ind.obj)
		}
	}
}

func TestPickRepresentative(t *testing.T) {
	front := []nsgaIndividual{
		{obj: [3]float64{5, 1, 0}},
		{obj: [3]float64{1, 9, 2}},
		{obj: [3]float64{3, 3, 1}},
	}
	if got := pickRepresentative(front, "cost"); got != 1 {
		t.Errorf("cost pick: expected index 1, got %d", got)
	}
	if got := pickRepresentative(front, "deadlines"); got != 0 {
		t.Errorf("deadlines pick: expected index 0, got %d", got)
	}
}

// --- full run tests ---

func nsgaTestConfig(seed uint64) Config {
	return Config{Seed: seed, Population: 16, Generations: 15}
}

func TestNSGA2_Deterministic(t *testing.T) {
	wf := forkJoinWF(t)
	p := skewedPool(t)

	a, err := NewNSGA2().Schedule(context.Background(), wf, p, nsgaTestConfig(17))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewNSGA2().Schedule(context.Background(), wf, p, nsgaTestConfig(17))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a.Assignments, b.Assignments) || a.TotalCost != b.TotalCost {
		t.Error("same seed produced different results")
	}
	if !reflect.DeepEqual(a.Front, b.Front) {
		t.Error("same seed produced different fronts")
	}
}

func TestNSGA2_FrontPairwiseNonDominated(t *testing.T) {
	wf := forkJoinWF(t)
	p := skewedPool(t)

	r, err := NewNSGA2().Schedule(context.Background(), wf, p, nsgaTestConfig(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Front) == 0 {
		t.Fatal("expected a non-empty front")
	}
	for i := range r.Front {
		for j := range r.Front {
			if i == j {
				continue
			}
			a := [3]float64{r.Front[i].Cost, r.Front[i].Makespan, float64(r.Front[i].MissedDeadlines)}
			b := [3]float64{r.Front[j].Cost, r.Front[j].Makespan, float64(r.Front[j].MissedDeadlines)}
			if dominates(a, b) {
				t.Errorf("front member %d dominates member %d", i, j)
			}
		}
	}
}

func TestNSGA2_RepresentativeFollowsPick(t *testing.T) {
	wf := forkJoinWF(t)
	p := skewedPool(t)

	cfg := nsgaTestConfig(11)
	cfg.ParetoPick = "cost"
	r, err := NewNSGA2().Schedule(context.Background(), wf, p, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, m := range r.Front {
		if m.Cost < r.TotalCost {
			t.Errorf("front member costs %g, cheaper than the cost-picked representative %g", m.Cost, r.TotalCost)
		}
	}

	cfg.ParetoPick = "deadlines"
	r, err = NewNSGA2().Schedule(context.Background(), wf, p, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repMissed := 0
	for id := range r.Schedule.Tasks {
		if r.Schedule.Tasks[id].Finish > wf.Task(id).Deadline {
			repMissed++
		}
	}
	for _, m := range r.Front {
		if m.MissedDeadlines < repMissed {
			t.Errorf("front member misses %d deadlines, fewer than the representative's %d", m.MissedDeadlines, repMissed)
		}
	}
}

func TestNSGA2_ProgressNeverRegresses(t *testing.T) {
	wf := chainWF(t, 5)
	p := skewedPool(t)
	cfg := nsgaTestConfig(23)

	var snaps []Progress
	cfg.Progress = func(pr Progress) { snaps = append(snaps, pr) }

	if _, err := NewNSGA2().Schedule(context.Background(), wf, p, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) == 0 {
		t.Fatal("expected progress snapshots")
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i].Best > snaps[i-1].Best {
			t.Errorf("best cost regressed from %g to %g at iteration %d",
				snaps[i-1].Best, snaps[i].Best, snaps[i].Iteration)
		}
	}
}

func TestNSGA2_DeadlineTension(t *testing.T) {
	// A tight deadline only the dear fast node can hold: the front records
	// integer missed-deadline counts and finite makespans.
	b := workflow.NewBuilder().
		AddTask(workflow.Task{ID: 0, Length: 2000, InputSize: 0, OutputSize: 0, PEs: 1, Deadline: 1}).
		AddTask(workflow.Task{ID: 1, Length: 2000, InputSize: 0, OutputSize: 0, PEs: 1, Deadline: 100}).
		AddDependency(0, 1)
	wf, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := mustPool(t, fogNode(0, 500, 0.01), cloudNode(1, 4000, 1.0))

	r, err := NewNSGA2().Schedule(context.Background(), wf, p, nsgaTestConfig(29))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, m := range r.Front {
		if m.MissedDeadlines < 0 || m.MissedDeadlines > wf.Size() {
			t.Errorf("front member %d reports %d missed deadlines", i, m.MissedDeadlines)
		}
		if math.IsNaN(m.Makespan) || math.IsNaN(m.Cost) {
			t.Errorf("front member %d carries NaN objectives", i)
		}
	}
}

func TestNSGA2_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNSGA2().Schedule(ctx, chainWF(t, 3), skewedPool(t), nsgaTestConfig(1))
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}

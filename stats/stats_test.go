package stats

import (
	"math"
	"testing"
)

func approx(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

// --- descriptive summary tests ---

func TestDescribe(t *testing.T) {
	s := Describe([]float64{3, 1, 2})
	if s.N != 3 || s.Mean != 2 || s.Min != 1 || s.Max != 3 || s.Median != 2 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if !approx(s.StdDev, 1, 1e-12) {
		t.Errorf("expected stddev 1, got %v", s.StdDev)
	}
}

func TestDescribe_EvenMedian(t *testing.T) {
	s := Describe([]float64{4, 1, 3, 2})
	if s.Median != 2.5 {
		t.Errorf("expected median 2.5, got %v", s.Median)
	}
}

func TestDescribe_Degenerate(t *testing.T) {
	if s := Describe(nil); s != (Summary{}) {
		t.Errorf("expected zero summary for empty sample, got %+v", s)
	}
	s := Describe([]float64{5})
	if s.N != 1 || s.Mean != 5 || s.StdDev != 0 || s.Median != 5 {
		t.Errorf("unexpected single-observation summary: %+v", s)
	}
}

func TestDescribe_DoesNotMutateInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	Describe(xs)
	if xs[0] != 3 || xs[1] != 1 || xs[2] != 2 {
		t.Errorf("input reordered: %v", xs)
	}
}

// --- Welch t-test tests ---

func TestWelchTTest_SeparatedSamples(t *testing.T) {
	a := []float64{10, 11, 12, 10, 11}
	b := []float64{20, 21, 19, 20, 22}

	r, err := WelchTTest(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.T >= 0 {
		t.Errorf("expected negative statistic for lower first mean, got %v", r.T)
	}
	if r.P >= 0.01 {
		t.Errorf("expected strong significance, got p=%v", r.P)
	}
	if !r.Significant(0.05) {
		t.Error("expected significance at 0.05")
	}
}

func TestWelchTTest_IdenticalSamples(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	r, err := WelchTTest(xs, xs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.T != 0 || !approx(r.P, 1, 1e-12) {
		t.Errorf("expected t=0 p=1 for identical samples, got %+v", r)
	}
	// Equal sizes and variances collapse Welch-Satterthwaite to n1+n2-2.
	if !approx(r.DF, 6, 1e-9) {
		t.Errorf("expected 6 degrees of freedom, got %v", r.DF)
	}
}

func TestWelchTTest_ConstantSamples(t *testing.T) {
	t.Run("equal means", func(t *testing.T) {
		r, err := WelchTTest([]float64{5, 5, 5}, []float64{5, 5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.T != 0 || r.P != 1 {
			t.Errorf("expected t=0 p=1, got %+v", r)
		}
	})
	t.Run("different means", func(t *testing.T) {
		r, err := WelchTTest([]float64{5, 5}, []float64{7, 7})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !math.IsInf(r.T, -1) || r.P != 0 {
			t.Errorf("expected t=-Inf p=0, got %+v", r)
		}
	})
}

func TestWelchTTest_TooFewObservations(t *testing.T) {
	if _, err := WelchTTest([]float64{1}, []float64{2, 3}); err == nil {
		t.Error("expected error for single-observation sample")
	}
	if _, err := WelchTTest([]float64{1, 2}, nil); err == nil {
		t.Error("expected error for empty sample")
	}
}

// --- one-way ANOVA tests ---

func TestOneWayANOVA_IdenticalGroups(t *testing.T) {
	g := []float64{1, 2, 3}
	r, err := OneWayANOVA(g, g, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.F != 0 || r.P != 1 {
		t.Errorf("expected F=0 p=1 for identical groups, got %+v", r)
	}
	if r.DFBetween != 2 || r.DFWithin != 6 {
		t.Errorf("unexpected degrees of freedom: %+v", r)
	}
}

func TestOneWayANOVA_SeparatedGroups(t *testing.T) {
	r, err := OneWayANOVA([]float64{1, 2, 3}, []float64{11, 12, 13})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(r.F, 150, 1e-9) {
		t.Errorf("expected F=150, got %v", r.F)
	}
	if r.P >= 0.01 {
		t.Errorf("expected strong significance, got p=%v", r.P)
	}
	if !r.Significant(0.05) {
		t.Error("expected significance at 0.05")
	}
}

func TestOneWayANOVA_ConstantGroups(t *testing.T) {
	t.Run("equal means", func(t *testing.T) {
		r, err := OneWayANOVA([]float64{5, 5}, []float64{5, 5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.F != 0 || r.P != 1 {
			t.Errorf("expected F=0 p=1, got %+v", r)
		}
	})
	t.Run("different means", func(t *testing.T) {
		r, err := OneWayANOVA([]float64{5, 5}, []float64{6, 6})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !math.IsInf(r.F, 1) || r.P != 0 {
			t.Errorf("expected F=+Inf p=0, got %+v", r)
		}
	})
}

func TestOneWayANOVA_BadInput(t *testing.T) {
	if _, err := OneWayANOVA([]float64{1, 2}); err == nil {
		t.Error("expected error for a single group")
	}
	if _, err := OneWayANOVA([]float64{1, 2}, []float64{3}); err == nil {
		t.Error("expected error for a single-observation group")
	}
}

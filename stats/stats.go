// Package stats provides the comparison utilities benchmark reports build
// on: descriptive sample summaries, Welch's t-test and one-way ANOVA.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary describes a sample.
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Describe summarizes a sample. An empty sample yields a zero Summary; a
// single observation has zero standard deviation.
func Describe(xs []float64) Summary {
	n := len(xs)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	s := Summary{
		N:    n,
		Mean: stat.Mean(sorted, nil),
		Min:  sorted[0],
		Max:  sorted[n-1],
	}
	if n > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	if n%2 == 1 {
		s.Median = sorted[n/2]
	} else {
		s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return s
}

// TTest is the outcome of a two-sample test.
type TTest struct {
	// T is the test statistic.
	T float64 `json:"t"`
	// DF is the Welch-Satterthwaite degrees of freedom.
	DF float64 `json:"df"`
	// P is the two-sided p-value.
	P float64 `json:"p"`
}

// Significant reports whether the difference is significant at level alpha.
func (t TTest) Significant(alpha float64) bool {
	return t.P < alpha
}

// WelchTTest compares the means of two independent samples without assuming
// equal variances. Both samples need at least two observations.
func WelchTTest(a, b []float64) (TTest, error) {
	if len(a) < 2 || len(b) < 2 {
		return TTest{}, fmt.Errorf("stats: welch t-test needs at least two observations per sample, got %d and %d", len(a), len(b))
	}

	ma, va := stat.MeanVariance(a, nil)
	mb, vb := stat.MeanVariance(b, nil)
	na, nb := float64(len(a)), float64(len(b))

	sa, sb := va/na, vb/nb
	se := math.Sqrt(sa + sb)
	if se == 0 {
		// Both samples are constant. Equal means cannot be told apart,
		// unequal means differ exactly.
		if ma == mb {
			return TTest{T: 0, DF: na + nb - 2, P: 1}, nil
		}
		return TTest{T: math.Inf(sign(ma - mb)), DF: na + nb - 2, P: 0}, nil
	}

	t := (ma - mb) / se
	df := (sa + sb) * (sa + sb) / (sa*sa/(na-1) + sb*sb/(nb-1))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return TTest{T: t, DF: df, P: p}, nil
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}

// Anova is the outcome of a one-way analysis of variance.
type Anova struct {
	// F is the test statistic.
	F float64 `json:"f"`
	// DFBetween and DFWithin are the degrees of freedom.
	DFBetween float64 `json:"df_between"`
	DFWithin  float64 `json:"df_within"`
	// P is the p-value.
	P float64 `json:"p"`
}

// Significant reports whether any group mean differs at level alpha.
func (a Anova) Significant(alpha float64) bool {
	return a.P < alpha
}

// OneWayANOVA tests whether the means of two or more groups are equal.
// Every group needs at least two observations.
func OneWayANOVA(groups ...[]float64) (Anova, error) {
	if len(groups) < 2 {
		return Anova{}, fmt.Errorf("stats: anova needs at least two groups, got %d", len(groups))
	}

	total := 0
	grand := 0.0
	for i, g := range groups {
		if len(g) < 2 {
			return Anova{}, fmt.Errorf("stats: anova group %d needs at least two observations, got %d", i, len(g))
		}
		total += len(g)
		for _, x := range g {
			grand += x
		}
	}
	grand /= float64(total)

	ssb, ssw := 0.0, 0.0
	for _, g := range groups {
		m, v := stat.MeanVariance(g, nil)
		n := float64(len(g))
		ssb += n * (m - grand) * (m - grand)
		ssw += (n - 1) * v
	}

	dfb := float64(len(groups) - 1)
	dfw := float64(total - len(groups))
	if ssw == 0 {
		if ssb == 0 {
			return Anova{F: 0, DFBetween: dfb, DFWithin: dfw, P: 1}, nil
		}
		return Anova{F: math.Inf(1), DFBetween: dfb, DFWithin: dfw, P: 0}, nil
	}

	f := (ssb / dfb) / (ssw / dfw)
	dist := distuv.F{D1: dfb, D2: dfw}
	return Anova{F: f, DFBetween: dfb, DFWithin: dfw, P: dist.Survival(f)}, nil
}

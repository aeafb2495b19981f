package benchmark

import (
	"fogsched/stats"
)

// Metric extracts one comparison value from a run.
type Metric func(Run) float64

// Standard metrics for comparisons.
func MetricCost(r Run) float64     { return r.Metrics.TotalCost }
func MetricMakespan(r Run) float64 { return r.Metrics.Makespan }
func MetricEnergy(r Run) float64   { return r.Metrics.Energy }

// Comparison is the pairwise significance outcome between two strategies on
// one workload.
type Comparison struct {
	Workload string      `json:"workload"`
	A        string      `json:"a"`
	B        string      `json:"b"`
	MeanA    float64     `json:"mean_a"`
	MeanB    float64     `json:"mean_b"`
	Test     stats.TTest `json:"test"`
}

// Compare runs Welch's t-tests on the metric between every strategy pair,
// per workload. Failed runs contribute no samples; pairs where either side
// has fewer than two samples are left out.
func Compare(runs []Run, metric Metric) []Comparison {
	workloads, strategies, samples := groupSamples(runs, metric)

	var out []Comparison
	for _, wl := range workloads {
		for i := 0; i < len(strategies); i++ {
			for j := i + 1; j < len(strategies); j++ {
				a := samples[sampleKey{strategies[i], wl}]
				b := samples[sampleKey{strategies[j], wl}]
				test, err := stats.WelchTTest(a, b)
				if err != nil {
					continue
				}
				out = append(out, Comparison{
					Workload: wl,
					A:        strategies[i],
					B:        strategies[j],
					MeanA:    stats.Describe(a).Mean,
					MeanB:    stats.Describe(b).Mean,
					Test:     test,
				})
			}
		}
	}
	return out
}

// WorkloadAnova is the outcome of a one-way ANOVA across all strategies on
// one workload.
type WorkloadAnova struct {
	Workload   string      `json:"workload"`
	Strategies []string    `json:"strategies"`
	Test       stats.Anova `json:"test"`
}

// CompareAll runs a one-way ANOVA on the metric across all strategies, per
// workload. Workloads where fewer than two strategies have two or more
// samples are left out.
func CompareAll(runs []Run, metric Metric) []WorkloadAnova {
	workloads, strategies, samples := groupSamples(runs, metric)

	var out []WorkloadAnova
	for _, wl := range workloads {
		var groups [][]float64
		var names []string
		for _, s := range strategies {
			g := samples[sampleKey{s, wl}]
			if len(g) >= 2 {
				groups = append(groups, g)
				names = append(names, s)
			}
		}
		test, err := stats.OneWayANOVA(groups...)
		if err != nil {
			continue
		}
		out = append(out, WorkloadAnova{Workload: wl, Strategies: names, Test: test})
	}
	return out
}

type sampleKey struct{ strategy, workload string }

// groupSamples collects per-cell metric samples from successful runs,
// keeping strategy and workload order of first appearance.
func groupSamples(runs []Run, metric Metric) (workloads, strategies []string, samples map[sampleKey][]float64) {
	samples = make(map[sampleKey][]float64)
	seenWL := make(map[string]bool)
	seenStrat := make(map[string]bool)

	for i := range runs {
		r := &runs[i]
		if !seenWL[r.Workload] {
			seenWL[r.Workload] = true
			workloads = append(workloads, r.Workload)
		}
		if !seenStrat[r.Strategy] {
			seenStrat[r.Strategy] = true
			strategies = append(strategies, r.Strategy)
		}
		if r.Err != nil {
			continue
		}
		k := sampleKey{r.Strategy, r.Workload}
		samples[k] = append(samples[k], metric(*r))
	}
	return workloads, strategies, samples
}

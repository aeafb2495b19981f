package benchmark

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fogsched/stats"
)

// WriteRuns writes one CSV row per run, in matrix order.
func WriteRuns(w io.Writer, runs []Run) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{
		"run_id", "strategy", "workload", "replicate", "seed", "tasks", "nodes",
		"status", "total_cost", "makespan_s", "energy_j", "hit_rate",
		"infeasible", "evaluations", "iterations", "elapsed_ms",
	})
	for i := range runs {
		r := &runs[i]
		status := "ok"
		if r.Err != nil {
			status = "error"
		}
		evals, iters := 0, 0
		if r.Result != nil {
			evals, iters = r.Result.Evaluations, r.Result.Iterations
		}
		cw.Write([]string{
			strconv.Itoa(r.ID),
			r.Strategy,
			r.Workload,
			strconv.Itoa(r.Replicate),
			strconv.FormatUint(r.Seed, 10),
			strconv.Itoa(r.Tasks),
			strconv.Itoa(r.Nodes),
			status,
			fmt.Sprintf("%.3f", r.Metrics.TotalCost),
			fmt.Sprintf("%.3f", r.Metrics.Makespan),
			fmt.Sprintf("%.3f", r.Metrics.Energy),
			fmt.Sprintf("%.3f", r.Metrics.HitRate),
			strconv.Itoa(r.Metrics.Infeasible),
			strconv.Itoa(evals),
			strconv.Itoa(iters),
			strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
		})
	}
	cw.Flush()
	return cw.Error()
}

// Aggregate summarizes the successful replicates of one strategy-workload
// cell.
type Aggregate struct {
	Strategy string
	Workload string
	Runs     int
	Failed   int
	Cost     stats.Summary
	Makespan stats.Summary
	Energy   stats.Summary
	HitRate  stats.Summary
}

// Aggregates groups runs by strategy and workload, in first-seen order.
// Failed runs count toward Failed and contribute no samples.
func Aggregates(runs []Run) []Aggregate {
	type key struct{ strategy, workload string }
	index := make(map[key]int)
	var aggs []Aggregate
	samples := make(map[key]*struct{ cost, makespan, energy, hitRate []float64 })

	for i := range runs {
		r := &runs[i]
		k := key{r.Strategy, r.Workload}
		pos, ok := index[k]
		if !ok {
			pos = len(aggs)
			index[k] = pos
			aggs = append(aggs, Aggregate{Strategy: r.Strategy, Workload: r.Workload})
			samples[k] = &struct{ cost, makespan, energy, hitRate []float64 }{}
		}
		aggs[pos].Runs++
		if r.Err != nil {
			aggs[pos].Failed++
			continue
		}
		s := samples[k]
		s.cost = append(s.cost, r.Metrics.TotalCost)
		s.makespan = append(s.makespan, r.Metrics.Makespan)
		s.energy = append(s.energy, r.Metrics.Energy)
		s.hitRate = append(s.hitRate, r.Metrics.HitRate)
	}

	for i := range aggs {
		s := samples[key{aggs[i].Strategy, aggs[i].Workload}]
		aggs[i].Cost = stats.Describe(s.cost)
		aggs[i].Makespan = stats.Describe(s.makespan)
		aggs[i].Energy = stats.Describe(s.energy)
		aggs[i].HitRate = stats.Describe(s.hitRate)
	}
	return aggs
}

// WriteSummary writes one CSV row per strategy-workload cell.
func WriteSummary(w io.Writer, aggs []Aggregate) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{
		"strategy", "workload", "runs", "failed",
		"mean_cost", "stddev_cost", "median_cost", "min_cost", "max_cost",
		"mean_makespan_s", "mean_energy_j", "mean_hit_rate",
	})
	for i := range aggs {
		a := &aggs[i]
		cw.Write([]string{
			a.Strategy,
			a.Workload,
			strconv.Itoa(a.Runs),
			strconv.Itoa(a.Failed),
			fmt.Sprintf("%.3f", a.Cost.Mean),
			fmt.Sprintf("%.3f", a.Cost.StdDev),
			fmt.Sprintf("%.3f", a.Cost.Median),
			fmt.Sprintf("%.3f", a.Cost.Min),
			fmt.Sprintf("%.3f", a.Cost.Max),
			fmt.Sprintf("%.3f", a.Makespan.Mean),
			fmt.Sprintf("%.3f", a.Energy.Mean),
			fmt.Sprintf("%.3f", a.HitRate.Mean),
		})
	}
	cw.Flush()
	return cw.Error()
}

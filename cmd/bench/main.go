// Command bench runs strategy comparison experiments: a matrix of
// strategies, workloads and seeded replicates, reported as per-run and
// summary CSV plus optional significance tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"fogsched/benchmark"
	"fogsched/generator"
	"fogsched/loader"
	"fogsched/logger"
	"fogsched/rng"
	"fogsched/strategy"
	"fogsched/version"
)

func main() {
	var (
		specs      = flag.String("spec", "", "comma-separated experiment YAML files (overrides -sizes)")
		sizes      = flag.String("sizes", "20,50,100", "comma-separated task counts for generated workloads")
		strategies = flag.String("strategies", "", "comma-separated strategy names (empty runs all)")
		replicates = flag.Int("replicates", 10, "seeded repetitions per strategy-workload cell")
		seed       = flag.Uint64("seed", 1, "base seed of the experiment matrix")
		parallel   = flag.Int("parallel", 0, "concurrent runs (0 = one per CPU)")
		population = flag.Int("population", 0, "population size override (0 = default)")
		budget     = flag.Int("generations", 0, "generation budget override (0 = default)")
		out        = flag.String("out", "runs.csv", "per-run CSV output path (- for stdout)")
		summary    = flag.String("summary", "summary.csv", "summary CSV output path (- for stdout, empty to skip)")
		anova      = flag.Bool("anova", false, "print one-way ANOVA per workload")
		ttest      = flag.Bool("ttest", false, "print pairwise Welch t-tests per workload")
		dotFile    = flag.String("dot", "", "write the first workload's DAG as Graphviz to this path")
		logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		show       = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *show {
		fmt.Println(version.GetFullVersion())
		return
	}

	logger.Init(&logger.Config{ServiceName: "fogsched-bench", Level: *logLevel, Format: "console"})
	log := logger.Get("bench")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workloads, err := buildWorkloads(*specs, *sizes, *seed)
	if err != nil {
		log.Fatal("workload setup failed", logger.ErrorFields("build", err))
	}

	if *dotFile != "" {
		if err := os.WriteFile(*dotFile, []byte(workloads[0].Workflow.DOT()), 0o644); err != nil {
			log.Fatal("DOT export failed", logger.ErrorFields("write", err))
		}
		log.Info("DAG written", map[string]interface{}{"path": *dotFile, "workload": workloads[0].Name})
	}

	cfg := benchmark.Config{
		Replicates: *replicates,
		Seed:       *seed,
		Parallel:   *parallel,
		Scheduler:  strategy.DefaultConfig(),
	}
	if *strategies != "" {
		cfg.Strategies = strings.Split(*strategies, ",")
	}
	if *population > 0 {
		cfg.Scheduler.Population = *population
	}
	if *budget > 0 {
		cfg.Scheduler.Generations = *budget
	}

	runs, err := benchmark.NewRunner(nil).Run(ctx, cfg, workloads)
	if err != nil {
		log.Fatal("matrix failed", logger.ErrorFields("run", err))
	}

	if err := writeCSV(*out, func(w *os.File) error { return benchmark.WriteRuns(w, runs) }); err != nil {
		log.Fatal("run report failed", logger.ErrorFields("csv", err))
	}
	if *summary != "" {
		aggs := benchmark.Aggregates(runs)
		if err := writeCSV(*summary, func(w *os.File) error { return benchmark.WriteSummary(w, aggs) }); err != nil {
			log.Fatal("summary report failed", logger.ErrorFields("csv", err))
		}
	}

	if *anova {
		for _, wa := range benchmark.CompareAll(runs, benchmark.MetricCost) {
			fmt.Printf("anova workload=%s strategies=%s F=%.3f p=%.4f significant=%v\n",
				wa.Workload, strings.Join(wa.Strategies, ","), wa.Test.F, wa.Test.P, wa.Test.Significant(0.05))
		}
	}
	if *ttest {
		for _, cmp := range benchmark.Compare(runs, benchmark.MetricCost) {
			fmt.Printf("ttest workload=%s %s(%.3f) vs %s(%.3f) t=%.3f p=%.4f significant=%v\n",
				cmp.Workload, cmp.A, cmp.MeanA, cmp.B, cmp.MeanB, cmp.Test.T, cmp.Test.P, cmp.Test.Significant(0.05))
		}
	}
}

// buildWorkloads loads the named experiment files, or generates one workload
// per task count when no files are given.
func buildWorkloads(specs, sizes string, seed uint64) ([]benchmark.Workload, error) {
	if specs != "" {
		var workloads []benchmark.Workload
		for _, path := range strings.Split(specs, ",") {
			exp, err := loader.LoadExperiment(strings.TrimSpace(path))
			if err != nil {
				return nil, err
			}
			workloads = append(workloads, benchmark.Workload{
				Name:     exp.Name,
				Workflow: exp.Workflow,
				Pool:     exp.Pool,
				Sites:    exp.Sites,
			})
		}
		return workloads, nil
	}

	var workloads []benchmark.Workload
	for _, field := range strings.Split(sizes, ",") {
		tasks, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || tasks < 1 {
			return nil, fmt.Errorf("bench: invalid task count %q", field)
		}
		name := fmt.Sprintf("synthetic-%d", tasks)

		wf, err := generator.Workflow(generator.WorkflowSpec{Tasks: tasks}, rng.DeriveSeed(seed, name, "workflow"))
		if err != nil {
			return nil, err
		}
		pool, err := generator.Pool(generator.PoolSpec{}, rng.DeriveSeed(seed, name, "pool"))
		if err != nil {
			return nil, err
		}
		sites, err := generator.Sites(generator.SiteSpec{}, rng.DeriveSeed(seed, name, "sites"))
		if err != nil {
			return nil, err
		}
		workloads = append(workloads, benchmark.Workload{Name: name, Workflow: wf, Pool: pool, Sites: sites})
	}
	return workloads, nil
}

// writeCSV writes through fn to the path, with "-" meaning stdout.
func writeCSV(path string, fn func(*os.File) error) error {
	if path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

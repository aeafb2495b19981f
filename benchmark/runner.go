package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"fogsched/errors"
	"fogsched/logger"
	"fogsched/node"
	"fogsched/rng"
	"fogsched/strategy"
	"fogsched/workflow"
)

// Workload is one named scheduling input of the matrix.
type Workload struct {
	Name     string
	Workflow *workflow.Workflow
	Pool     *node.Pool
	// Sites feeds the hybrid strategy. Other strategies ignore it.
	Sites []node.Site
}

// Config configures an experiment matrix.
type Config struct {
	// Strategies names the strategies to run. Empty runs every strategy in
	// the registry.
	Strategies []string
	// Replicates is the number of seeded repetitions per cell. Zero means
	// one.
	Replicates int
	// Seed is the base seed. Every replicate derives its own from it.
	Seed uint64
	// Parallel bounds concurrent runs. Zero means one worker per CPU.
	Parallel int
	// Scheduler carries the strategy knobs shared across all runs.
	Scheduler strategy.Config
}

// Run is one completed cell replicate of the matrix.
type Run struct {
	ID        int              `json:"id"`
	Strategy  string           `json:"strategy"`
	Workload  string           `json:"workload"`
	Replicate int              `json:"replicate"`
	Seed      uint64           `json:"seed"`
	Tasks     int              `json:"tasks"`
	Nodes     int              `json:"nodes"`
	Elapsed   time.Duration    `json:"elapsed"`
	Metrics   Metrics          `json:"metrics"`
	Result    *strategy.Result `json:"-"`
	Err       error            `json:"-"`
}

// Runner executes strategy x workload x replicate matrices on a goroutine
// pool.
type Runner struct {
	registry *strategy.Registry
	log      *logger.Logger
}

// NewRunner creates a runner over the given registry. A nil registry means
// all built-in strategies.
func NewRunner(registry *strategy.Registry) *Runner {
	if registry == nil {
		registry = strategy.DefaultRegistry()
	}
	return &Runner{registry: registry, log: logger.Get("benchmark")}
}

type job struct {
	run      *Run
	workload *Workload
}

// Run executes the full matrix and returns one Run per cell replicate, in
// matrix order. Each replicate derives its seed from the base seed, the
// strategy, the workload name and the replicate index, so neither run order
// nor parallelism changes any result. A failed run records its error and
// does not stop the rest of the matrix.
func (r *Runner) Run(ctx context.Context, cfg Config, workloads []Workload) ([]Run, error) {
	if len(workloads) == 0 {
		return nil, fmt.Errorf("benchmark: no workloads")
	}
	names := cfg.Strategies
	if len(names) == 0 {
		names = r.registry.List()
	}
	for _, name := range names {
		if _, ok := r.registry.Get(name); !ok {
			return nil, errors.UnknownStrategy(name)
		}
	}
	replicates := cfg.Replicates
	if replicates <= 0 {
		replicates = 1
	}
	parallel := cfg.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	runs := make([]Run, 0, len(names)*len(workloads)*replicates)
	jobs := make([]job, 0, cap(runs))
	for _, name := range names {
		for wi := range workloads {
			for rep := 0; rep < replicates; rep++ {
				runs = append(runs, Run{
					ID:        len(runs),
					Strategy:  name,
					Workload:  workloads[wi].Name,
					Replicate: rep,
					Seed:      rng.DeriveSeed(cfg.Seed, name, workloads[wi].Name, strconv.Itoa(rep)),
					Tasks:     workloads[wi].Workflow.Size(),
					Nodes:     workloads[wi].Pool.Size(),
				})
			}
		}
	}
	for i := range runs {
		jobs = append(jobs, job{run: &runs[i], workload: r.workloadFor(workloads, runs[i].Workload)})
	}

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(min(parallel, len(runs)), func(input interface{}) {
		defer wg.Done()
		j := input.(job)
		r.execute(ctx, cfg, j.run, j.workload)
	}, ants.WithPreAlloc(true), ants.WithDisablePurge(true))
	if err != nil {
		return nil, fmt.Errorf("benchmark: creating worker pool: %w", err)
	}
	defer pool.Release()

	r.log.Info("matrix started", map[string]interface{}{
		"strategies": len(names),
		"workloads":  len(workloads),
		"replicates": replicates,
		"runs":       len(runs),
		"parallel":   min(parallel, len(runs)),
	})

	started := time.Now()
	for i := range jobs {
		wg.Add(1)
		if err := pool.Invoke(jobs[i]); err != nil {
			wg.Done()
			jobs[i].run.Err = fmt.Errorf("benchmark: submitting run %d: %w", jobs[i].run.ID, err)
		}
	}
	wg.Wait()

	failed := 0
	for i := range runs {
		if runs[i].Err != nil {
			failed++
		}
	}
	r.log.Info("matrix finished", logger.MergeWithDuration(map[string]interface{}{
		"runs":   len(runs),
		"failed": failed,
	}, time.Since(started)))
	return runs, nil
}

func (r *Runner) workloadFor(workloads []Workload, name string) *Workload {
	for i := range workloads {
		if workloads[i].Name == name {
			return &workloads[i]
		}
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, cfg Config, run *Run, wl *Workload) {
	s, ok := r.registry.Get(run.Strategy)
	if !ok {
		run.Err = errors.UnknownStrategy(run.Strategy)
		return
	}

	sc := cfg.Scheduler
	sc.Seed = run.Seed
	if len(wl.Sites) > 0 {
		sc.Sites = wl.Sites
	}
	sc.ApplyDefaults()

	log := r.log.WithFields(map[string]interface{}{
		logger.FieldStrategy:  run.Strategy,
		logger.FieldWorkload:  run.Workload,
		logger.FieldReplicate: run.Replicate,
		logger.FieldSeed:      run.Seed,
	})

	started := time.Now()
	res, err := s.Schedule(ctx, wl.Workflow, wl.Pool, sc)
	run.Elapsed = time.Since(started)
	if err != nil {
		run.Err = err
		log.Error("run failed", logger.ErrorFields("schedule", err))
		return
	}
	run.Result = res

	m, err := Compute(wl.Workflow, wl.Pool, res, sc.Rule, sc.Cost)
	if err != nil {
		run.Err = err
		log.Error("metrics rejected result", logger.ErrorFields("compute", err))
		return
	}
	run.Metrics = m

	log.Debug("run finished", map[string]interface{}{
		logger.FieldCost:     m.TotalCost,
		logger.FieldMakespan: m.Makespan,
		logger.FieldDuration: run.Elapsed.Milliseconds(),
	})
}

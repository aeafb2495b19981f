package api

import (
	"fogsched/benchmark"
	"fogsched/errors"
	"fogsched/loader"
	"fogsched/node"
	"fogsched/placement"
	"fogsched/strategy"
	"fogsched/validation"
)

// ScheduleRequest asks one strategy to schedule one experiment. The
// experiment arrives inline as a document, or by name resolved against the
// configured experiment directories.
type ScheduleRequest struct {
	// Strategy is the registry name of the strategy to run.
	Strategy string `json:"strategy" validate:"required"`
	// RunID correlates the run with an event-stream subscription. Optional;
	// the service assigns one when absent.
	RunID string `json:"run_id,omitempty"`
	// Experiment is the inline experiment document.
	Experiment *loader.Document `json:"experiment,omitempty"`
	// ExperimentName resolves a stored experiment instead.
	ExperimentName string `json:"experiment_name,omitempty"`
	// Config overrides the server's scheduling defaults for this run.
	Config *strategy.Config `json:"config,omitempty"`
}

// Validate checks the request shape before any hydration work.
func (r *ScheduleRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	v := validation.New()
	v.Custom(r.Experiment != nil || r.ExperimentName != "", "experiment", "either experiment or experiment_name is required")
	v.Custom(r.Experiment == nil || r.ExperimentName == "", "experiment", "experiment and experiment_name are mutually exclusive")
	if r.RunID != "" {
		if _, err := validation.ValidateUUID("run_id", r.RunID); err != nil {
			return err
		}
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ScheduleResponse carries the strategy result and the derived metrics of
// one completed run.
type ScheduleResponse struct {
	RunID      string            `json:"run_id"`
	Experiment string            `json:"experiment"`
	Result     *strategy.Result  `json:"result"`
	Metrics    benchmark.Metrics `json:"metrics"`
}

// PlacementRequest asks the placement optimizer to open fog sites for a
// workflow.
type PlacementRequest struct {
	// Experiment supplies the workflow and the candidate sites.
	Experiment *loader.Document `json:"experiment,omitempty"`
	// ExperimentName resolves a stored experiment instead.
	ExperimentName string `json:"experiment_name,omitempty"`
	// Sites is the number of sites to open. Zero opens half the candidates.
	Sites int `json:"sites,omitempty" validate:"gte=0"`
	// SwapBudget bounds the local search. Zero uses the default budget.
	SwapBudget int `json:"swap_budget,omitempty" validate:"gte=0"`
	// Seed drives the swap search.
	Seed uint64 `json:"seed,omitempty"`
}

// Validate checks the request shape.
func (r *PlacementRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	v := validation.New()
	v.Custom(r.Experiment != nil || r.ExperimentName != "", "experiment", "either experiment or experiment_name is required")
	v.Custom(r.Experiment == nil || r.ExperimentName == "", "experiment", "experiment and experiment_name are mutually exclusive")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// PlacementResponse lists the opened sites and the materialized node pool.
type PlacementResponse struct {
	Experiment string            `json:"experiment"`
	Placement  *placement.Result `json:"placement"`
	Nodes      []node.Node       `json:"nodes"`
}

// StrategyInfo describes one registered strategy.
type StrategyInfo struct {
	Name string `json:"name"`
}

// hydrate resolves either the inline document or the stored experiment.
func hydrate(doc *loader.Document, name string, files loader.Loader) (*loader.Experiment, error) {
	if doc != nil {
		return doc.Hydrate()
	}
	if files == nil {
		return nil, errors.SpecParse(name, errors.MissingField("experiment_dirs"))
	}
	return files.Load(name)
}

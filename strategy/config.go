package strategy

import (
	"fogsched/cost"
	"fogsched/node"
	"fogsched/validation"
)

// Config carries every knob of a strategy invocation. Greedy strategies read
// only the seed-independent parts (rule, cost parameters); the evolutionary
// strategies read all of it. Call ApplyDefaults before Validate; strategies
// do both on entry, so a zero Config plus a seed is a complete request.
type Config struct {
	// Seed drives all randomness of the run. Identical configurations with
	// identical seeds produce identical results.
	Seed uint64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	// Population is the number of candidates per generation.
	Population int `json:"population" yaml:"population" mapstructure:"population" validate:"gte=2"`
	// Generations is the iteration budget.
	Generations int `json:"generations" yaml:"generations" mapstructure:"generations" validate:"gte=1"`
	// TournamentSize is the selection tournament size.
	TournamentSize int `json:"tournament_size" yaml:"tournament_size" mapstructure:"tournament_size" validate:"gte=1"`
	// CrossoverRate is the probability of recombining a parent pair.
	CrossoverRate float64 `json:"crossover_rate" yaml:"crossover_rate" mapstructure:"crossover_rate" validate:"gte=0,lte=1"`
	// MutationRate is the per-gene reassignment probability.
	MutationRate float64 `json:"mutation_rate" yaml:"mutation_rate" mapstructure:"mutation_rate" validate:"gte=0,lte=1"`
	// Crossover selects the recombination operator.
	Crossover string `json:"crossover" yaml:"crossover" mapstructure:"crossover" validate:"oneof=uniform onepoint"`
	// Elitism is the number of best candidates copied unchanged.
	Elitism int `json:"elitism" yaml:"elitism" mapstructure:"elitism" validate:"gte=0"`

	// Inertia is the (initial) particle inertia weight.
	Inertia float64 `json:"inertia" yaml:"inertia" mapstructure:"inertia" validate:"gt=0"`
	// InertiaFinal is the inertia the enhanced swarm decays to.
	InertiaFinal float64 `json:"inertia_final" yaml:"inertia_final" mapstructure:"inertia_final" validate:"gt=0"`
	// Cognitive is the pull towards a particle's personal best.
	Cognitive float64 `json:"cognitive" yaml:"cognitive" mapstructure:"cognitive" validate:"gte=0"`
	// Social is the pull towards the swarm's global best.
	Social float64 `json:"social" yaml:"social" mapstructure:"social" validate:"gte=0"`
	// ReseedEvery is the enhanced swarm's re-injection period in iterations.
	ReseedEvery int `json:"reseed_every" yaml:"reseed_every" mapstructure:"reseed_every" validate:"gte=1"`
	// ReseedFraction is the share of worst particles restarted on re-injection.
	ReseedFraction float64 `json:"reseed_fraction" yaml:"reseed_fraction" mapstructure:"reseed_fraction" validate:"gte=0,lte=1"`

	// EarlyStopWindow stops a run after this many iterations without
	// improvement. Zero disables early stopping.
	EarlyStopWindow int `json:"early_stop_window" yaml:"early_stop_window" mapstructure:"early_stop_window" validate:"gte=0"`

	// ParetoPick selects the single representative from a Pareto front:
	// "cost" picks the cheapest candidate, "deadlines" the one missing the
	// fewest deadlines.
	ParetoPick string `json:"pareto_pick" yaml:"pareto_pick" mapstructure:"pareto_pick" validate:"oneof=cost deadlines"`

	// HybridSites is the number of fog sites the hybrid strategy opens.
	// Zero derives half the candidate count.
	HybridSites int `json:"hybrid_sites" yaml:"hybrid_sites" mapstructure:"hybrid_sites" validate:"gte=0"`
	// SwapBudget bounds the placement local search.
	SwapBudget int `json:"swap_budget" yaml:"swap_budget" mapstructure:"swap_budget" validate:"gte=0"`
	// Sites are the candidate fog sites for the hybrid strategy.
	Sites []node.Site `json:"sites,omitempty" yaml:"sites,omitempty" mapstructure:"sites"`

	// Rule is the capability rule shared by all strategies of a run.
	Rule node.Rule `json:"rule" yaml:"rule" mapstructure:"rule"`
	// Cost holds the cost model parameters shared by all strategies of a run.
	Cost cost.Params `json:"cost" yaml:"cost" mapstructure:"cost"`

	// Progress, when set, receives one snapshot per iteration.
	Progress ProgressFunc `json:"-" yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Population == 0 {
		c.Population = 50
	}
	if c.Generations == 0 {
		c.Generations = 150
	}
	if c.TournamentSize == 0 {
		c.TournamentSize = 3
	}
	if c.CrossoverRate == 0 {
		c.CrossoverRate = 0.9
	}
	if c.MutationRate == 0 {
		c.MutationRate = 0.05
	}
	if c.Crossover == "" {
		c.Crossover = "uniform"
	}
	if c.Elitism == 0 {
		c.Elitism = 1
	}
	if c.Inertia == 0 {
		c.Inertia = 0.9
	}
	if c.InertiaFinal == 0 {
		c.InertiaFinal = 0.4
	}
	if c.Cognitive == 0 {
		c.Cognitive = 2.0
	}
	if c.Social == 0 {
		c.Social = 2.0
	}
	if c.ReseedEvery == 0 {
		c.ReseedEvery = 25
	}
	if c.ReseedFraction == 0 {
		c.ReseedFraction = 0.2
	}
	if c.ParetoPick == "" {
		c.ParetoPick = "cost"
	}
	if c.HybridSites == 0 && len(c.Sites) > 0 {
		c.HybridSites = max(1, len(c.Sites)/2)
	}
	if c.SwapBudget == 0 {
		c.SwapBudget = 100
	}
	if c.Rule == (node.Rule{}) {
		c.Rule = node.DefaultRule()
	}
	if c.Cost == (cost.Params{}) {
		c.Cost = cost.DefaultParams()
	}
}

// Validate checks the configuration after defaults have been applied.
func (c Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	v.Custom(c.TournamentSize <= c.Population, "tournament_size", "must not exceed population")
	v.Custom(c.Elitism < c.Population, "elitism", "must be less than population")
	v.Custom(c.InertiaFinal <= c.Inertia, "inertia_final", "must not exceed inertia")
	if len(c.Sites) > 0 {
		v.Custom(c.HybridSites <= len(c.Sites), "hybrid_sites", "must not exceed the candidate site count")
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

package api

import "fmt"

// Config holds the HTTP service configuration.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	// Prefix is the base path of the scheduling API (for example "/api/v1").
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	// MaxRuns bounds concurrent scheduling runs. Requests beyond the bound
	// are rejected with SCHEDULER_BUSY rather than queued.
	MaxRuns int `yaml:"max_runs" mapstructure:"max_runs"`
	// ExperimentDirs lists directories searched for named experiment files.
	ExperimentDirs []string `yaml:"experiment_dirs" mapstructure:"experiment_dirs"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	// Write timeout stays generous: SSE subscribers hold their response
	// open for the whole run.
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 300
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.Prefix == "" {
		c.Prefix = "/api/v1"
	}
	if c.MaxRuns == 0 {
		c.MaxRuns = 4
	}
	if len(c.ExperimentDirs) == 0 {
		c.ExperimentDirs = []string{"./experiments"}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("api.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("api.read_timeout must be non-negative (got: %d)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("api.write_timeout must be non-negative (got: %d)", c.WriteTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("api.idle_timeout must be non-negative (got: %d)", c.IdleTimeout)
	}
	if c.MaxRuns < 1 {
		return fmt.Errorf("api.max_runs must be positive (got: %d)", c.MaxRuns)
	}
	return nil
}

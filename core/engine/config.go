package engine

import (
	"fmt"
	"time"

	"github.com/satops/gsched/core/allocator"
	"github.com/satops/gsched/core/annealing"
	"github.com/satops/gsched/core/balancer"
	"github.com/satops/gsched/core/model"
	"github.com/satops/gsched/core/optimizer"
)

// Config assembles the whole pipeline's configuration.
type Config struct {
	TimeBudgetSeconds  int `json:"time_budget_seconds"`
	MaxAntennasCeiling int `json:"max_antennas_ceiling"`
	Workers            int `json:"workers"`

	Allocator allocator.Config `json:"allocator"`
	Optimizer optimizer.Config `json:"optimizer"`
	Annealing annealing.Config `json:"annealing"`
	Balancer  balancer.Config  `json:"balancer"`
}

// Default returns the stock pipeline: load-balance greedy allocation,
// local search and rebalancing on, annealing off.
func Default() Config {
	cfg := Config{}
	cfg.Optimizer.Enabled = true
	cfg.Balancer.Enabled = true
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset numeric parameters. The stage enable flags are
// left as given.
func (c *Config) SetDefaults() {
	if c.TimeBudgetSeconds == 0 {
		c.TimeBudgetSeconds = 600
	}
	if c.MaxAntennasCeiling == 0 {
		c.MaxAntennasCeiling = model.DefaultAntennaCeiling
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	c.Allocator.SetDefaults()
	c.Optimizer.SetDefaults()
	c.Annealing.SetDefaults()
	c.Balancer.SetDefaults()
}

// Validate checks the run parameters and every stage configuration.
func (c Config) Validate() error {
	if c.TimeBudgetSeconds <= 0 {
		return fmt.Errorf("engine: time budget must be positive, got %d", c.TimeBudgetSeconds)
	}
	if c.MaxAntennasCeiling <= 0 {
		return fmt.Errorf("engine: antenna ceiling must be positive, got %d", c.MaxAntennasCeiling)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("engine: worker count must be positive, got %d", c.Workers)
	}
	if err := c.Allocator.Validate(); err != nil {
		return err
	}
	if err := c.Optimizer.Validate(); err != nil {
		return err
	}
	if err := c.Annealing.Validate(); err != nil {
		return err
	}
	return c.Balancer.Validate()
}

// TimeBudget returns the overall wall clock allowance for one run.
func (c Config) TimeBudget() time.Duration {
	return time.Duration(c.TimeBudgetSeconds) * time.Second
}

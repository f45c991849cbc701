package annealing

import (
	"fmt"
	"time"
)

// PhaseConfig parameterizes one annealing phase. The energy weights are
// configuration rather than fixed constants: the aggressive first phase
// ships with a zero success weight so it trades success for balance, the
// second phase weighs both.
type PhaseConfig struct {
	InitialTemp   float64 `json:"initial_temp"`
	Cooling       float64 `json:"cooling"`
	Proposals     int     `json:"proposals_per_level"`
	TimeShare     float64 `json:"time_share"`
	SuccessWeight float64 `json:"success_weight"`
	StdWeight     float64 `json:"std_weight"`
	GapWeight     float64 `json:"gap_weight"`
}

// Config controls the simulated annealing refiner.
type Config struct {
	Enabled           bool        `json:"enabled"`
	Seed              int64       `json:"seed"`
	MinTemp           float64     `json:"min_temp"`
	TimeBudgetSeconds int         `json:"time_budget_seconds"`
	StaleLevels       int         `json:"stale_levels"`
	Phase1            PhaseConfig `json:"phase1"`
	Phase2            PhaseConfig `json:"phase2"`
}

// SetDefaults applies the stock two-phase schedule: an aggressive balancing
// phase followed by a fine-tuning phase.
func (c *Config) SetDefaults() {
	if c.MinTemp == 0 {
		c.MinTemp = 0.01
	}
	if c.TimeBudgetSeconds == 0 {
		c.TimeBudgetSeconds = 300
	}
	if c.StaleLevels == 0 {
		c.StaleLevels = 30
	}
	if c.Phase1 == (PhaseConfig{}) {
		c.Phase1 = PhaseConfig{
			InitialTemp: 10000, Cooling: 0.90, Proposals: 2000, TimeShare: 0.4,
			SuccessWeight: 0, StdWeight: 1000, GapWeight: 500,
		}
	}
	if c.Phase2 == (PhaseConfig{}) {
		c.Phase2 = PhaseConfig{
			InitialTemp: 2000, Cooling: 0.93, Proposals: 1000, TimeShare: 0.6,
			SuccessWeight: 100, StdWeight: 100, GapWeight: 150,
		}
	}
}

// Validate reports whether the schedule parameters are usable.
func (c Config) Validate() error {
	if c.MinTemp <= 0 {
		return fmt.Errorf("annealing: min temperature must be positive")
	}
	if c.TimeBudgetSeconds <= 0 {
		return fmt.Errorf("annealing: time budget must be positive")
	}
	for i, p := range []PhaseConfig{c.Phase1, c.Phase2} {
		if p.InitialTemp <= c.MinTemp {
			return fmt.Errorf("annealing: phase %d initial temperature must exceed the floor", i+1)
		}
		if p.Cooling <= 0 || p.Cooling >= 1 {
			return fmt.Errorf("annealing: phase %d cooling factor must be in (0,1), got %v", i+1, p.Cooling)
		}
		if p.Proposals <= 0 {
			return fmt.Errorf("annealing: phase %d proposals per level must be positive", i+1)
		}
		if p.TimeShare < 0 {
			return fmt.Errorf("annealing: phase %d time share must not be negative", i+1)
		}
	}
	return nil
}

// TimeBudget returns the refiner's wall clock allowance.
func (c Config) TimeBudget() time.Duration {
	return time.Duration(c.TimeBudgetSeconds) * time.Second
}

package optimizer

import "fmt"

// Eviction policies for the swap move.
const (
	EvictByDuration = "duration"
	EvictByClass    = "class"
)

// Config controls the local search stage.
type Config struct {
	Enabled        bool   `json:"enabled"`
	MaxIterations  int    `json:"max_iterations"`
	EvictionPolicy string `json:"eviction_policy"`
}

// SetDefaults applies the default iteration cap and eviction policy.
func (c *Config) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 20
	}
	if c.EvictionPolicy == "" {
		c.EvictionPolicy = EvictByDuration
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("optimizer: max iterations must be positive, got %d", c.MaxIterations)
	}
	if c.EvictionPolicy != EvictByDuration && c.EvictionPolicy != EvictByClass {
		return fmt.Errorf("optimizer: unknown eviction policy %q", c.EvictionPolicy)
	}
	return nil
}

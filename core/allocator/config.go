package allocator

import (
	"fmt"
	"time"
)

// Allocation methods.
const (
	MethodLongestWindow    = 1
	MethodAvailabilityRate = 2
	MethodLoadBalance      = 3
)

// Config controls the greedy allocation stage.
type Config struct {
	Method            int     `json:"method"`
	MinContactSeconds int     `json:"min_contact_seconds"`
	TaskWeight        float64 `json:"task_weight"`
	TimeWeight        float64 `json:"time_weight"`
}

// SetDefaults applies the default method and weights.
func (c *Config) SetDefaults() {
	if c.Method == 0 {
		c.Method = MethodLoadBalance
	}
	if c.MinContactSeconds == 0 {
		c.MinContactSeconds = 300
	}
	if c.TaskWeight == 0 && c.TimeWeight == 0 {
		c.TaskWeight = 0.3
		c.TimeWeight = 0.7
	}
}

// Validate reports whether the configuration can drive an allocation.
func (c Config) Validate() error {
	if c.Method < MethodLongestWindow || c.Method > MethodLoadBalance {
		return fmt.Errorf("allocator: unknown method %d", c.Method)
	}
	if c.MinContactSeconds <= 0 {
		return fmt.Errorf("allocator: min contact duration must be positive, got %d", c.MinContactSeconds)
	}
	if c.TaskWeight < 0 || c.TimeWeight < 0 {
		return fmt.Errorf("allocator: load weights must not be negative")
	}
	if c.Method == MethodLoadBalance && c.TaskWeight+c.TimeWeight == 0 {
		return fmt.Errorf("allocator: load weights must not both be zero")
	}
	return nil
}

// MinWindow returns the minimum contact duration as a time.Duration.
func (c Config) MinWindow() time.Duration {
	return time.Duration(c.MinContactSeconds) * time.Second
}

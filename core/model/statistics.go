package model

import "fmt"

// ViolationKind classifies an invariant breach found by the validator.
type ViolationKind int

const (
	// ViolationCapacity marks an instant where a station's concurrent
	// assignments exceed its antenna count.
	ViolationCapacity ViolationKind = iota
	// ViolationWindow marks an assignment lying outside its task's
	// visibility window at the assigned station.
	ViolationWindow
	// ViolationMinDuration marks an assignment shorter than the minimum
	// contact duration.
	ViolationMinDuration
	// ViolationUnknownTask marks an assignment referencing a task absent
	// from the catalog.
	ViolationUnknownTask
)

// String returns a human-readable representation of the violation kind.
func (k ViolationKind) String() string {
	switch k {
	case ViolationCapacity:
		return "capacity"
	case ViolationWindow:
		return "window"
	case ViolationMinDuration:
		return "min-duration"
	case ViolationUnknownTask:
		return "unknown-task"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name so serialized reports stay readable.
func (k ViolationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ViolationKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "capacity":
		*k = ViolationCapacity
	case "window":
		*k = ViolationWindow
	case "min-duration":
		*k = ViolationMinDuration
	case "unknown-task":
		*k = ViolationUnknownTask
	default:
		return fmt.Errorf("unknown violation kind %q", b)
	}
	return nil
}

// Violation describes one invariant breach. Any violation in an
// engine-produced schedule is an internal defect, never a user error.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	StationID string        `json:"station_id"`
	TaskID    string        `json:"task_id,omitempty"`
	Detail    string        `json:"detail"`
}

// Statistics summarizes a terminal schedule. It is derived read-only data
// recomputed from scratch by the validator.
type Statistics struct {
	TotalTasks int `json:"total_tasks"`
	Assigned   int `json:"assigned"`
	Rejected   int `json:"rejected"`
	Successful int `json:"successful"`

	// SuccessRateAll counts every task; SuccessRateEligible excludes tasks
	// whose every window is below the minimum contact duration.
	SuccessRateAll      float64 `json:"success_rate_all"`
	SuccessRateEligible float64 `json:"success_rate_eligible"`

	SuccessRateClimb     float64 `json:"success_rate_climb"`
	SuccessRateOperation float64 `json:"success_rate_operation"`

	// StationLoads holds each station's occupied share of its visibility
	// time in the catalog.
	StationLoads map[string]float64 `json:"station_loads"`
	LoadStdDev   float64            `json:"load_std_dev"`
	LoadGap      float64            `json:"load_gap"`

	Violations []Violation `json:"violations,omitempty"`
	Truncated  bool        `json:"truncated"`
}

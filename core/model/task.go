package model

import (
	"fmt"
	"time"

	"github.com/satops/gsched/core/interval"
)

// TaskClass distinguishes the two kinds of contact a satellite requests.
type TaskClass int

const (
	ClassClimb TaskClass = iota
	ClassOperation
)

// String returns a human-readable representation of the task class.
func (c TaskClass) String() string {
	switch c {
	case ClassClimb:
		return "climb"
	case ClassOperation:
		return "operation"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c TaskClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *TaskClass) UnmarshalText(b []byte) error {
	switch string(b) {
	case "climb":
		*c = ClassClimb
	case "operation":
		*c = ClassOperation
	default:
		return fmt.Errorf("unknown task class %q", string(b))
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c TaskClass) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *TaskClass) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return c.UnmarshalText([]byte(s))
}

// TaskStatus tracks the engine-owned allocation state of a task.
type TaskStatus int

const (
	StatusUnassigned TaskStatus = iota
	StatusAssigned
	StatusRejected
)

// String returns a human-readable representation of the status.
func (s TaskStatus) String() string {
	switch s {
	case StatusUnassigned:
		return "unassigned"
	case StatusAssigned:
		return "assigned"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ContactWindow is a visibility interval between a satellite pass and one
// ground station. A task carries one window per candidate station.
type ContactWindow struct {
	StationID string    `json:"station_id" yaml:"station_id"`
	Start     time.Time `json:"start" yaml:"start"`
	End       time.Time `json:"end" yaml:"end"`
}

// Span returns the window as a half-open interval.
func (w ContactWindow) Span() interval.Span {
	return interval.Span{Start: w.Start, End: w.End}
}

// Duration returns the raw window length. It is fixed at task creation; an
// assignment may truncate the used duration but never the window itself.
func (w ContactWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Task is one candidate satellite contact opportunity to be placed on a
// ground station antenna. The identifying fields are immutable; only the
// allocation outcome recorded in a Schedule changes during a run.
type Task struct {
	ID          string          `json:"id" yaml:"id"`
	SatelliteID string          `json:"satellite_id" yaml:"satellite_id"`
	Band        string          `json:"band" yaml:"band"`
	Class       TaskClass       `json:"class" yaml:"class"`
	Windows     []ContactWindow `json:"windows" yaml:"windows"`
}

// Validate checks that the task is structurally sound.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}
	if len(t.Windows) == 0 {
		return fmt.Errorf("task %s: at least one contact window is required", t.ID)
	}
	for _, w := range t.Windows {
		if w.StationID == "" {
			return fmt.Errorf("task %s: window station id is required", t.ID)
		}
		if !w.Span().Valid() {
			return fmt.Errorf("task %s: malformed window at station %s", t.ID, w.StationID)
		}
	}
	return nil
}

// Window returns the task's visibility window at the given station.
func (t Task) Window(stationID string) (ContactWindow, bool) {
	for _, w := range t.Windows {
		if w.StationID == stationID {
			return w, true
		}
	}
	return ContactWindow{}, false
}

// LongestWindow returns the task's longest candidate window. Ties are broken
// by the earliest start so ordering stays deterministic.
func (t Task) LongestWindow() ContactWindow {
	if len(t.Windows) == 0 {
		return ContactWindow{}
	}
	best := t.Windows[0]
	for _, w := range t.Windows[1:] {
		if w.Duration() > best.Duration() ||
			(w.Duration() == best.Duration() && w.Start.Before(best.Start)) {
			best = w
		}
	}
	return best
}

// Eligible reports whether at least one window meets the minimum contact
// duration. Tasks whose every window falls short can never succeed and are
// excluded from the filtered success rate.
func (t Task) Eligible(min time.Duration) bool {
	for _, w := range t.Windows {
		if w.Duration() >= min {
			return true
		}
	}
	return false
}

// Allocation returns the sub-interval the engine occupies when placing the
// task on w. Climb passes hold the antenna only for the minimum contact
// time; operation passes occupy the full visibility window. The second
// return value is false when the window cannot satisfy the minimum.
func (t Task) Allocation(w ContactWindow, min time.Duration) (interval.Span, bool) {
	if w.Duration() < min {
		return interval.Span{}, false
	}
	if t.Class == ClassClimb {
		return interval.Span{Start: w.Start, End: w.Start.Add(min)}, true
	}
	return w.Span(), true
}

package model

import (
	"sort"
	"time"

	"github.com/satops/gsched/core/interval"
)

// RejectReason explains why a task holds no assignment.
type RejectReason string

const (
	// ReasonNoCapacity marks tasks that could not be placed on any
	// candidate station. This is a normal outcome, not an error.
	ReasonNoCapacity RejectReason = "no-capacity"
	// ReasonShortWindow marks tasks whose every visibility window is below
	// the minimum contact duration; they can never be scheduled.
	ReasonShortWindow RejectReason = "short-window"
)

// Assignment binds one task to a station for a sub-interval of the task's
// visibility window at that station.
type Assignment struct {
	TaskID    string    `json:"task_id" yaml:"task_id"`
	StationID string    `json:"station_id" yaml:"station_id"`
	Start     time.Time `json:"start" yaml:"start"`
	End       time.Time `json:"end" yaml:"end"`
}

// Span returns the allocated interval.
func (a Assignment) Span() interval.Span {
	return interval.Span{Start: a.Start, End: a.End}
}

// Duration returns the allocated contact time.
func (a Assignment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Schedule holds the full allocation outcome of one scheduling run: the
// assignments keyed by task id plus the rejected tasks with their reasons.
// A Schedule is owned by exactly one run and never shared.
type Schedule struct {
	assignments map[string]Assignment
	rejected    map[string]RejectReason
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{
		assignments: make(map[string]Assignment),
		rejected:    make(map[string]RejectReason),
	}
}

// Assign records an assignment for its task, clearing any prior rejection.
func (s *Schedule) Assign(a Assignment) {
	delete(s.rejected, a.TaskID)
	s.assignments[a.TaskID] = a
}

// Reject marks the task as unplaced for the given reason and removes any
// assignment it may hold.
func (s *Schedule) Reject(taskID string, reason RejectReason) {
	delete(s.assignments, taskID)
	s.rejected[taskID] = reason
}

// Unassign removes the task's assignment without marking it rejected.
func (s *Schedule) Unassign(taskID string) {
	delete(s.assignments, taskID)
}

// Assignment returns the assignment held by the given task.
func (s *Schedule) Assignment(taskID string) (Assignment, bool) {
	a, ok := s.assignments[taskID]
	return a, ok
}

// Status returns the allocation state of the given task.
func (s *Schedule) Status(taskID string) TaskStatus {
	if _, ok := s.assignments[taskID]; ok {
		return StatusAssigned
	}
	if _, ok := s.rejected[taskID]; ok {
		return StatusRejected
	}
	return StatusUnassigned
}

// Assignments returns all assignments sorted by start time, then task id.
func (s *Schedule) Assignments() []Assignment {
	out := make([]Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// StationAssignments returns the assignments placed on one station, sorted
// by start time.
func (s *Schedule) StationAssignments(stationID string) []Assignment {
	var out []Assignment
	for _, a := range s.assignments {
		if a.StationID == stationID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// StationSpans returns the allocated intervals on one station.
func (s *Schedule) StationSpans(stationID string) []interval.Span {
	asn := s.StationAssignments(stationID)
	spans := make([]interval.Span, len(asn))
	for i, a := range asn {
		spans[i] = a.Span()
	}
	return spans
}

// Fits reports whether placing sp on the station keeps its peak concurrency
// within capacity, checking only that station's assignments.
func (s *Schedule) Fits(stationID string, sp interval.Span, capacity int) bool {
	return interval.Fits(s.StationSpans(stationID), sp, capacity)
}

// RejectedIDs returns the rejected task ids in sorted order.
func (s *Schedule) RejectedIDs() []string {
	out := make([]string, 0, len(s.rejected))
	for id := range s.rejected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RejectReason returns the recorded reason for a rejected task.
func (s *Schedule) RejectReason(taskID string) (RejectReason, bool) {
	r, ok := s.rejected[taskID]
	return r, ok
}

// AssignedCount returns the number of tasks holding an assignment.
func (s *Schedule) AssignedCount() int {
	return len(s.assignments)
}

// RejectedCount returns the number of rejected tasks.
func (s *Schedule) RejectedCount() int {
	return len(s.rejected)
}

// SuccessCount returns how many assignments meet the minimum contact
// duration. Assignments below the threshold are never counted successful.
func (s *Schedule) SuccessCount(min time.Duration) int {
	n := 0
	for _, a := range s.assignments {
		if a.Duration() >= min {
			n++
		}
	}
	return n
}

// OccupiedTime returns the cumulative allocated contact time per station.
func (s *Schedule) OccupiedTime() map[string]time.Duration {
	out := make(map[string]time.Duration)
	for _, a := range s.assignments {
		out[a.StationID] += a.Duration()
	}
	return out
}

// Clone returns a deep copy of the schedule. The search stages work on
// clones so a rejected proposal never leaks into the incumbent state.
func (s *Schedule) Clone() *Schedule {
	cp := NewSchedule()
	for id, a := range s.assignments {
		cp.assignments[id] = a
	}
	for id, r := range s.rejected {
		cp.rejected[id] = r
	}
	return cp
}

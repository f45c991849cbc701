// Package validator recomputes the scheduling invariants from scratch on a
// terminal schedule and derives its run statistics.
package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/satops/gsched/core/interval"
	"github.com/satops/gsched/core/logger"
	"github.com/satops/gsched/core/model"
)

// InvariantError reports invariant breaches in an engine-produced schedule.
// It is an internal-defect class: it must never be folded into ordinary
// task rejection.
type InvariantError struct {
	Violations []model.Violation
}

func (e *InvariantError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schedule violates %d invariant(s):", len(e.Violations))
	for _, v := range e.Violations {
		fmt.Fprintf(&b, " [%s station=%s task=%s %s]", v.Kind, v.StationID, v.TaskID, v.Detail)
	}
	return b.String()
}

// Validator checks a schedule against the catalog and registry it was built
// from. It trusts none of the engine's incremental bookkeeping: every check
// starts from the raw assignments.
type Validator struct {
	reg *model.Registry
	min time.Duration
	log logger.Logger
}

// New builds a validator for the given registry and minimum contact time.
func New(reg *model.Registry, minWindow time.Duration, log logger.Logger) *Validator {
	return &Validator{reg: reg, min: minWindow, log: log}
}

// Validate checks every invariant and computes statistics. The statistics
// are returned even when violations are found so callers can inspect the
// defective schedule; the error is non-nil exactly when violations exist.
func (v *Validator) Validate(tasks []model.Task, sched *model.Schedule) (model.Statistics, error) {
	violations := v.Check(tasks, sched)
	stats := v.statistics(tasks, sched)
	stats.Violations = violations
	if len(violations) > 0 {
		v.log.Errorf("invariant check failed: %d violation(s)", len(violations))
		return stats, &InvariantError{Violations: violations}
	}
	return stats, nil
}

// Check sweeps the full schedule and returns every invariant breach.
func (v *Validator) Check(tasks []model.Task, sched *model.Schedule) []model.Violation {
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var out []model.Violation
	for _, a := range sched.Assignments() {
		t, ok := byID[a.TaskID]
		if !ok {
			out = append(out, model.Violation{
				Kind: model.ViolationUnknownTask, StationID: a.StationID, TaskID: a.TaskID,
				Detail: "assignment references a task absent from the catalog",
			})
			continue
		}
		w, ok := t.Window(a.StationID)
		if !ok {
			out = append(out, model.Violation{
				Kind: model.ViolationWindow, StationID: a.StationID, TaskID: a.TaskID,
				Detail: "task has no visibility window at the assigned station",
			})
		} else if !w.Span().Contains(a.Span()) {
			out = append(out, model.Violation{
				Kind: model.ViolationWindow, StationID: a.StationID, TaskID: a.TaskID,
				Detail: fmt.Sprintf("allocated [%s,%s) outside window [%s,%s)",
					a.Start.Format(time.RFC3339), a.End.Format(time.RFC3339),
					w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339)),
			})
		}
		if a.Duration() < v.min {
			out = append(out, model.Violation{
				Kind: model.ViolationMinDuration, StationID: a.StationID, TaskID: a.TaskID,
				Detail: fmt.Sprintf("allocated %s, minimum is %s", a.Duration(), v.min),
			})
		}
	}

	for _, id := range v.reg.IDs() {
		capacity := v.reg.Capacity(id)
		if peak := interval.MaxConcurrency(sched.StationSpans(id)); peak > capacity {
			out = append(out, model.Violation{
				Kind: model.ViolationCapacity, StationID: id,
				Detail: fmt.Sprintf("peak concurrency %d exceeds capacity %d", peak, capacity),
			})
		}
	}
	return out
}

// statistics derives the run summary. Success rates by class follow the
// class split of the catalog; a class with no tasks reports a zero rate.
func (v *Validator) statistics(tasks []model.Task, sched *model.Schedule) model.Statistics {
	stats := model.Statistics{
		TotalTasks: len(tasks),
		Assigned:   sched.AssignedCount(),
		Rejected:   sched.RejectedCount(),
		Successful: sched.SuccessCount(v.min),
	}

	eligible := 0
	classTotal := map[model.TaskClass]int{}
	classSuccess := map[model.TaskClass]int{}
	for _, t := range tasks {
		if t.Eligible(v.min) {
			eligible++
		}
		classTotal[t.Class]++
		if a, ok := sched.Assignment(t.ID); ok && a.Duration() >= v.min {
			classSuccess[t.Class]++
		}
	}

	if stats.TotalTasks > 0 {
		stats.SuccessRateAll = float64(stats.Successful) / float64(stats.TotalTasks)
	}
	if eligible > 0 {
		stats.SuccessRateEligible = float64(stats.Successful) / float64(eligible)
	}
	if n := classTotal[model.ClassClimb]; n > 0 {
		stats.SuccessRateClimb = float64(classSuccess[model.ClassClimb]) / float64(n)
	}
	if n := classTotal[model.ClassOperation]; n > 0 {
		stats.SuccessRateOperation = float64(classSuccess[model.ClassOperation]) / float64(n)
	}

	stats.StationLoads = model.Utilization(tasks, sched)
	stats.LoadStdDev, stats.LoadGap = model.LoadStats(stats.StationLoads)
	return stats
}

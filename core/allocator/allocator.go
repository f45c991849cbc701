// Package allocator produces the initial feasible schedule with one of
// three greedy placement heuristics.
package allocator

import (
	"sort"

	"github.com/satops/gsched/core/logger"
	"github.com/satops/gsched/core/model"
)

// Allocator runs the greedy pass over a task catalog. It is deterministic:
// a fixed catalog and configuration always yield the same schedule.
type Allocator struct {
	cfg   Config
	reg   *model.Registry
	sel   StationSelector
	log   logger.Logger
	loads *LoadTable
}

// New builds an allocator for the given station registry.
func New(cfg Config, reg *model.Registry, log logger.Logger) (*Allocator, error) {
	sel, err := NewSelector(cfg, reg)
	if err != nil {
		return nil, err
	}
	return &Allocator{cfg: cfg, reg: reg, sel: sel, log: log}, nil
}

// Allocate places every task it can and marks the rest rejected.
func (a *Allocator) Allocate(tasks []model.Task) *model.Schedule {
	sched := model.NewSchedule()
	a.loads = NewLoadTable(a.reg)

	for _, t := range a.order(tasks) {
		a.place(t, sched)
	}

	a.log.Infof("greedy pass done: method=%d assigned=%d rejected=%d",
		a.cfg.Method, sched.AssignedCount(), sched.RejectedCount())
	return sched
}

// Place attempts a single task against the current schedule using the
// configured policy and reports whether an assignment was made.
func (a *Allocator) Place(t model.Task, sched *model.Schedule) bool {
	if a.loads == nil {
		a.loads = NewLoadTable(a.reg)
	}
	min := a.cfg.MinWindow()
	for _, w := range a.sel.Order(t, sched, a.loads) {
		sp, ok := t.Allocation(w, min)
		if !ok {
			continue
		}
		if !sched.Fits(w.StationID, sp, a.reg.Capacity(w.StationID)) {
			continue
		}
		sched.Assign(model.Assignment{
			TaskID:    t.ID,
			StationID: w.StationID,
			Start:     sp.Start,
			End:       sp.End,
		})
		a.loads.Note(w.StationID, sp.Duration())
		return true
	}
	return false
}

func (a *Allocator) place(t model.Task, sched *model.Schedule) {
	if !t.Eligible(a.cfg.MinWindow()) {
		sched.Reject(t.ID, model.ReasonShortWindow)
		return
	}
	if !a.Place(t, sched) {
		a.log.Debugf("task %s rejected: no station has capacity", t.ID)
		sched.Reject(t.ID, model.ReasonNoCapacity)
	}
}

// order fixes the scan order of the catalog. Method 1 works through tasks
// longest window first; the other methods keep catalog order.
func (a *Allocator) order(tasks []model.Task) []model.Task {
	out := append([]model.Task(nil), tasks...)
	if a.cfg.Method != MethodLongestWindow {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		di := out[i].LongestWindow().Duration()
		dj := out[j].LongestWindow().Duration()
		if di != dj {
			return di > dj
		}
		si := out[i].LongestWindow().Start
		sj := out[j].LongestWindow().Start
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Package optimizer implements the local search stage: it revisits rejected
// tasks and tries to place them directly or through a capacity-freeing swap.
package optimizer

import (
	"context"
	"sort"
	"time"

	"github.com/satops/gsched/core/interval"
	"github.com/satops/gsched/core/logger"
	"github.com/satops/gsched/core/model"
)

// Optimizer improves a feasible schedule without ever breaking it: every
// move is checked against the affected station's capacity before it is
// kept, and a failed swap is rolled back completely.
type Optimizer struct {
	cfg       Config
	reg       *model.Registry
	minWindow time.Duration
	log       logger.Logger
}

// New builds an optimizer for the given registry and minimum contact time.
func New(cfg Config, reg *model.Registry, minWindow time.Duration, log logger.Logger) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{cfg: cfg, reg: reg, minWindow: minWindow, log: log}, nil
}

// Optimize mutates sched in place, promoting rejected tasks where capacity
// allows. It returns the number of promotions and whether the context
// deadline cut the search short. The successful count never decreases.
func (o *Optimizer) Optimize(ctx context.Context, tasks []model.Task, sched *model.Schedule) (int, bool) {
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	promoted := 0
	for iter := 0; iter < o.cfg.MaxIterations; iter++ {
		moved := false
		for _, id := range sched.RejectedIDs() {
			select {
			case <-ctx.Done():
				o.log.Warnf("optimizer truncated after %d promotions", promoted)
				return promoted, true
			default:
			}
			if reason, _ := sched.RejectReason(id); reason == model.ReasonShortWindow {
				continue
			}
			t, ok := byID[id]
			if !ok {
				continue
			}
			if o.place(t, sched) || o.swap(t, sched, byID) {
				promoted++
				moved = true
			}
		}
		if !moved {
			break
		}
	}
	if promoted > 0 {
		o.log.Infof("local search promoted %d rejected tasks", promoted)
	}
	return promoted, false
}

// place assigns t into existing free capacity on any candidate station.
func (o *Optimizer) place(t model.Task, sched *model.Schedule) bool {
	for _, w := range t.Windows {
		sp, ok := t.Allocation(w, o.minWindow)
		if !ok {
			continue
		}
		if !sched.Fits(w.StationID, sp, o.reg.Capacity(w.StationID)) {
			continue
		}
		sched.Assign(model.Assignment{TaskID: t.ID, StationID: w.StationID, Start: sp.Start, End: sp.End})
		return true
	}
	return false
}

// swap evicts one overlapping assignment to make room for t, then re-places
// the evicted task elsewhere. The move is kept only when both tasks end up
// assigned, so a swap always nets one extra placement.
func (o *Optimizer) swap(t model.Task, sched *model.Schedule, byID map[string]model.Task) bool {
	for _, w := range t.Windows {
		sp, ok := t.Allocation(w, o.minWindow)
		if !ok {
			continue
		}
		for _, victim := range o.victims(w.StationID, sp, sched, byID) {
			victimTask, ok := byID[victim.TaskID]
			if !ok {
				continue
			}
			sched.Unassign(victim.TaskID)
			if !sched.Fits(w.StationID, sp, o.reg.Capacity(w.StationID)) {
				sched.Assign(victim)
				continue
			}
			sched.Assign(model.Assignment{TaskID: t.ID, StationID: w.StationID, Start: sp.Start, End: sp.End})
			if o.placeElsewhere(victimTask, victim, sched) {
				o.log.Debugf("swap: %s displaced %s on %s", t.ID, victim.TaskID, w.StationID)
				return true
			}
			sched.Reject(t.ID, model.ReasonNoCapacity)
			sched.Assign(victim)
		}
	}
	return false
}

// placeElsewhere re-assigns an evicted task, skipping the slot it was just
// evicted from.
func (o *Optimizer) placeElsewhere(t model.Task, old model.Assignment, sched *model.Schedule) bool {
	for _, w := range t.Windows {
		sp, ok := t.Allocation(w, o.minWindow)
		if !ok {
			continue
		}
		if w.StationID == old.StationID && sp == old.Span() {
			continue
		}
		if !sched.Fits(w.StationID, sp, o.reg.Capacity(w.StationID)) {
			continue
		}
		sched.Assign(model.Assignment{TaskID: t.ID, StationID: w.StationID, Start: sp.Start, End: sp.End})
		return true
	}
	return false
}

// victims lists the assignments on a station that overlap the wanted span,
// lowest eviction priority first.
func (o *Optimizer) victims(stationID string, sp interval.Span, sched *model.Schedule, byID map[string]model.Task) []model.Assignment {
	var out []model.Assignment
	for _, a := range sched.StationAssignments(stationID) {
		if a.Span().Overlaps(sp) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if o.cfg.EvictionPolicy == EvictByClass {
			ci := byID[out[i].TaskID].Class
			cj := byID[out[j].TaskID].Class
			if ci != cj {
				return ci == model.ClassClimb
			}
		}
		di, dj := out[i].Duration(), out[j].Duration()
		if di != dj {
			return di < dj
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

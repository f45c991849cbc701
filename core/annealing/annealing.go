// Package annealing implements the stochastic refinement stage: a two-phase
// simulated annealing search over relocation and swap moves.
package annealing

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/satops/gsched/core/logger"
	"github.com/satops/gsched/core/model"
)

// Refiner runs simulated annealing over a schedule. All randomness flows
// from a single seeded source, so a fixed seed replays the exact sequence
// of proposals and acceptances.
type Refiner struct {
	cfg Config
	reg *model.Registry
	min time.Duration
	rng *rand.Rand
	log logger.Logger

	vis map[string]time.Duration
}

// New builds a refiner. A zero seed picks one from the clock; pin the seed
// in configuration for reproducible runs.
func New(cfg Config, reg *model.Registry, minWindow time.Duration, log logger.Logger) (*Refiner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Refiner{
		cfg: cfg,
		reg: reg,
		min: minWindow,
		rng: rand.New(rand.NewSource(seed)),
		log: log,
	}, nil
}

// Refine searches for a lower-energy schedule and returns the best one
// found. The input schedule is never mutated. The boolean reports whether
// the run-level context cut the search short; the refiner's own time budget
// elapsing is a normal stop.
func (r *Refiner) Refine(ctx context.Context, tasks []model.Task, sched *model.Schedule) (*model.Schedule, bool) {
	r.vis = model.VisibilityTime(tasks)
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	start := time.Now()
	budget := r.cfg.TimeBudget()
	current := sched.Clone()
	best := sched.Clone()
	truncated := false

	elapsedShare := 0.0
	for i, phase := range []PhaseConfig{r.cfg.Phase1, r.cfg.Phase2} {
		elapsedShare += phase.TimeShare
		deadline := start.Add(time.Duration(elapsedShare * float64(budget)))
		var cut bool
		current, best, cut = r.runPhase(ctx, phase, deadline, tasks, byID, current, best)
		truncated = truncated || cut
		if cut {
			r.log.Warnf("annealing phase %d cut short by run budget", i+1)
			break
		}
		// The next phase restarts from the best schedule so far.
		current = best.Clone()
	}
	r.log.Infof("annealing done: successful=%d elapsed=%s", best.SuccessCount(r.min), time.Since(start))
	return best, truncated
}

func (r *Refiner) runPhase(ctx context.Context, p PhaseConfig, deadline time.Time, tasks []model.Task,
	byID map[string]model.Task, current, best *model.Schedule) (*model.Schedule, *model.Schedule, bool) {

	temp := p.InitialTemp
	curEnergy := r.energy(p, tasks, current)
	bestEnergy := r.energy(p, tasks, best)
	stale := 0

	for temp > r.cfg.MinTemp {
		if time.Now().After(deadline) {
			break
		}
		improved := false
		for i := 0; i < p.Proposals; i++ {
			if i%64 == 0 {
				select {
				case <-ctx.Done():
					return current, best, true
				default:
				}
				if time.Now().After(deadline) {
					break
				}
			}
			cand, ok := r.neighbor(current, byID)
			if !ok {
				continue
			}
			e := r.energy(p, tasks, cand)
			delta := e - curEnergy
			if delta < 0 || r.rng.Float64() < math.Exp(-delta/temp) {
				current, curEnergy = cand, e
				if e < bestEnergy {
					best, bestEnergy = cand.Clone(), e
					improved = true
				}
			}
		}
		if improved {
			stale = 0
		} else {
			stale++
			if stale >= r.cfg.StaleLevels {
				break
			}
		}
		temp *= p.Cooling
	}
	return current, best, false
}

// energy scores a schedule: lower is better. The success term is negated so
// more successful placements pull the energy down while imbalance pushes it
// up.
func (r *Refiner) energy(p PhaseConfig, tasks []model.Task, sched *model.Schedule) float64 {
	std, gap := model.LoadStats(r.utilization(sched))
	rate := 0.0
	if len(tasks) > 0 {
		rate = float64(sched.SuccessCount(r.min)) / float64(len(tasks))
	}
	return -p.SuccessWeight*rate + p.StdWeight*std + p.GapWeight*gap
}

func (r *Refiner) utilization(sched *model.Schedule) map[string]float64 {
	occ := sched.OccupiedTime()
	out := make(map[string]float64, len(r.vis))
	for id, total := range r.vis {
		if total <= 0 {
			continue
		}
		out[id] = float64(occ[id]) / float64(total)
	}
	return out
}

// neighbor proposes one move: mostly targeted migration off the hottest
// stations, sometimes a random relocation, occasionally a swap.
func (r *Refiner) neighbor(sched *model.Schedule, byID map[string]model.Task) (*model.Schedule, bool) {
	switch x := r.rng.Float64(); {
	case x < 0.5:
		return r.targetedMigration(sched, byID)
	case x < 0.8:
		return r.randomMigration(sched, byID)
	default:
		return r.swapTasks(sched, byID)
	}
}

// targetedMigration moves a task from one of the most loaded stations onto
// one of the least loaded ones.
func (r *Refiner) targetedMigration(sched *model.Schedule, byID map[string]model.Task) (*model.Schedule, bool) {
	loads := r.utilization(sched)
	ids := sortedByLoad(loads)
	if len(ids) < 2 {
		return nil, false
	}
	low := ids[:minInt(5, len(ids))]
	high := ids[len(ids)-minInt(3, len(ids)):]
	lowSet := make(map[string]bool, len(low))
	for _, id := range low {
		lowSet[id] = true
	}

	for attempt := 0; attempt < 50; attempt++ {
		src := high[r.rng.Intn(len(high))]
		asn := sched.StationAssignments(src)
		if len(asn) == 0 {
			continue
		}
		a := asn[r.rng.Intn(len(asn))]
		t, ok := byID[a.TaskID]
		if !ok {
			continue
		}
		var cands []model.ContactWindow
		for _, w := range t.Windows {
			if lowSet[w.StationID] && w.StationID != src {
				cands = append(cands, w)
			}
		}
		sort.SliceStable(cands, func(i, j int) bool {
			li, lj := loads[cands[i].StationID], loads[cands[j].StationID]
			if li != lj {
				return li < lj
			}
			return cands[i].StationID < cands[j].StationID
		})
		for _, w := range cands[:minInt(3, len(cands))] {
			if clone, ok := r.move(sched, t, w); ok {
				return clone, true
			}
		}
	}
	return nil, false
}

// randomMigration moves a task from an above-median station to a random
// below-median one.
func (r *Refiner) randomMigration(sched *model.Schedule, byID map[string]model.Task) (*model.Schedule, bool) {
	loads := r.utilization(sched)
	ids := sortedByLoad(loads)
	if len(ids) < 2 {
		return nil, false
	}
	med := median(loads)
	var high, low []string
	lowSet := make(map[string]bool)
	for _, id := range ids {
		switch {
		case loads[id] > med:
			high = append(high, id)
		case loads[id] < med:
			low = append(low, id)
			lowSet[id] = true
		}
	}
	if len(high) == 0 || len(low) == 0 {
		return nil, false
	}

	for attempt := 0; attempt < 50; attempt++ {
		src := high[r.rng.Intn(len(high))]
		asn := sched.StationAssignments(src)
		if len(asn) == 0 {
			continue
		}
		a := asn[r.rng.Intn(len(asn))]
		t, ok := byID[a.TaskID]
		if !ok {
			continue
		}
		var cands []model.ContactWindow
		for _, w := range t.Windows {
			if lowSet[w.StationID] {
				cands = append(cands, w)
			}
		}
		if len(cands) == 0 {
			continue
		}
		if clone, ok := r.move(sched, t, cands[r.rng.Intn(len(cands))]); ok {
			return clone, true
		}
	}
	return nil, false
}

// swapTasks exchanges the stations of two assigned tasks when each has a
// feasible window on the other's station.
func (r *Refiner) swapTasks(sched *model.Schedule, byID map[string]model.Task) (*model.Schedule, bool) {
	asn := sched.Assignments()
	if len(asn) < 2 {
		return nil, false
	}
	for attempt := 0; attempt < 50; attempt++ {
		i := r.rng.Intn(len(asn))
		j := r.rng.Intn(len(asn))
		if i == j {
			continue
		}
		a1, a2 := asn[i], asn[j]
		if a1.StationID == a2.StationID {
			continue
		}
		t1, ok1 := byID[a1.TaskID]
		t2, ok2 := byID[a2.TaskID]
		if !ok1 || !ok2 {
			continue
		}
		w1, ok1 := t1.Window(a2.StationID)
		w2, ok2 := t2.Window(a1.StationID)
		if !ok1 || !ok2 {
			continue
		}
		sp1, ok1 := t1.Allocation(w1, r.min)
		sp2, ok2 := t2.Allocation(w2, r.min)
		if !ok1 || !ok2 {
			continue
		}
		clone := sched.Clone()
		clone.Unassign(t1.ID)
		clone.Unassign(t2.ID)
		if !clone.Fits(a2.StationID, sp1, r.reg.Capacity(a2.StationID)) {
			continue
		}
		clone.Assign(model.Assignment{TaskID: t1.ID, StationID: a2.StationID, Start: sp1.Start, End: sp1.End})
		if !clone.Fits(a1.StationID, sp2, r.reg.Capacity(a1.StationID)) {
			continue
		}
		clone.Assign(model.Assignment{TaskID: t2.ID, StationID: a1.StationID, Start: sp2.Start, End: sp2.End})
		return clone, true
	}
	return nil, false
}

// move relocates one task onto the given window, keeping the schedule
// feasible. The capacity check covers only the destination station.
func (r *Refiner) move(sched *model.Schedule, t model.Task, w model.ContactWindow) (*model.Schedule, bool) {
	sp, ok := t.Allocation(w, r.min)
	if !ok {
		return nil, false
	}
	clone := sched.Clone()
	clone.Unassign(t.ID)
	if !clone.Fits(w.StationID, sp, r.reg.Capacity(w.StationID)) {
		return nil, false
	}
	clone.Assign(model.Assignment{TaskID: t.ID, StationID: w.StationID, Start: sp.Start, End: sp.End})
	return clone, true
}

func sortedByLoad(loads map[string]float64) []string {
	ids := make([]string, 0, len(loads))
	for id := range loads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if loads[ids[i]] != loads[ids[j]] {
			return loads[ids[i]] < loads[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func median(loads map[string]float64) float64 {
	vals := make([]float64, 0, len(loads))
	for _, v := range loads {
		vals = append(vals, v)
	}
	sort.Float64s(vals)
	n := len(vals)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

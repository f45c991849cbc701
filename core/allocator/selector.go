package allocator

import (
	"sort"

	"github.com/satops/gsched/core/interval"
	"github.com/satops/gsched/core/model"
)

// StationSelector orders a task's candidate windows by preference. The
// allocator tries them in the returned order and keeps the first feasible
// one, so the ordering is the whole of each method's policy.
type StationSelector interface {
	Order(t model.Task, sched *model.Schedule, loads *LoadTable) []model.ContactWindow
}

// NewSelector returns the selector for a configured method.
func NewSelector(cfg Config, reg *model.Registry) (StationSelector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Method {
	case MethodLongestWindow:
		return longestWindowSelector{}, nil
	case MethodAvailabilityRate:
		return availabilitySelector{reg: reg}, nil
	default:
		return loadBalanceSelector{cfg: cfg}, nil
	}
}

// longestWindowSelector prefers the candidate window with the most contact
// time, falling back to the earliest start.
type longestWindowSelector struct{}

func (longestWindowSelector) Order(t model.Task, _ *model.Schedule, _ *LoadTable) []model.ContactWindow {
	wins := append([]model.ContactWindow(nil), t.Windows...)
	sort.SliceStable(wins, func(i, j int) bool {
		di, dj := wins[i].Duration(), wins[j].Duration()
		if di != dj {
			return di > dj
		}
		if !wins[i].Start.Equal(wins[j].Start) {
			return wins[i].Start.Before(wins[j].Start)
		}
		return wins[i].StationID < wins[j].StationID
	})
	return wins
}

// availabilitySelector ranks candidate stations by the share of antennas
// still free over the task's window.
type availabilitySelector struct {
	reg *model.Registry
}

func (s availabilitySelector) Order(t model.Task, sched *model.Schedule, _ *LoadTable) []model.ContactWindow {
	wins := append([]model.ContactWindow(nil), t.Windows...)
	rates := make(map[string]float64, len(wins))
	for _, w := range wins {
		rates[w.StationID] = s.rate(w, sched)
	}
	sort.SliceStable(wins, func(i, j int) bool {
		ri, rj := rates[wins[i].StationID], rates[wins[j].StationID]
		if ri != rj {
			return ri > rj
		}
		if !wins[i].Start.Equal(wins[j].Start) {
			return wins[i].Start.Before(wins[j].Start)
		}
		return wins[i].StationID < wins[j].StationID
	})
	return wins
}

func (s availabilitySelector) rate(w model.ContactWindow, sched *model.Schedule) float64 {
	capacity := s.reg.Capacity(w.StationID)
	if capacity <= 0 {
		return 0
	}
	var busy []interval.Span
	for _, sp := range sched.StationSpans(w.StationID) {
		if sp.Overlaps(w.Span()) {
			busy = append(busy, sp)
		}
	}
	used := interval.MaxConcurrency(busy)
	return float64(capacity-used) / float64(capacity)
}

// loadBalanceSelector prefers the station with the lowest combined load
// score, spreading work as the pass streams through the catalog.
type loadBalanceSelector struct {
	cfg Config
}

func (s loadBalanceSelector) Order(t model.Task, _ *model.Schedule, loads *LoadTable) []model.ContactWindow {
	wins := append([]model.ContactWindow(nil), t.Windows...)
	scores := make(map[string]float64, len(wins))
	for _, w := range wins {
		scores[w.StationID] = loads.Score(w.StationID, s.cfg.TaskWeight, s.cfg.TimeWeight)
	}
	sort.SliceStable(wins, func(i, j int) bool {
		si, sj := scores[wins[i].StationID], scores[wins[j].StationID]
		if si != sj {
			return si < sj
		}
		if !wins[i].Start.Equal(wins[j].Start) {
			return wins[i].Start.Before(wins[j].Start)
		}
		return wins[i].StationID < wins[j].StationID
	})
	return wins
}

package allocator

import (
	"time"

	"github.com/satops/gsched/core/model"
)

type stationLoad struct {
	count    int
	occupied time.Duration
}

// LoadTable tracks per-station load while the greedy pass streams through
// the catalog. It is the allocator's incremental bookkeeping, separate from
// the schedule itself so selectors can score stations cheaply.
type LoadTable struct {
	loads map[string]stationLoad
}

// NewLoadTable seeds a zeroed load entry for every registered station.
func NewLoadTable(reg *model.Registry) *LoadTable {
	loads := make(map[string]stationLoad, reg.Len())
	for _, id := range reg.IDs() {
		loads[id] = stationLoad{}
	}
	return &LoadTable{loads: loads}
}

// Note records an assignment of the given duration on a station.
func (t *LoadTable) Note(stationID string, d time.Duration) {
	l := t.loads[stationID]
	l.count++
	l.occupied += d
	t.loads[stationID] = l
}

// Count returns the number of assignments noted on a station.
func (t *LoadTable) Count(stationID string) int {
	return t.loads[stationID].count
}

// Occupied returns the cumulative assigned time on a station.
func (t *LoadTable) Occupied(stationID string) time.Duration {
	return t.loads[stationID].occupied
}

// Score combines normalized task count and normalized occupied time into a
// single load figure. Normalization is against the current maximum across
// all stations so the two terms stay comparable as the pass progresses.
func (t *LoadTable) Score(stationID string, taskWeight, timeWeight float64) float64 {
	var maxCount int
	var maxOccupied time.Duration
	for _, l := range t.loads {
		if l.count > maxCount {
			maxCount = l.count
		}
		if l.occupied > maxOccupied {
			maxOccupied = l.occupied
		}
	}
	l := t.loads[stationID]
	var score float64
	if maxCount > 0 {
		score += taskWeight * float64(l.count) / float64(maxCount)
	}
	if maxOccupied > 0 {
		score += timeWeight * float64(l.occupied) / float64(maxOccupied)
	}
	return score
}

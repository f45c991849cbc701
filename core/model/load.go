package model

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// VisibilityTime sums every candidate window's duration per station. It is
// the denominator for station utilization: a station with more visibility
// can absorb more contact time before it counts as loaded.
func VisibilityTime(tasks []Task) map[string]time.Duration {
	out := make(map[string]time.Duration)
	for _, t := range tasks {
		for _, w := range t.Windows {
			out[w.StationID] += w.Duration()
		}
	}
	return out
}

// Utilization returns each station's occupied share of its visibility time.
// Stations without any visibility in the catalog are omitted.
func Utilization(tasks []Task, sched *Schedule) map[string]float64 {
	vis := VisibilityTime(tasks)
	occ := sched.OccupiedTime()
	out := make(map[string]float64, len(vis))
	for id, total := range vis {
		if total <= 0 {
			continue
		}
		out[id] = float64(occ[id]) / float64(total)
	}
	return out
}

// LoadStats returns the population standard deviation and the max-min gap
// of the given station loads. A single station yields zero for both.
func LoadStats(loads map[string]float64) (stddev, gap float64) {
	if len(loads) == 0 {
		return 0, 0
	}
	vals := make([]float64, 0, len(loads))
	min, max := 0.0, 0.0
	first := true
	for _, v := range loads {
		vals = append(vals, v)
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return stat.PopStdDev(vals, nil), max - min
}

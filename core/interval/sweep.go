package interval

import (
	"sort"
	"time"
)

// Span is a half-open time interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the span.
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Valid reports whether the span is well formed.
func (s Span) Valid() bool {
	return s.End.After(s.Start)
}

// Overlaps reports whether the two spans share at least one instant.
func (s Span) Overlaps(o Span) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return !o.Start.Before(s.Start) && !o.End.After(s.End)
}

type endpoint struct {
	at    time.Time
	delta int
}

// MaxConcurrency returns the highest number of spans covering any single
// instant. It sweeps the sorted interval endpoints; ends sort before starts
// at the same instant so that back-to-back spans do not count as concurrent.
func MaxConcurrency(spans []Span) int {
	if len(spans) == 0 {
		return 0
	}
	points := make([]endpoint, 0, len(spans)*2)
	for _, sp := range spans {
		points = append(points, endpoint{at: sp.Start, delta: 1})
		points = append(points, endpoint{at: sp.End, delta: -1})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].at.Equal(points[j].at) {
			return points[i].delta < points[j].delta
		}
		return points[i].at.Before(points[j].at)
	})
	var cur, max int
	for _, p := range points {
		cur += p.delta
		if cur > max {
			max = cur
		}
	}
	return max
}

// Fits reports whether adding cand to the existing spans keeps the peak
// concurrency within capacity. Only spans overlapping cand influence the
// result, so callers may pass a station's full assignment list.
func Fits(existing []Span, cand Span, capacity int) bool {
	if capacity <= 0 {
		return false
	}
	overlapping := make([]Span, 0, len(existing)+1)
	for _, sp := range existing {
		if sp.Overlaps(cand) {
			overlapping = append(overlapping, sp)
		}
	}
	overlapping = append(overlapping, cand)
	return MaxConcurrency(overlapping) <= capacity
}

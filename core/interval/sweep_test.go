package interval

import (
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func span(startSec, endSec int) Span {
	return Span{
		Start: base.Add(time.Duration(startSec) * time.Second),
		End:   base.Add(time.Duration(endSec) * time.Second),
	}
}

func TestSpanOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint", span(0, 10), span(20, 30), false},
		{"touching ends", span(0, 10), span(10, 20), false},
		{"partial", span(0, 10), span(5, 15), true},
		{"contained", span(0, 100), span(20, 30), true},
		{"identical", span(0, 10), span(0, 10), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSpanContains(t *testing.T) {
	outer := span(0, 100)
	if !outer.Contains(span(0, 100)) {
		t.Error("a span must contain itself")
	}
	if !outer.Contains(span(10, 90)) {
		t.Error("inner span should be contained")
	}
	if outer.Contains(span(10, 110)) {
		t.Error("span escaping the end should not be contained")
	}
}

func TestMaxConcurrency(t *testing.T) {
	cases := []struct {
		name  string
		spans []Span
		want  int
	}{
		{"empty", nil, 0},
		{"single", []Span{span(0, 10)}, 1},
		{"disjoint", []Span{span(0, 10), span(20, 30)}, 1},
		{"two overlap", []Span{span(0, 10), span(5, 15), span(20, 30)}, 2},
		{"back to back", []Span{span(0, 10), span(10, 20)}, 1},
		{"triple stack", []Span{span(0, 30), span(5, 25), span(10, 20)}, 3},
		{"shared endpoint mix", []Span{span(0, 10), span(10, 20), span(5, 15)}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaxConcurrency(tc.spans); got != tc.want {
				t.Errorf("MaxConcurrency = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFits(t *testing.T) {
	existing := []Span{span(0, 10), span(5, 15)}

	if Fits(existing, span(7, 12), 2) {
		t.Error("third concurrent span must not fit capacity 2")
	}
	if !Fits(existing, span(7, 12), 3) {
		t.Error("third concurrent span should fit capacity 3")
	}
	if !Fits(existing, span(15, 25), 2) {
		t.Error("disjoint span should fit")
	}
	if !Fits(existing, span(10, 20), 2) {
		t.Error("span starting at an existing end should fit")
	}
	if Fits(nil, span(0, 10), 0) {
		t.Error("nothing fits zero capacity")
	}
}

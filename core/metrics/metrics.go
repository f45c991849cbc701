package metrics

import "time"

// RunResult is the per-run record handed to metrics sinks once a schedule
// is terminal.
type RunResult struct {
	RunID               string
	Method              int
	TotalTasks          int
	Assigned            int
	Rejected            int
	Successful          int
	SuccessRateAll      float64
	SuccessRateEligible float64
	LoadStdDev          float64
	LoadGap             float64
	Truncated           bool
	Elapsed             time.Duration
	CompletedAt         time.Time
}

// MetricsSink records scheduling run results for observability purposes.
type MetricsSink interface {
	RecordRunResult(results []RunResult) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordRunResult implements MetricsSink.
func (NopSink) RecordRunResult([]RunResult) error { return nil }

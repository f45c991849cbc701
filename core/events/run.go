package events

import "time"

// RunStartedEvent is published when a scheduling run begins.
type RunStartedEvent struct {
	RunID    string
	Tasks    int
	Stations int
	Method   int
}

// RunCompletedEvent is published once the run holds its terminal schedule.
type RunCompletedEvent struct {
	RunID      string
	Successful int
	Rejected   int
	Truncated  bool
	Elapsed    time.Duration
	Err        error
}

package events

import "time"

// Stage identifies one step of the scheduling pipeline.
type Stage string

const (
	StageAllocate Stage = "allocate"
	StageOptimize Stage = "optimize"
	StageAnneal   Stage = "anneal"
	StageBalance  Stage = "balance"
	StageValidate Stage = "validate"
)

// StageEvent is emitted when a pipeline stage finishes. Successful carries
// the successful-assignment count after the stage, letting observers follow
// the improvement trajectory.
type StageEvent struct {
	RunID      string
	Stage      Stage
	Successful int
	Truncated  bool
	Elapsed    time.Duration
}

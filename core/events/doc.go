// Package events defines the scheduling lifecycle events emitted on the
// event bus.
//
// Available event types:
//   - RunStartedEvent: a scheduling run began
//   - StageEvent: one pipeline stage finished
//   - RunCompletedEvent: the run produced its terminal schedule
package events

// Package engine sequences the scheduling pipeline for one run: greedy
// allocation, local search, optional annealing, rebalancing, validation.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/satops/gsched/core/allocator"
	"github.com/satops/gsched/core/annealing"
	"github.com/satops/gsched/core/balancer"
	"github.com/satops/gsched/core/events"
	"github.com/satops/gsched/core/logger"
	"github.com/satops/gsched/core/metrics"
	"github.com/satops/gsched/core/model"
	"github.com/satops/gsched/core/optimizer"
	"github.com/satops/gsched/core/validator"
	"github.com/satops/gsched/internal/eventbus"
)

// Engine orchestrates scheduling runs. It is safe for concurrent use: each
// run builds its stages fresh and owns its schedule exclusively.
type Engine struct {
	cfg  Config
	log  logger.Logger
	bus  eventbus.EventBus
	sink metrics.MetricsSink
}

// Option customizes an Engine.
type Option func(*Engine)

// WithEventBus publishes run and stage lifecycle events on the bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithMetricsSink records terminal run results on the sink.
func WithMetricsSink(sink metrics.MetricsSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// New builds an engine. The configuration is validated eagerly so a broken
// pipeline never reaches a run.
func New(cfg Config, log logger.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	e := &Engine{cfg: cfg, log: log, sink: metrics.NopSink{}}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result is the terminal outcome of one run.
type Result struct {
	RunID     string           `json:"run_id"`
	Method    int              `json:"method"`
	Schedule  *model.Schedule  `json:"-"`
	Stats     model.Statistics `json:"stats"`
	Truncated bool             `json:"truncated"`
	Elapsed   time.Duration    `json:"elapsed"`
}

// Run schedules one batch of tasks against the given stations. Allocation
// shortfalls are part of the result; only invalid input and invariant
// breaches surface as errors. A budget-truncated run still returns a fully
// validated schedule.
func (e *Engine) Run(ctx context.Context, tasks []model.Task, stations []model.Station) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()

	reg, err := e.checkInput(tasks, stations)
	if err != nil {
		return nil, err
	}

	e.publish(events.RunStartedEvent{
		RunID: runID, Tasks: len(tasks), Stations: reg.Len(), Method: e.cfg.Allocator.Method,
	})
	e.log.Infof("run %s: %d tasks over %d stations, method %d",
		runID, len(tasks), reg.Len(), e.cfg.Allocator.Method)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.TimeBudget())
	defer cancel()

	sched, truncated, err := e.pipeline(ctx, runID, reg, tasks)
	if err != nil {
		return nil, err
	}

	stats, err := e.validate(runID, reg, tasks, sched, truncated)
	stats.Truncated = truncated
	elapsed := time.Since(start)
	e.publish(events.RunCompletedEvent{
		RunID: runID, Successful: stats.Successful, Rejected: stats.Rejected,
		Truncated: truncated, Elapsed: elapsed, Err: err,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID: runID, Method: e.cfg.Allocator.Method,
		Schedule: sched, Stats: stats, Truncated: truncated, Elapsed: elapsed,
	}
	e.record(res)
	e.log.Infof("run %s done: successful=%d/%d stddev=%.4f truncated=%v elapsed=%s",
		runID, stats.Successful, stats.TotalTasks, stats.LoadStdDev, truncated, elapsed)
	return res, nil
}

// checkInput validates tasks and stations eagerly. Any defect fails the
// whole run before allocation starts.
func (e *Engine) checkInput(tasks []model.Task, stations []model.Station) (*model.Registry, error) {
	reg, err := model.NewRegistry(stations, e.cfg.MaxAntennasCeiling)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
		for _, w := range t.Windows {
			if _, ok := reg.Get(w.StationID); !ok {
				return nil, configErrorf("task %s references unknown station %s", t.ID, w.StationID)
			}
		}
	}
	return reg, nil
}

func (e *Engine) pipeline(ctx context.Context, runID string, reg *model.Registry, tasks []model.Task) (*model.Schedule, bool, error) {
	min := e.cfg.Allocator.MinWindow()

	alloc, err := allocator.New(e.cfg.Allocator, reg, e.log)
	if err != nil {
		return nil, false, &ConfigError{Err: err}
	}
	stageStart := time.Now()
	sched := alloc.Allocate(tasks)
	e.stage(runID, events.StageAllocate, sched, min, false, stageStart)

	truncated := false
	if e.cfg.Optimizer.Enabled {
		opt, err := optimizer.New(e.cfg.Optimizer, reg, min, e.log)
		if err != nil {
			return nil, false, &ConfigError{Err: err}
		}
		stageStart = time.Now()
		_, cut := opt.Optimize(ctx, tasks, sched)
		truncated = truncated || cut
		e.stage(runID, events.StageOptimize, sched, min, truncated, stageStart)
	}

	if e.cfg.Annealing.Enabled {
		ref, err := annealing.New(e.cfg.Annealing, reg, min, e.log)
		if err != nil {
			return nil, false, &ConfigError{Err: err}
		}
		stageStart = time.Now()
		var cut bool
		sched, cut = ref.Refine(ctx, tasks, sched)
		truncated = truncated || cut
		e.stage(runID, events.StageAnneal, sched, min, truncated, stageStart)
	}

	if e.cfg.Balancer.Enabled {
		bal, err := balancer.New(e.cfg.Balancer, reg, min, e.log)
		if err != nil {
			return nil, false, &ConfigError{Err: err}
		}
		stageStart = time.Now()
		bal.Balance(tasks, sched)
		e.stage(runID, events.StageBalance, sched, min, truncated, stageStart)
	}

	return sched, truncated, nil
}

func (e *Engine) validate(runID string, reg *model.Registry, tasks []model.Task, sched *model.Schedule, truncated bool) (model.Statistics, error) {
	stageStart := time.Now()
	stats, err := validator.New(reg, e.cfg.Allocator.MinWindow(), e.log).Validate(tasks, sched)
	e.stage(runID, events.StageValidate, sched, e.cfg.Allocator.MinWindow(), truncated, stageStart)
	return stats, err
}

func (e *Engine) stage(runID string, st events.Stage, sched *model.Schedule, min time.Duration, truncated bool, start time.Time) {
	successful := sched.SuccessCount(min)
	elapsed := time.Since(start)
	e.log.Debugw("stage complete", map[string]any{
		"run_id":     runID,
		"stage":      string(st),
		"successful": successful,
		"truncated":  truncated,
		"elapsed":    elapsed.String(),
	})
	e.publish(events.StageEvent{
		RunID: runID, Stage: st,
		Successful: successful, Truncated: truncated,
		Elapsed: elapsed,
	})
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func (e *Engine) record(res *Result) {
	rr := metrics.RunResult{
		RunID:               res.RunID,
		Method:              res.Method,
		TotalTasks:          res.Stats.TotalTasks,
		Assigned:            res.Stats.Assigned,
		Rejected:            res.Stats.Rejected,
		Successful:          res.Stats.Successful,
		SuccessRateAll:      res.Stats.SuccessRateAll,
		SuccessRateEligible: res.Stats.SuccessRateEligible,
		LoadStdDev:          res.Stats.LoadStdDev,
		LoadGap:             res.Stats.LoadGap,
		Truncated:           res.Truncated,
		Elapsed:             res.Elapsed,
		CompletedAt:         time.Now(),
	}
	if err := e.sink.RecordRunResult([]metrics.RunResult{rr}); err != nil {
		e.log.Warnf("metrics sink: %v", err)
	}
}

package engine

import (
	"context"
	"sync"

	"github.com/satops/gsched/core/model"
)

// Batch is one independent scheduling job: its own catalog and stations.
// Batches share nothing, so a pool can run them in parallel without locks.
type Batch struct {
	Name     string
	Tasks    []model.Task
	Stations []model.Station
}

// BatchResult pairs a batch with its run outcome.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// RunBatches executes the batches on at most cfg.Workers goroutines and
// returns the outcomes in input order. Each batch gets the full per-run
// time budget.
func (e *Engine) RunBatches(ctx context.Context, batches []Batch) []BatchResult {
	out := make([]BatchResult, len(batches))
	sem := make(chan struct{}, e.cfg.Workers)
	var wg sync.WaitGroup

	for i, b := range batches {
		wg.Add(1)
		go func(i int, b Batch) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			res, err := e.Run(ctx, b.Tasks, b.Stations)
			out[i] = BatchResult{Name: b.Name, Result: res, Err: err}
		}(i, b)
	}
	wg.Wait()
	return out
}

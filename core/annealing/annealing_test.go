package annealing

import (
	"context"
	"testing"
	"time"

	"github.com/satops/gsched/core/interval"
	"github.com/satops/gsched/core/model"
	"github.com/satops/gsched/infra/logger"
)

var base = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func window(station string, startSec, endSec int) model.ContactWindow {
	return model.ContactWindow{
		StationID: station,
		Start:     base.Add(time.Duration(startSec) * time.Second),
		End:       base.Add(time.Duration(endSec) * time.Second),
	}
}

func opTask(id string, wins ...model.ContactWindow) model.Task {
	return model.Task{ID: id, SatelliteID: "sat-1", Band: "X", Class: model.ClassOperation, Windows: wins}
}

func registry(t *testing.T, caps map[string]int) *model.Registry {
	t.Helper()
	var stations []model.Station
	for id, c := range caps {
		stations = append(stations, model.Station{ID: id, MaxAntennas: c})
	}
	reg, err := model.NewRegistry(stations, model.DefaultAntennaCeiling)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func testConfig(seed int64) Config {
	cfg := Config{Seed: seed, TimeBudgetSeconds: 2, StaleLevels: 5}
	cfg.SetDefaults()
	// Small levels keep the test fast while still exercising both phases.
	cfg.Phase1.Proposals = 50
	cfg.Phase2.Proposals = 50
	cfg.Phase1.InitialTemp = 10
	cfg.Phase2.InitialTemp = 10
	cfg.Phase1.Cooling = 0.5
	cfg.Phase2.Cooling = 0.5
	return cfg
}

// skewedFixture piles every task onto gs-1 even though each could run on
// gs-2 as well, leaving an obviously unbalanced starting schedule.
func skewedFixture() ([]model.Task, *model.Schedule) {
	var tasks []model.Task
	sched := model.NewSchedule()
	for i := 0; i < 6; i++ {
		start := i * 500
		id := "t" + string(rune('1'+i))
		tasks = append(tasks, opTask(id,
			window("gs-1", start, start+400),
			window("gs-2", start, start+400),
		))
		sched.Assign(model.Assignment{
			TaskID: id, StationID: "gs-1",
			Start: base.Add(time.Duration(start) * time.Second),
			End:   base.Add(time.Duration(start+400) * time.Second),
		})
	}
	return tasks, sched
}

func TestRefineDeterministicForFixedSeed(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2, "gs-2": 2})

	run := func() []model.Assignment {
		r, err := New(testConfig(42), reg, 300*time.Second, logger.NopLogger{})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		tasks, sched := skewedFixture()
		out, _ := r.Refine(context.Background(), tasks, sched)
		return out.Assignments()
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("assignment counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("assignment %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRefineReducesImbalance(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2, "gs-2": 2})
	r, err := New(testConfig(7), reg, 300*time.Second, logger.NopLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tasks, sched := skewedFixture()
	beforeStd, _ := model.LoadStats(model.Utilization(tasks, sched))

	out, truncated := r.Refine(context.Background(), tasks, sched)
	if truncated {
		t.Fatal("unexpected truncation")
	}
	afterStd, _ := model.LoadStats(model.Utilization(tasks, out))

	if afterStd > beforeStd {
		t.Errorf("load stddev rose: before=%v after=%v", beforeStd, afterStd)
	}
}

func TestRefineKeepsCapacityInvariant(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2, "gs-2": 1})
	r, err := New(testConfig(99), reg, 300*time.Second, logger.NopLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tasks, sched := skewedFixture()
	out, _ := r.Refine(context.Background(), tasks, sched)

	for _, id := range reg.IDs() {
		if got := interval.MaxConcurrency(out.StationSpans(id)); got > reg.Capacity(id) {
			t.Errorf("station %s concurrency %d exceeds capacity %d", id, got, reg.Capacity(id))
		}
	}
}

func TestRefineDoesNotMutateInput(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2, "gs-2": 2})
	r, err := New(testConfig(5), reg, 300*time.Second, logger.NopLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tasks, sched := skewedFixture()
	before := sched.Assignments()
	r.Refine(context.Background(), tasks, sched)
	after := sched.Assignments()

	if len(before) != len(after) {
		t.Fatalf("input schedule mutated: %d vs %d assignments", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("input assignment %d changed: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestRefineHonorsCancellation(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2, "gs-2": 2})
	r, err := New(testConfig(3), reg, 300*time.Second, logger.NopLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tasks, sched := skewedFixture()
	out, truncated := r.Refine(ctx, tasks, sched)
	if !truncated {
		t.Fatal("expected truncation with canceled context")
	}
	if out == nil {
		t.Fatal("best-so-far schedule must still be returned")
	}
}

func TestConfigValidate(t *testing.T) {
	good := Config{}
	good.SetDefaults()
	if err := good.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	bad := good
	bad.Phase1.Cooling = 1.5
	if err := bad.Validate(); err == nil {
		t.Fatal("cooling factor above 1 should fail validation")
	}
}

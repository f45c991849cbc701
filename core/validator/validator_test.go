package validator

import (
	"errors"
	"testing"
	"time"

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

func assign(sched *model.Schedule, id, station string, startSec, endSec int) {
	sched.Assign(model.Assignment{
		TaskID: id, StationID: station,
		Start: base.Add(time.Duration(startSec) * time.Second),
		End:   base.Add(time.Duration(endSec) * time.Second),
	})
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

func TestValidateCleanSchedule(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2})
	v := New(reg, 5*time.Second, logger.NopLogger{})

	tasks := []model.Task{
		opTask("t1", window("gs-1", 0, 10)),
		opTask("t2", window("gs-1", 5, 15)),
		opTask("t3", window("gs-1", 20, 30)),
	}
	sched := model.NewSchedule()
	assign(sched, "t1", "gs-1", 0, 10)
	assign(sched, "t2", "gs-1", 5, 15)
	assign(sched, "t3", "gs-1", 20, 30)

	stats, err := v.Validate(tasks, sched)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if stats.SuccessRateAll != 1.0 {
		t.Errorf("success rate all = %v, want 1.0", stats.SuccessRateAll)
	}
	if len(stats.Violations) != 0 {
		t.Errorf("violations = %v, want none", stats.Violations)
	}
}

func TestValidateDetectsCapacityBreach(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 1})
	v := New(reg, 5*time.Second, logger.NopLogger{})

	tasks := []model.Task{
		opTask("t1", window("gs-1", 0, 100)),
		opTask("t2", window("gs-1", 0, 100)),
	}
	sched := model.NewSchedule()
	assign(sched, "t1", "gs-1", 0, 100)
	assign(sched, "t2", "gs-1", 0, 100)

	_, err := v.Validate(tasks, sched)
	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *InvariantError", err)
	}
	found := false
	for _, viol := range ie.Violations {
		if viol.Kind == model.ViolationCapacity && viol.StationID == "gs-1" {
			found = true
		}
	}
	if !found {
		t.Errorf("violations = %v, want a capacity breach on gs-1", ie.Violations)
	}
}

func TestValidateDetectsWindowEscape(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2})
	v := New(reg, 5*time.Second, logger.NopLogger{})

	tasks := []model.Task{opTask("t1", window("gs-1", 0, 100))}
	sched := model.NewSchedule()
	assign(sched, "t1", "gs-1", 50, 150)

	_, err := v.Validate(tasks, sched)
	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *InvariantError", err)
	}
	if ie.Violations[0].Kind != model.ViolationWindow {
		t.Errorf("kind = %v, want window violation", ie.Violations[0].Kind)
	}
}

func TestValidateDetectsShortAssignment(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2})
	v := New(reg, 300*time.Second, logger.NopLogger{})

	tasks := []model.Task{opTask("t1", window("gs-1", 0, 1000))}
	sched := model.NewSchedule()
	assign(sched, "t1", "gs-1", 0, 100)

	stats, err := v.Validate(tasks, sched)
	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *InvariantError", err)
	}
	if ie.Violations[0].Kind != model.ViolationMinDuration {
		t.Errorf("kind = %v, want min-duration violation", ie.Violations[0].Kind)
	}
	if stats.Successful != 0 {
		t.Errorf("successful = %d, short assignments must never count", stats.Successful)
	}
}

func TestValidateDetectsUnknownTask(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2})
	v := New(reg, 5*time.Second, logger.NopLogger{})

	sched := model.NewSchedule()
	assign(sched, "ghost", "gs-1", 0, 100)

	_, err := v.Validate(nil, sched)
	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *InvariantError", err)
	}
	if ie.Violations[0].Kind != model.ViolationUnknownTask {
		t.Errorf("kind = %v, want unknown-task violation", ie.Violations[0].Kind)
	}
}

func TestValidateIdempotent(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2, "gs-2": 1})
	v := New(reg, 5*time.Second, logger.NopLogger{})

	tasks := []model.Task{
		opTask("t1", window("gs-1", 0, 100)),
		opTask("t2", window("gs-1", 0, 100), window("gs-2", 0, 100)),
		opTask("t3", window("gs-2", 200, 250)),
	}
	sched := model.NewSchedule()
	assign(sched, "t1", "gs-1", 0, 100)
	assign(sched, "t2", "gs-2", 0, 100)
	sched.Reject("t3", model.ReasonNoCapacity)

	first, err1 := v.Validate(tasks, sched)
	second, err2 := v.Validate(tasks, sched)
	if err1 != nil || err2 != nil {
		t.Fatalf("Validate errors: %v, %v", err1, err2)
	}

	if first.Successful != second.Successful ||
		first.SuccessRateAll != second.SuccessRateAll ||
		first.SuccessRateEligible != second.SuccessRateEligible ||
		first.LoadStdDev != second.LoadStdDev ||
		first.LoadGap != second.LoadGap {
		t.Errorf("statistics differ across runs:\n%+v\n%+v", first, second)
	}
}

func TestStatisticsSingleStationZeroStdDev(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 1})
	v := New(reg, 50*time.Second, logger.NopLogger{})

	tasks := []model.Task{
		opTask("t1", window("gs-1", 0, 100)),
		opTask("t2", window("gs-1", 0, 100)),
	}
	sched := model.NewSchedule()
	assign(sched, "t1", "gs-1", 0, 100)
	sched.Reject("t2", model.ReasonNoCapacity)

	stats, err := v.Validate(tasks, sched)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if stats.Successful != 1 {
		t.Errorf("successful = %d, want 1", stats.Successful)
	}
	if stats.LoadStdDev != 0 {
		t.Errorf("load stddev = %v, want 0 for a single station", stats.LoadStdDev)
	}
}

func TestStatisticsClassRates(t *testing.T) {
	reg := registry(t, map[string]int{"gs-1": 2})
	v := New(reg, 10*time.Second, logger.NopLogger{})

	climb := model.Task{ID: "c1", SatelliteID: "sat-1", Band: "S", Class: model.ClassClimb,
		Windows: []model.ContactWindow{window("gs-1", 0, 100)}}
	tasks := []model.Task{
		climb,
		opTask("o1", window("gs-1", 0, 100)),
		opTask("o2", window("gs-1", 200, 300)),
	}
	sched := model.NewSchedule()
	assign(sched, "c1", "gs-1", 0, 10)
	assign(sched, "o1", "gs-1", 0, 100)
	sched.Reject("o2", model.ReasonNoCapacity)

	stats, err := v.Validate(tasks, sched)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if stats.SuccessRateClimb != 1.0 {
		t.Errorf("climb rate = %v, want 1.0", stats.SuccessRateClimb)
	}
	if stats.SuccessRateOperation != 0.5 {
		t.Errorf("operation rate = %v, want 0.5", stats.SuccessRateOperation)
	}
}

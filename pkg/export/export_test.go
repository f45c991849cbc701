package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/satops/gsched/core/engine"
	"github.com/satops/gsched/core/model"
)

func sampleResult() *engine.Result {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sched := model.NewSchedule()
	sched.Assign(model.Assignment{TaskID: "t1", StationID: "gs-1", Start: base, End: base.Add(400 * time.Second)})
	sched.Reject("t2", model.ReasonNoCapacity)
	return &engine.Result{
		RunID: "run-1", Method: 3, Schedule: sched,
		Stats:   model.Statistics{TotalTasks: 2, Assigned: 1, Rejected: 1, Successful: 1, SuccessRateAll: 0.5},
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewReport(sampleResult())); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var back Report
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.RunID != "run-1" || len(back.Assignments) != 1 || len(back.Rejected) != 1 {
		t.Errorf("report = %+v, want run-1 with 1 assignment and 1 rejection", back)
	}
	if back.Rejected[0].Reason != "no-capacity" {
		t.Errorf("reason = %s, want no-capacity", back.Rejected[0].Reason)
	}
}

func TestReadJSONRebuildsSchedule(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewReport(sampleResult())); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	rep, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	sched := rep.Schedule()
	if sched.AssignedCount() != 1 || sched.RejectedCount() != 1 {
		t.Fatalf("schedule = %d assigned / %d rejected, want 1/1",
			sched.AssignedCount(), sched.RejectedCount())
	}
	a, ok := sched.Assignment("t1")
	if !ok || a.StationID != "gs-1" || a.Duration() != 400*time.Second {
		t.Errorf("assignment = %+v, want t1 on gs-1 for 400s", a)
	}
	if reason, ok := sched.RejectReason("t2"); !ok || reason != model.ReasonNoCapacity {
		t.Errorf("reject reason = %v, want no-capacity", reason)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, NewReport(sampleResult())); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header plus one row", len(lines))
	}
	if !strings.HasPrefix(lines[1], "t1,gs-1,") || !strings.HasSuffix(lines[1], ",400") {
		t.Errorf("row = %q, want t1 on gs-1 for 400s", lines[1])
	}
}

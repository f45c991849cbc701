// Package export renders run results for downstream consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/satops/gsched/core/engine"
	"github.com/satops/gsched/core/model"
)

// Report is the serialized outcome of one run: assignments, rejections and
// statistics. Downstream merging and visualization tools consume it without
// re-deriving any scheduling logic.
type Report struct {
	RunID       string             `json:"run_id"`
	Method      int                `json:"method"`
	Assignments []model.Assignment `json:"assignments"`
	Rejected    []Rejection        `json:"rejected"`
	Stats       model.Statistics   `json:"stats"`
	Truncated   bool               `json:"truncated"`
	ElapsedMS   int64              `json:"elapsed_ms"`
}

// Rejection pairs a rejected task with its recorded reason.
type Rejection struct {
	TaskID string `json:"task_id"`
	Reason string `json:"reason"`
}

// NewReport flattens an engine result.
func NewReport(res *engine.Result) Report {
	rep := Report{
		RunID:       res.RunID,
		Method:      res.Method,
		Assignments: res.Schedule.Assignments(),
		Stats:       res.Stats,
		Truncated:   res.Truncated,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
	for _, id := range res.Schedule.RejectedIDs() {
		reason, _ := res.Schedule.RejectReason(id)
		rep.Rejected = append(rep.Rejected, Rejection{TaskID: id, Reason: string(reason)})
	}
	return rep
}

// WriteJSON writes the report to w in JSON format.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// ReadJSON parses a report previously written by WriteJSON.
func ReadJSON(r io.Reader) (Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return Report{}, err
	}
	return rep, nil
}

// Schedule rebuilds the schedule the report was taken from so it can be
// re-checked against its catalog.
func (r Report) Schedule() *model.Schedule {
	sched := model.NewSchedule()
	for _, a := range r.Assignments {
		sched.Assign(a)
	}
	for _, rej := range r.Rejected {
		sched.Reject(rej.TaskID, model.RejectReason(rej.Reason))
	}
	return sched
}

// WriteCSV writes the assignments to w in CSV format.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"task_id", "station_id", "start", "end", "duration_s"}); err != nil {
		return err
	}
	for _, a := range rep.Assignments {
		rec := []string{
			a.TaskID,
			a.StationID,
			a.Start.Format(time.RFC3339),
			a.End.Format(time.RFC3339),
			strconv.FormatInt(int64(a.Duration()/time.Second), 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

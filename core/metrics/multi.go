package metrics

import "errors"

// MultiSink fans a record out to several sinks and aggregates their errors.
type MultiSink struct {
	sinks []MetricsSink
}

func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordRunResult(results []RunResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordRunResult(results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

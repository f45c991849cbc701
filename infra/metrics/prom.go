package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/satops/gsched/core/metrics"
)

type promCollectors struct {
	runsTotal       *prometheus.CounterVec
	truncatedTotal  prometheus.Counter
	tasksAssigned   prometheus.Gauge
	tasksRejected   prometheus.Gauge
	tasksSuccessful prometheus.Gauge
	successRate     *prometheus.GaugeVec
	loadStdDev      prometheus.Gauge
	loadGap         prometheus.Gauge
	runDuration     prometheus.Histogram
}

func newPromCollectors() *promCollectors {
	return &promCollectors{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gsched_runs_total",
			Help: "Total scheduling runs, labelled by allocation method.",
		}, []string{"method"}),
		truncatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gsched_runs_truncated_total",
			Help: "Runs cut short by the wall clock budget.",
		}),
		tasksAssigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gsched_tasks_assigned",
			Help: "Tasks assigned in the latest run.",
		}),
		tasksRejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gsched_tasks_rejected",
			Help: "Tasks rejected in the latest run.",
		}),
		tasksSuccessful: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gsched_tasks_successful",
			Help: "Tasks meeting the minimum contact duration in the latest run.",
		}),
		successRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gsched_success_rate",
			Help: "Success rate of the latest run, labelled by scope.",
		}, []string{"scope"}),
		loadStdDev: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gsched_load_stddev_seconds",
			Help: "Standard deviation of occupied time across stations.",
		}),
		loadGap: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gsched_load_gap_seconds",
			Help: "Gap between the most and least occupied station.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gsched_run_duration_seconds",
			Help:    "Wall clock duration of scheduling runs.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

func (c *promCollectors) all() []prometheus.Collector {
	return []prometheus.Collector{
		c.runsTotal, c.truncatedTotal,
		c.tasksAssigned, c.tasksRejected, c.tasksSuccessful,
		c.successRate, c.loadStdDev, c.loadGap, c.runDuration,
	}
}

// PromSink exposes run results as Prometheus collectors.
type PromSink struct {
	col *promCollectors
}

// NewPromSink registers the collectors on the given registerer. Collectors
// already present are reused so repeated construction is safe.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	col := newPromCollectors()
	for i, c := range col.all() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				switch i {
				case 0:
					col.runsTotal = are.ExistingCollector.(*prometheus.CounterVec)
				case 1:
					col.truncatedTotal = are.ExistingCollector.(prometheus.Counter)
				case 2:
					col.tasksAssigned = are.ExistingCollector.(prometheus.Gauge)
				case 3:
					col.tasksRejected = are.ExistingCollector.(prometheus.Gauge)
				case 4:
					col.tasksSuccessful = are.ExistingCollector.(prometheus.Gauge)
				case 5:
					col.successRate = are.ExistingCollector.(*prometheus.GaugeVec)
				case 6:
					col.loadStdDev = are.ExistingCollector.(prometheus.Gauge)
				case 7:
					col.loadGap = are.ExistingCollector.(prometheus.Gauge)
				case 8:
					col.runDuration = are.ExistingCollector.(prometheus.Histogram)
				}
				continue
			}
			return nil, err
		}
	}
	return &PromSink{col: col}, nil
}

// RecordRunResult implements coremetrics.MetricsSink.
func (s *PromSink) RecordRunResult(results []coremetrics.RunResult) error {
	for _, r := range results {
		s.col.runsTotal.WithLabelValues(methodLabel(r.Method)).Inc()
		if r.Truncated {
			s.col.truncatedTotal.Inc()
		}
		s.col.tasksAssigned.Set(float64(r.Assigned))
		s.col.tasksRejected.Set(float64(r.Rejected))
		s.col.tasksSuccessful.Set(float64(r.Successful))
		s.col.successRate.WithLabelValues("all").Set(r.SuccessRateAll)
		s.col.successRate.WithLabelValues("eligible").Set(r.SuccessRateEligible)
		s.col.loadStdDev.Set(r.LoadStdDev)
		s.col.loadGap.Set(r.LoadGap)
		s.col.runDuration.Observe(r.Elapsed.Seconds())
	}
	return nil
}

func methodLabel(m int) string {
	switch m {
	case 1:
		return "longest-window"
	case 2:
		return "availability-rate"
	case 3:
		return "load-balance"
	default:
		return "unknown"
	}
}

func init() {
	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink(nil)
	})
}

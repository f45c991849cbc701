package metrics

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/satops/gsched/core/logger"
	coremetrics "github.com/satops/gsched/core/metrics"
	infralogger "github.com/satops/gsched/infra/logger"
)

// InfluxConfig holds connection settings for the InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes run results to an InfluxDB bucket.
type InfluxSink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	log    logger.Logger
}

// NewInfluxSink connects to InfluxDB and verifies the target is healthy.
func NewInfluxSink(cfg InfluxConfig) (*InfluxSink, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb health check: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("influxdb unhealthy: %s", health.Status)
	}
	return &InfluxSink{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:    infralogger.New("influx-sink"),
	}, nil
}

// NewInfluxSinkWithFallback returns a NopSink when the target cannot be
// reached instead of failing the run.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink, err := NewInfluxSink(cfg)
	if err != nil {
		infralogger.New("influx-sink").Warnf("influxdb unavailable, metrics disabled: %v", err)
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRunResult implements coremetrics.MetricsSink.
func (s *InfluxSink) RecordRunResult(results []coremetrics.RunResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range results {
		p := influxdb2.NewPoint(
			"scheduling_run",
			map[string]string{
				"run_id": r.RunID,
				"method": methodLabel(r.Method),
			},
			map[string]interface{}{
				"total_tasks":           r.TotalTasks,
				"assigned":              r.Assigned,
				"rejected":              r.Rejected,
				"successful":            r.Successful,
				"success_rate_all":      r.SuccessRateAll,
				"success_rate_eligible": r.SuccessRateEligible,
				"load_stddev_seconds":   r.LoadStdDev,
				"load_gap_seconds":      r.LoadGap,
				"truncated":             r.Truncated,
				"elapsed_seconds":       r.Elapsed.Seconds(),
			},
			r.CompletedAt,
		)
		if err := s.write.WritePoint(ctx, p); err != nil {
			return fmt.Errorf("write run point: %w", err)
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func init() {
	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var cfg InfluxConfig
		if err := coremetrics.DecodeConf(conf, &cfg); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(cfg), nil
	})
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satops/gsched/config"
	"github.com/satops/gsched/core/engine"
	"github.com/satops/gsched/infra/logger"
	_ "github.com/satops/gsched/infra/metrics"
	"github.com/satops/gsched/internal/eventbus"
	"github.com/satops/gsched/pkg/batch"
	"github.com/satops/gsched/pkg/export"
)

var (
	batchPath  string
	outputPath string
	csvOutput  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Schedule a batch of contact tasks",
	RunE:  runBatch,
}

func init() {
	runCmd.Flags().StringVarP(&batchPath, "batch", "b", "", "task batch file (yaml or json)")
	runCmd.Flags().StringVarP(&outputPath, "out", "o", "", "write the report to a file instead of stdout")
	runCmd.Flags().BoolVar(&csvOutput, "csv", false, "emit the assignment table as CSV instead of JSON")
	_ = runCmd.MarkFlagRequired("batch")
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.SetGlobalLevel(cfg.Logging.Level)
	logg := logger.New("run-command")

	b, err := batch.Load(batchPath)
	if err != nil {
		return fmt.Errorf("load batch: %w", err)
	}

	sink, err := cfg.Metrics.Build()
	if err != nil {
		return fmt.Errorf("metrics sinks: %w", err)
	}

	bus := eventbus.New()
	defer bus.Close()

	eng, err := engine.New(cfg.Engine, logg, engine.WithEventBus(bus), engine.WithMetricsSink(sink))
	if err != nil {
		return err
	}
	res, err := eng.Run(ctx, b.Tasks, b.Stations)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	rep := export.NewReport(res)
	if csvOutput {
		return export.WriteCSV(out, rep)
	}
	return export.WriteJSON(out, rep)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satops/gsched/config"
	"github.com/satops/gsched/core/model"
	"github.com/satops/gsched/core/validator"
	"github.com/satops/gsched/infra/logger"
	"github.com/satops/gsched/pkg/batch"
	"github.com/satops/gsched/pkg/export"
)

var (
	validateBatchPath  string
	validateReportPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration, batch, or produced schedule",
	RunE:  validateInput,
}

func init() {
	validateCmd.Flags().StringVarP(&validateBatchPath, "batch", "b", "", "task batch file to check")
	validateCmd.Flags().StringVarP(&validateReportPath, "report", "r", "", "run report to re-check against the batch")
	rootCmd.AddCommand(validateCmd)
}

func validateInput(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New("validate-command")
	logg.Infof("configuration %s is valid", cfgPath)

	if validateBatchPath == "" {
		if validateReportPath != "" {
			return fmt.Errorf("--report needs --batch for the task catalog")
		}
		return nil
	}
	b, err := batch.Load(validateBatchPath)
	if err != nil {
		return fmt.Errorf("load batch: %w", err)
	}
	reg, err := model.NewRegistry(b.Stations, cfg.Engine.MaxAntennasCeiling)
	if err != nil {
		return fmt.Errorf("stations: %w", err)
	}
	for _, t := range b.Tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		for _, w := range t.Windows {
			if _, ok := reg.Get(w.StationID); !ok {
				return fmt.Errorf("task %s references unknown station %s", t.ID, w.StationID)
			}
		}
	}
	logg.Infof("batch %s is valid: %d tasks over %d stations",
		validateBatchPath, len(b.Tasks), reg.Len())

	if validateReportPath == "" {
		return nil
	}
	f, err := os.Open(validateReportPath)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	rep, err := export.ReadJSON(f)
	if err != nil {
		return fmt.Errorf("parse report: %w", err)
	}
	v := validator.New(reg, cfg.Engine.Allocator.MinWindow(), logg)
	stats, err := v.Validate(b.Tasks, rep.Schedule())
	if err != nil {
		return fmt.Errorf("report %s: %w", validateReportPath, err)
	}
	logg.Infof("report %s holds: %d assignments, %d successful",
		validateReportPath, stats.Assigned, stats.Successful)
	return nil
}

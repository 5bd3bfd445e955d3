package main

import (
	"fmt"
	"os"

	"RevenueCast/internal/di"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	predictLarge  float64
	predictSmall  float64
	predictRecord bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast revenue for the next market days",
	Long: `Forecast revenue for the given livestock counts and print the report as JSON.

Examples:
  revenuecast predict --large 10 --small 5
  revenuecast predict --large 10 --small 5 --record`,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().Float64Var(&predictLarge, "large", 0, "number of large livestock")
	predictCmd.Flags().Float64Var(&predictSmall, "small", 0, "number of small livestock")
	predictCmd.Flags().BoolVar(&predictRecord, "record", false, "append the request to the history ledger")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}
	forecaster, cleanup, err := di.InitializeForecaster(cfg)
	if err != nil {
		return fmt.Errorf("forecaster initialization failed: %w", err)
	}
	defer cleanup()

	var out interface{}
	if predictRecord {
		res, err := forecaster.Predict(cmd.Context(), predictLarge, predictSmall)
		if err != nil {
			return err
		}
		out = struct {
			EventID string      `json:"event_id,omitempty"`
			Report  interface{} `json:"report"`
		}{res.EventID, res.Report}
	} else {
		report, err := forecaster.Forecast(cmd.Context(), predictLarge, predictSmall)
		if err != nil {
			return err
		}
		out = report
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

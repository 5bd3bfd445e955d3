package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"RevenueCast/internal/di"
	xutil "RevenueCast/pkg/util"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyDays int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print daily revenue from the ledger",
	RunE:  runHistory,
}

var cleanHistoryCmd = &cobra.Command{
	Use:   "clean-history",
	Short: "Drop invalid rows from the ledger and rewrite it sorted by date",
	RunE:  runCleanHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd, cleanHistoryCmd)

	historyCmd.Flags().IntVar(&historyDays, "days", 0, "number of calendar days including today (default history.default_days)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}
	days := historyDays
	if days == 0 {
		days = cfg.History.Days
	}

	forecaster, cleanup, err := di.InitializeForecaster(cfg)
	if err != nil {
		return fmt.Errorf("forecaster initialization failed: %w", err)
	}
	defer cleanup()

	points, err := forecaster.History(cmd.Context(), days)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TANGGAL\tPENDAPATAN")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\n", p.Date, xutil.FormatAmount(p.Revenue, cfg.Forecast.Currency))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s rows over %d days\n", humanize.Comma(int64(len(points))), days)
	return nil
}

func runCleanHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}
	store, cleanup, err := di.InitializeHistoryStore(cfg)
	if err != nil {
		return fmt.Errorf("history store initialization failed: %w", err)
	}
	defer cleanup()

	removed, err := store.Clean(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d rows kept, %d removed\n", store.Path(), store.Len(), removed)
	return nil
}

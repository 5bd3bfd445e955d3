package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"RevenueCast/internal/di"

	"github.com/spf13/cobra"
)

var relayCmd = &cobra.Command{
	Use:   "relay-events",
	Short: "Archive forecast events queued in Redis into ClickHouse",
	Long: `Consume forecast events written by the redis sink backend and store them in
the ClickHouse forecast table. Failed inserts are retried per queue.retry_limit,
then moved to the dead letter list.`,
	RunE: runRelay,
}

func init() {
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	relay, cleanup, err := di.InitializeEventRelay(cfg)
	if err != nil {
		return fmt.Errorf("relay initialization failed: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := relay.Start(); err != nil {
		return err
	}
	if stats, err := relay.Stats(ctx); err == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "queue: %d pending, %d retrying, %d dead\n", stats.Pending, stats.Retry, stats.Dead)
	}

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return relay.Stop(stopCtx)
}

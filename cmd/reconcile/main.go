package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/bootstrap"
	"storefront/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reconcile",
		Short:         "Order status reconciliation against the fulfillment provider",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newPollCmd())
	return rootCmd
}

func newPollCmd() *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Check pending orders once, or repeatedly with --every",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := bootstrap.NewLogger(cfg)
			ctx := cmd.Context()

			app, err := bootstrap.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			pollOnce := func() error {
				sum, err := app.Reconcile.PollPendingOrders(ctx)
				if err != nil {
					return err
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sum)
			}

			if every <= 0 {
				return pollOnce()
			}

			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				if err := pollOnce(); err != nil {
					//次のtickで再試行
					logger.ErrorContext(ctx, "poll failed", "error", err)
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().DurationVar(&every, "every", 0, "repeat interval (e.g. 15m); 0 runs once")
	return cmd
}

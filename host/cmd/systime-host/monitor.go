package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"systime/host/metrics"
	"systime/host/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll the board and log its drift against the host clock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		board, err := connect()
		if err != nil {
			return err
		}
		defer board.Close()

		serveMetrics(ctx)
		mon := monitor.New(board, log, cfg.PollInterval(), prometheus.DefaultRegisterer)
		return ignoreCanceled(mon.Run(ctx))
	},
}

// serveMetrics starts the metrics endpoint if one is configured
func serveMetrics(ctx context.Context) {
	if cfg.MetricsAddr == "" {
		return
	}
	go func() {
		if err := metrics.Serve(ctx, log, cfg.MetricsAddr, prometheus.DefaultGatherer); err != nil {
			log.Error("failed to serve metrics", zap.Error(err))
		}
	}()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

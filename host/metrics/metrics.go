// Package metrics names the exported board metrics and serves them
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	BoardUptimeN = "systime_board_uptime_seconds"
	BoardUptimeH = "Internal seconds since the board clock was configured"

	BoardWallN = "systime_board_wall_seconds"
	BoardWallH = "Wall-clock seconds reported by the board"

	BoardOffsetN = "systime_board_offset_seconds"
	BoardOffsetH = "Wall-clock offset applied by the board"

	BoardWallErrorN = "systime_board_wall_error_seconds"
	BoardWallErrorH = "Board wall seconds minus host Unix seconds"

	BoardDriftN = "systime_board_drift_ppm"
	BoardDriftH = "Board millisecond clock rate error relative to the host, in parts per million"

	RoundTripN = "systime_request_round_trip_seconds"
	RoundTripH = "Round-trip time of get_time requests"

	ReportsReceivedN = "systime_reports_received_total"
	ReportsReceivedH = "Time reports received from the board"

	RequestErrorsN = "systime_request_errors_total"
	RequestErrorsH = "Time requests that failed or timed out"
)

const shutdownTimeout = 5 * time.Second

// Handler serves the metrics in g under /metrics
func Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

// Serve exposes the metrics in g on addr until ctx is done
func Serve(ctx context.Context, log *zap.Logger, addr string, g prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(g),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", zap.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

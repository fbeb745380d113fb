package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"systime/host/mcu"
	"systime/host/monitor"
	"systime/host/sim"
)

var simulateFlags struct {
	duration time.Duration
	poll     time.Duration
	setWall  bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the board firmware clock on the host and monitor it",
	Long: `simulate emulates the timer described by the [simulation] section of
the configuration with the host monotonic clock, serves the board time
protocol from it over an in-memory link, and monitors it exactly as a real
board would be monitored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if simulateFlags.duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, simulateFlags.duration)
			defer cancel()
		}

		s := cfg.Simulation
		counter := sim.NewHostCounter(s.HWBits, s.FrequencyHz)
		clockCfg, err := s.ClockConfig(counter)
		if err != nil {
			return err
		}

		poll := simulateFlags.poll
		if period := counter.Period(); poll >= period {
			log.Warn("poll interval exceeds the register period, ticks will be lost",
				zap.Duration("poll", poll), zap.Duration("period", period))
		}

		boardEnd, hostEnd := net.Pipe()
		board, err := sim.NewBoard(clockCfg, boardEnd, log.Named("board"))
		if err != nil {
			return err
		}
		board.ReportEvery(s.ReportIntervalMs)

		log.Info("simulating board",
			zap.Uint8("hw_bits", s.HWBits),
			zap.Uint32("frequency_hz", s.FrequencyHz),
			zap.Uint32("tick_multiplier", s.TickMultiplier),
			zap.Uint32("ticks_per_ms", s.TicksPerMs),
			zap.Duration("register_period", counter.Period()))

		link := mcu.New(pipePort{hostEnd}, log.Named("mcu"))
		defer link.Close()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer boardEnd.Close()
			return board.Run(gctx, poll)
		})
		g.Go(func() error {
			if simulateFlags.setWall {
				reqCtx, cancel := requestContext(gctx)
				defer cancel()
				if _, err := link.SetTime(reqCtx, uint32(time.Now().Unix())); err != nil {
					return err
				}
			}
			serveMetrics(gctx)
			mon := monitor.New(link, log, cfg.PollInterval(), prometheus.DefaultRegisterer)
			return mon.Run(gctx)
		})
		return ignoreCanceled(g.Wait())
	},
}

// pipePort adapts an in-memory connection to serial.Port
type pipePort struct {
	net.Conn
}

func (pipePort) Flush() error {
	return nil
}

func init() {
	simulateCmd.Flags().DurationVar(&simulateFlags.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	simulateCmd.Flags().DurationVar(&simulateFlags.poll, "poll", sim.DefaultPollInterval, "how often the simulated firmware main loop runs")
	simulateCmd.Flags().BoolVar(&simulateFlags.setWall, "set-wall", true, "set the simulated board to the host time first")
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"systime/protocol"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the board clock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := connect()
		if err != nil {
			return err
		}
		defer board.Close()

		ctx, cancel := requestContext(cmd.Context())
		defer cancel()
		r, err := board.RequestTime(ctx)
		if err != nil {
			return fmt.Errorf("get_time: %w", err)
		}
		printReport(cmd, r)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set [unix-seconds]",
	Short: "Set the board wall clock (default: host time)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sec := uint32(time.Now().Unix())
		if len(args) == 1 {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid seconds %q: %w", args[0], err)
			}
			sec = uint32(v)
		}

		board, err := connect()
		if err != nil {
			return err
		}
		defer board.Close()

		ctx, cancel := requestContext(cmd.Context())
		defer cancel()
		r, err := board.SetTime(ctx, sec)
		if err != nil {
			return fmt.Errorf("set_time: %w", err)
		}
		printReport(cmd, r)
		return nil
	},
}

var adjustCmd = &cobra.Command{
	Use:   "adjust <delta-seconds>",
	Short: "Shift the board wall clock by a signed number of seconds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid delta %q: %w", args[0], err)
		}

		board, err := connect()
		if err != nil {
			return err
		}
		defer board.Close()

		ctx, cancel := requestContext(cmd.Context())
		defer cancel()
		r, err := board.AdjustTime(ctx, int32(delta))
		if err != nil {
			return fmt.Errorf("adjust_time: %w", err)
		}
		printReport(cmd, r)
		return nil
	},
}

func printReport(cmd *cobra.Command, r protocol.TimeReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ticks:   %d\n", r.Ticks)
	fmt.Fprintf(out, "msec:    %d\n", r.Msec)
	fmt.Fprintf(out, "uptime:  %ds\n", r.UptimeSeconds())
	fmt.Fprintf(out, "wall:    %d (%s)\n", r.Sec, time.Unix(int64(r.Sec), 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "offset:  %+ds\n", r.Offset)
}

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Print the board's firmware dictionary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := connect()
		if err != nil {
			return err
		}
		defer board.Close()

		ctx, cancel := requestContext(cmd.Context())
		defer cancel()
		dict, err := board.Identify(ctx)
		if err != nil {
			return fmt.Errorf("identify: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "version: %s\n", dict.Version)

		names := make([]string, 0, len(dict.Constants))
		for name := range dict.Constants {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %-14s %s\n", name, dict.Constants[name])
		}

		fmt.Fprintln(out, "messages:")
		for _, msg := range dict.Messages {
			fmt.Fprintf(out, "  %3d %s %s\n", msg.ID, msg.Name, msg.Format)
		}
		return nil
	},
}

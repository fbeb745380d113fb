package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"systime/host/config"
	"systime/host/mcu"
)

// GlobalFlags are shared by every subcommand
type GlobalFlags struct {
	ConfigFile string
	Device     string
	Verbose    bool
	Timeout    time.Duration
}

var (
	globalFlags GlobalFlags
	cfg         config.Config
	log         *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "systime-host",
	Short: "Read, set and monitor the clock of a systime board",
	Long: `systime-host talks to a board running the time firmware over its
serial link.

Examples:
  systime-host get
  systime-host set                 # set the board to the host time
  systime-host adjust -- -30       # move the board clock back 30 s
  systime-host identify
  systime-host monitor
  systime-host simulate --duration 10s`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		log, err = newLogger(globalFlags.Verbose)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		if globalFlags.ConfigFile != "" {
			cfg, err = config.Load(globalFlags.ConfigFile)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}
		if globalFlags.Device != "" {
			cfg.Device = globalFlags.Device
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Device, "device", "d", "", "serial device (overrides the configuration)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.Timeout, "timeout", 2*time.Second, "request timeout")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(adjustCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(simulateCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return zcfg.Build()
}

// connect opens the configured board
func connect() (*mcu.MCU, error) {
	return mcu.Connect(cfg.Serial(), log)
}

// requestContext bounds a single request by the --timeout flag
func requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, globalFlags.Timeout)
}

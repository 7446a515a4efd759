package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/clockd"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// alarmsFile path where the alarm list is persisted.
	alarmsFile string
	// logLevel sets the minimum log severity.
	logLevel string

	// rootCmd represents the base command for running the alarm daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock [listen-address]",
		Short: "Run the alarm clock daemon.",
		Long: `Starts the alarm clock daemon: a once-per-second loop that evaluates the
alarm list against the configured clock and drives the vibration motor for
alarms that fire.

Remote clients manage alarms over the command link (TCP or MQTT) using the
compact single-letter protocol. The alarm list is persisted to a JSON file
and survives restarts. Listen address can be provided as argument to
override config (e.g., 0.0.0.0:7600).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			applyLogLevel()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &clockd.Options{
				ConfigPath:    configPath,
				AlarmsFile:    alarmsFile,
				ListenAddress: listenAddress,
			}

			return clockd.Run(ctx, options)
		},
	}

	// setTimeCmd writes a wall-clock value to the configured clock source.
	setTimeCmd = &cobra.Command{
		Use:   "set-time \"YYYY-MM-DD HH:MM:SS\"",
		Short: "Set the configured clock to the given wall-clock time.",
		Long: `Writes the given time to the configured clock source. Intended for the
DS3231 RTC after battery replacement or first boot; the system clock
source rejects writes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			applyLogLevel()

			options := &clockd.Options{ConfigPath: configPath}

			return clockd.RunSetTime(ctx, options, args[0])
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(setTimeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyLogLevel sets the global logger level from the --log-level flag.
func applyLogLevel() {
	if level, ok := logger.ParseLogLevel(logLevel); ok {
		logger.SetLevel(level)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug, info, warn, error)")
	rootCmd.Flags().
		StringVarP(&alarmsFile, "alarms-file", "a", "", "path to persist the alarm list (defaults to config)")
}

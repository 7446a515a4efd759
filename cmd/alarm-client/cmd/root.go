package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// address of the daemon's TCP command link.
	address string
	// timeout bounds the whole exchange.
	timeout time.Duration

	// rootCmd represents the base command for talking to the daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-client <command>",
		Short: "Send a protocol command to the alarm clock daemon.",
		Long: `Sends one compact protocol command to the daemon's TCP command link and
prints the response frames.

Commands:
  a<HH>:<MM>[:<days>][:<name>][:<R|O>]   add an alarm (days 0-6, Monday=0)
  r<indexOrName>                         remove an alarm
  t<indexOrName>                         toggle an alarm
  l                                      list alarms
  s                                      status (time, alarm count, errors)
  p                                      ping

Examples:
  alarm-client a07:30:0,1,2,3,4:Work:R
  alarm-client l`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &client.Options{
				ConfigPath: configPath,
				Address:    address,
				Command:    strings.Join(args, " "),
				Timeout:    timeout,
			}

			return client.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-client CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&address, "address", "a", "", "daemon address (defaults to config)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "exchange timeout")
}

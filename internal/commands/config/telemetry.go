package config

import (
	"fmt"
	"os"

	"github.com/socialharvester/harvester/internal/ui"
	"github.com/socialharvester/harvester/pkg/config"
	"github.com/spf13/cobra"
)

func newTelemetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Manage error reporting",
		Long: `Enable or disable crash and error reporting.

Reporting can also be disabled for a single shell with:
  export HARVESTER_TELEMETRY_DISABLED=true`,
	}

	cmd.AddCommand(newTelemetrySwitchCmd(false))
	cmd.AddCommand(newTelemetrySwitchCmd(true))
	cmd.AddCommand(newTelemetryStatusCmd())

	return cmd
}

func newTelemetrySwitchCmd(enable bool) *cobra.Command {
	use, short, done := "disable", "Disable error reporting", "✓ Telemetry disabled"
	if enable {
		use, short, done = "enable", "Enable error reporting", "✓ Telemetry enabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return ui.NewValidationError(fmt.Errorf("failed to load config: %w", err))
			}

			cfg.TelemetryEnabled = &enable
			if err := config.Save(cfg); err != nil {
				return ui.NewFileSystemError(fmt.Errorf("failed to save config: %w", err))
			}

			fmt.Fprintln(cmd.OutOrStdout(), done) //nolint:errcheck // best effort
			return nil
		},
	}
}

func newTelemetryStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether error reporting is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return ui.NewValidationError(fmt.Errorf("failed to load config: %w", err))
			}

			out := cmd.OutOrStdout()
			if cfg.IsTelemetryEnabled() {
				fmt.Fprintln(out, "Telemetry: enabled") //nolint:errcheck // best effort
			} else {
				fmt.Fprintln(out, "Telemetry: disabled") //nolint:errcheck // best effort
				if os.Getenv("HARVESTER_TELEMETRY_DISABLED") != "" {
					fmt.Fprintln(out, "(disabled by HARVESTER_TELEMETRY_DISABLED)") //nolint:errcheck // best effort
				}
			}
			return nil
		},
	}
}

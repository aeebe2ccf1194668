package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/socialharvester/harvester/internal/api"
	configCmd "github.com/socialharvester/harvester/internal/commands/config"
	"github.com/socialharvester/harvester/internal/ui"
	"github.com/socialharvester/harvester/internal/version"
	"github.com/socialharvester/harvester/pkg/bugsnag"
	"github.com/socialharvester/harvester/pkg/config"
	"github.com/socialharvester/harvester/pkg/logrium"
)

// Commands that never contact the backend skip the compatibility check.
var offlineCommands = map[string]bool{
	"version":   true,
	"config":    true,
	"init":      true,
	"help":      true,
	"telemetry": true,
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "harvester",
		Short: "Social Data Harvester CLI",
		Long:  "Command line client and dashboard for the Social Data Harvester API",
		// Errors are printed by main. Commands set SilenceUsage themselves so
		// that unknown commands still show usage.
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			displayOpts := ui.NewDisplayConfig(cmd, verbose)

			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}

			if verbose {
				logFile, err := logrium.Setup(displayOpts.IsInteractive, cfg.GetLogLevel())
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error setting up logger: %v\n", err)
					os.Exit(1)
				}
				if logFile != "" {
					fmt.Fprintf(os.Stderr, "Debug logs: %s\n", logFile)
				}
			} else {
				logrium.Disable()
			}

			slog.Debug("Config loaded", "path", config.Path(), "api_url", cfg.APIURL, "log_mode", cfg.LogMode)
			bugsnag.SetCommandContext(cmd.CommandPath(), args)

			ctx := context.WithValue(cmd.Context(), config.GetContextKey(), cfg)
			ctx = ui.WithDisplayConfig(ctx, displayOpts)
			cmd.SetContext(ctx)

			if !isOffline(cmd) && !cfg.SkipVersionCheck {
				if client, err := api.NewClient(cfg); err == nil {
					version.PrintCompatibilityWarning(cmd.Context(), cmd.ErrOrStderr(), client, cfg.APIURL, false)
				}
			}
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output and animations")
	rootCmd.PersistentFlags().Bool("no-ansi", false, "Disable colored output and animations (equivalent to --no-color)")
	rootCmd.PersistentFlags().Bool("disable-animation", false, "Print plain progress lines instead of the dashboard")

	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewDashboardCmd())
	rootCmd.AddCommand(NewStartCmd())
	rootCmd.AddCommand(NewStopCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewReportsCmd())
	rootCmd.AddCommand(NewRequestsCmd())
	rootCmd.AddCommand(NewResultsCmd())
	rootCmd.AddCommand(NewChartsCmd())
	rootCmd.AddCommand(NewCommentsCmd())
	rootCmd.AddCommand(NewLogsCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(configCmd.NewConfigCmd())

	return rootCmd
}

func isOffline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if offlineCommands[c.Name()] {
			return true
		}
	}
	return false
}

package config

import (
	"fmt"

	"github.com/socialharvester/harvester/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value from ~/.harvester/config.yaml

Examples:
  harvester config get api-url
  harvester config get log-mode
  harvester config get status-interval`,
		Args: cobra.ExactArgs(1),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key := args[0]
	normalizedKey := config.NormalizeKey(key)

	if !config.IsValidUserFacingKey(normalizedKey) {
		return fmt.Errorf("'%s' is not a recognized configuration key. Run 'harvester config set --help' for valid keys", key)
	}

	// Defaults count as set so that effective values are reported
	if !viper.IsSet(normalizedKey) {
		return fmt.Errorf("configuration key '%s' not set", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), viper.Get(normalizedKey)) //nolint:errcheck // best effort
	return nil
}

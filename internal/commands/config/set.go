package config

import (
	"fmt"

	"github.com/socialharvester/harvester/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.harvester/config.yaml

Examples:
  harvester config set api-url https://harvester.example.com
  harvester config set log-mode pull
  harvester config set status-interval 2s
  harvester config set skip-version-check true`,
		Args: cobra.ExactArgs(2),
		RunE: runSet,
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key := args[0]
	normalizedKey := config.NormalizeKey(key)

	if !config.IsValidUserFacingKey(normalizedKey) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: '%s' is not a recognized configuration key\n\n", key) //nolint:errcheck // best effort
		printValidKeys(cmd.ErrOrStderr())
		return fmt.Errorf("invalid configuration key")
	}

	value, err := parseValue(normalizedKey, args[1])
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	viper.Set(normalizedKey, value)
	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %s\n", key, displayValue(normalizedKey, value)) //nolint:errcheck // best effort
	return nil
}

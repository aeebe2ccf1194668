package config

import (
	"fmt"

	"github.com/socialharvester/harvester/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration",
		Long: `List the effective value of every configuration key. Values that
are not written to ~/.harvester/config.yaml show their defaults.

Example:
  harvester config list`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	out := cmd.OutOrStdout()
	for _, key := range config.GetUserFacingKeys() {
		normalized := config.NormalizeKey(key)
		if !viper.IsSet(normalized) {
			continue
		}
		value := displayValue(normalized, viper.Get(normalized))
		if value == "" {
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", key, value) //nolint:errcheck // best effort
	}

	return nil
}

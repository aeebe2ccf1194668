package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/socialharvester/harvester/internal/version"
)

func NewVersionCmd() *cobra.Command {
	var clientOnly bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, version.GetFullVersion()) //nolint:errcheck // best effort
			if clientOnly {
				return nil
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			compat, err := version.CheckServer(ctx, e.client)
			if err != nil {
				fmt.Fprintf(out, "Server:  %s unreachable (%v)\n", e.cfg.APIURL, err) //nolint:errcheck // best effort
				return nil
			}

			state := "supported"
			if !compat.Compatible {
				state = "unsupported, this client speaks " + version.SupportedServers
			}
			name := compat.Title
			if name == "" {
				name = e.cfg.APIURL
			}
			fmt.Fprintf(out, "Server:  %s %s (%s)\n", name, compat.Version, state) //nolint:errcheck // best effort
			return nil
		},
	}

	cmd.Flags().BoolVar(&clientOnly, "client", false, "Only print the client version")
	return cmd
}

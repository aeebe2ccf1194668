package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
	"github.com/socialharvester/harvester/internal/ui"
)

const maxParallelReports = 4

func NewReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List and read analysis reports",
	}

	cmd.AddCommand(newReportsListCmd())
	cmd.AddCommand(newReportsShowCmd())
	return cmd
}

func newReportsListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the networks that have reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			reports, err := e.client.ListReports(cmd.Context())
			if err != nil {
				return ui.NewAPIError(fmt.Errorf("failed to list reports: %w", err))
			}
			if !all {
				reports = api.ActionableReports(reports)
			}

			ui.WriteReportsTable(cmd.OutOrStdout(), reports)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include networks without any report file")
	return cmd
}

func newReportsShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [network...]",
		Short: "Print report contents",
		Long: `Print the report of one or more networks. Without arguments every
network with a report is printed.

Examples:
  harvester reports show Twitter
  harvester reports show linkedin instagram --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			reportFormat, err := api.ParseReportFormat(format)
			if err != nil {
				return ui.NewValidationError(err)
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			networks, err := reportNetworks(cmd, e.client, args)
			if err != nil {
				return err
			}
			if len(networks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reports available yet") //nolint:errcheck // best effort
				return nil
			}

			results := make([]*api.Report, len(networks))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxParallelReports)
			for i, network := range networks {
				g.Go(func() error {
					report, err := e.client.GetReport(ctx, network, reportFormat)
					if api.IsNotFound(err) {
						return nil
					}
					if err != nil {
						return fmt.Errorf("failed to load %s report: %w", network, err)
					}
					results[i] = report
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return ui.NewAPIError(err)
			}

			for i, report := range results {
				writeReport(cmd.OutOrStdout(), e.display, networks[i], report)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(api.ReportFormatText), "Report format (text or json)")
	return cmd
}

// reportNetworks canonicalizes the requested networks, or lists the
// networks with reports when none were given.
func reportNetworks(cmd *cobra.Command, client api.Client, args []string) ([]string, error) {
	if len(args) == 0 {
		reports, err := client.ListReports(cmd.Context())
		if err != nil {
			return nil, ui.NewAPIError(fmt.Errorf("failed to list reports: %w", err))
		}
		var networks []string
		for _, r := range api.ActionableReports(reports) {
			networks = append(networks, r.Network)
		}
		return networks, nil
	}

	networks := make([]string, 0, len(args))
	for _, arg := range args {
		network, ok := jobsync.CanonicalNetwork(arg)
		if !ok {
			return nil, ui.NewValidationError(fmt.Errorf("unknown network %q (choose from %s)", arg, strings.Join(jobsync.ScrapeNetworks, ", ")))
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func writeReport(w io.Writer, display ui.DisplayConfig, network string, report *api.Report) {
	if report == nil {
		fmt.Fprintf(w, "No report available for %s yet\n", network) //nolint:errcheck // best effort
		return
	}

	title := fmt.Sprintf("%s report (%s)", report.Network, report.Format)
	if report.Request != "" {
		title += " for " + report.Request
	}
	content := strings.TrimRight(report.Content, "\n")

	if display.SimpleOutput() || display.NoColor {
		fmt.Fprintf(w, "== %s ==\n%s\n", title, content) //nolint:errcheck // best effort
		return
	}
	fmt.Fprint(w, ui.RenderPanel(title, content, 0)) //nolint:errcheck // best effort
}

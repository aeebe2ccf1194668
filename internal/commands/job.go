package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
	"github.com/socialharvester/harvester/internal/ui"
	"github.com/socialharvester/harvester/pkg/jobprofile"
)

// jobRun wires a synchronizer and dispatcher to plain output for one command.
type jobRun struct {
	*env
	printer    *ui.PrinterSink
	sync       *jobsync.Synchronizer
	dispatcher *jobsync.Dispatcher
}

func newJobRun(cmd *cobra.Command) (*jobRun, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, err
	}

	printer := ui.NewPrinterSink(cmd.OutOrStdout(), cmd.ErrOrStderr())
	sync := jobsync.NewSynchronizer(e.client, printer, e.cfg)
	return &jobRun{
		env:        e,
		printer:    printer,
		sync:       sync,
		dispatcher: jobsync.NewDispatcher(e.client, sync, printer),
	}, nil
}

// commandError converts a dispatcher error. Anything but a validation error
// has already been printed through the sink.
func commandError(err error) error {
	uiErr := ui.ClassifyError(err)
	if uiErr.Type != ui.ErrorTypeValidation {
		uiErr.SilentExit = true
	}
	return uiErr
}

func NewStartCmd() *cobra.Command {
	var jf jobFlags
	var follow bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a scrape job",
		Long: `Start scraping the configured networks for a query.

Values come from harvester.toml in the current directory and can be
overridden with flags.

Examples:
  harvester start --query "electric cars" --networks LinkedIn,Reddit
  harvester start --max-posts 100 --follow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, &jf, follow)
		},
	}

	addJobFlags(cmd, &jf)
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Print status and logs until the job finishes")
	return cmd
}

func runStart(cmd *cobra.Command, jf *jobFlags, follow bool) error {
	cmd.SilenceUsage = true

	run, err := newJobRun(cmd)
	if err != nil {
		return err
	}
	defer run.sync.Shutdown()

	req, _, err := jf.resolve(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := run.dispatcher.Start(ctx, req); err != nil {
		return commandError(err)
	}
	if !follow {
		return nil
	}
	return run.watch(ctx)
}

func (r *jobRun) watch(ctx context.Context) error {
	if err := watchUntilIdle(ctx, r.env, r.sync, r.printer); err != nil {
		return ui.ClassifyError(err)
	}
	return nil
}

func NewStopCmd() *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running scrape job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			run, err := newJobRun(cmd)
			if err != nil {
				return err
			}
			defer run.sync.Shutdown()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			drainIdle(run.printer)
			if err := run.dispatcher.Stop(ctx); err != nil {
				return commandError(err)
			}
			if !follow {
				return nil
			}
			return run.watch(ctx)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Wait until the server reports the job stopped")
	return cmd
}

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the scrape and analysis job status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			status, err := e.client.GetStatus(cmd.Context())
			if err != nil {
				return ui.NewAPIError(fmt.Errorf("failed to fetch status: %w", err))
			}

			ui.WriteStatusTable(cmd.OutOrStdout(), *status)
			return nil
		},
	}
}

func NewAnalyzeCmd() *cobra.Command {
	var (
		networks []string
		profile  string
		follow   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [request]",
		Short: "Run sentiment analysis over a scraped request",
		Long: `Ask the backend to analyze the results of a request with the LLM.

The request defaults to the query in harvester.toml. Networks default to
[analysis] networks in harvester.toml, then to every network analysis
supports. Networks analysis does not support are dropped.

Examples:
  harvester analyze "electric cars"
  harvester analyze "electric cars" --networks Twitter,Reddit --follow`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			run, err := newJobRun(cmd)
			if err != nil {
				return err
			}
			defer run.sync.Shutdown()

			jp, err := loadProfile(profile)
			if err != nil {
				return err
			}

			request, analyzeNetworks := jp.Job.Query, jp.Analysis.Networks
			if len(args) == 1 {
				request = args[0]
			}
			if cmd.Flags().Changed("networks") {
				analyzeNetworks = splitList(networks)
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			drainIdle(run.printer)
			if err := run.dispatcher.AnalyzeLLM(ctx, request, analyzeNetworks); err != nil {
				return commandError(err)
			}
			if !follow {
				return nil
			}
			if err := run.watch(ctx); err != nil {
				return err
			}
			return run.printFinalReports(ctx, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&networks, "networks", nil, "Networks to analyze (comma separated, default all)")
	cmd.Flags().StringVar(&profile, "profile", jobprofile.DefaultFileName, "Job profile to read defaults from")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Wait for the analysis and print the reports")
	return cmd
}

// printFinalReports lists reports when the analysis ended before the report
// poller saw them.
func (r *jobRun) printFinalReports(ctx context.Context, cmd *cobra.Command) error {
	if len(r.printer.Reports()) > 0 || ctx.Err() != nil {
		return nil
	}

	reports, err := r.client.ListReports(ctx)
	if err != nil {
		slog.Warn("Failed to list reports after analysis", "error", err)
		return nil
	}
	ready := api.ActionableReports(reports)
	if len(ready) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Analysis finished without reports") //nolint:errcheck // best effort
		return nil
	}
	ui.WriteReportsTable(cmd.OutOrStdout(), ready)
	return nil
}

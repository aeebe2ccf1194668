package commands

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
	"github.com/socialharvester/harvester/internal/ui"
	uiCommands "github.com/socialharvester/harvester/internal/ui/commands"
	"github.com/socialharvester/harvester/internal/wsapi"
	"github.com/socialharvester/harvester/pkg/config"
)

func NewDashboardCmd() *cobra.Command {
	var jf jobFlags

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive job dashboard",
		Long: `Open a live view of the scrape and analysis jobs with their log and
reports. The job started with 's' comes from harvester.toml and the flags.

Without an interactive terminal (or with --disable-animation) status
changes and log lines are printed until no job is running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, &jf)
		},
	}

	addJobFlags(cmd, &jf)
	return cmd
}

func runDashboard(cmd *cobra.Command, jf *jobFlags) error {
	cmd.SilenceUsage = true

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	job, analyzeNetworks, err := jf.resolve(cmd)
	if err != nil {
		return err
	}

	if e.display.SimpleOutput() {
		return runPlainDashboard(cmd, e)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sink := uiCommands.NewTeaSink()
	sync := jobsync.NewSynchronizer(e.client, sink, e.cfg)
	defer sync.Shutdown()

	model := uiCommands.NewDashboardView(ctx, uiCommands.DashboardConfig{
		DisplayConfig:   e.display,
		Sync:            sync,
		Dispatcher:      jobsync.NewDispatcher(e.client, sync, sink),
		Job:             job,
		AnalyzeNetworks: analyzeNetworks,
		LogMode:         string(e.cfg.LogMode),
	})

	p := tea.NewProgram(model, programOptions(e.display)...)
	done := ui.HandleSignals(p, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sink.Run(gctx, p.Send) })
	if e.cfg.LogMode == config.LogModePush {
		stream := jobsync.NewLogStream(wsapi.NewDialer(e.cfg), sink, e.cfg.ReconnectDelay)
		g.Go(func() error { return stream.Run(gctx) })
	}

	final, runErr := p.Run()
	done()
	cancel()
	sync.Shutdown()
	if err := g.Wait(); err != nil {
		slog.Warn("Dashboard background task failed", "error", err)
	}

	if runErr != nil {
		return ui.NewInternalError(fmt.Errorf("program error: %w", runErr))
	}
	return finish(final)
}

// runPlainDashboard prints the current state, then follows any running job
// the way start --follow does.
func runPlainDashboard(cmd *cobra.Command, e *env) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	printer := ui.NewPrinterSink(cmd.OutOrStdout(), cmd.ErrOrStderr())
	sync := jobsync.NewSynchronizer(e.client, printer, e.cfg)
	defer sync.Shutdown()

	if !sync.FetchStatus(ctx) {
		return commandError(fmt.Errorf("failed to fetch status"))
	}
	sync.RefreshRequests(ctx)
	if requests := printer.Requests(); len(requests) > 0 {
		ui.WriteRequestsTable(cmd.OutOrStdout(), requests)
	}

	if sync.Phase() == jobsync.PhaseIdle && !sync.Analyzing() {
		return nil
	}
	if err := watchUntilIdle(ctx, e, sync, printer); err != nil {
		return ui.ClassifyError(err)
	}

	if ctx.Err() == nil && len(printer.Reports()) == 0 {
		if reports, err := e.client.ListReports(ctx); err == nil {
			if ready := api.ActionableReports(reports); len(ready) > 0 {
				ui.WriteReportsTable(cmd.OutOrStdout(), ready)
			}
		}
	}
	return nil
}

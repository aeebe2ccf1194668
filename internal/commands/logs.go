package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/socialharvester/harvester/internal/jobsync"
	"github.com/socialharvester/harvester/internal/ui"
	"github.com/socialharvester/harvester/internal/wsapi"
	"github.com/socialharvester/harvester/pkg/config"
)

func NewLogsCmd() *cobra.Command {
	var (
		mode   string
		noWait bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the job log",
		Long: `Print the scrape job log as it is written.

In push mode (the default) entries are streamed over the log websocket
until interrupted. In pull mode the log is read from status responses and
the command returns once no job is running.

Examples:
  harvester logs
  harvester logs --mode pull --no-wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("mode") {
				logMode, err := config.ParseLogMode(mode)
				if err != nil {
					return ui.NewValidationError(err)
				}
				cfg := *e.cfg
				cfg.LogMode = logMode
				e.cfg = &cfg
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			printer := ui.NewPrinterSink(cmd.OutOrStdout(), cmd.ErrOrStderr())
			sync := jobsync.NewSynchronizer(e.client, printer, e.cfg)
			defer sync.Shutdown()

			slog.Info("Following job log", "mode", e.cfg.LogMode)

			if e.cfg.LogMode == config.LogModePull {
				if !sync.FetchStatus(ctx) {
					return commandError(fmt.Errorf("failed to fetch status"))
				}
				if noWait {
					return nil
				}
				return watchUntilIdle(ctx, e, sync, printer)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Streaming %s/ws/log (ctrl+c to stop)\n", e.cfg.LogStreamURL()) //nolint:errcheck // best effort

			stream := jobsync.NewLogStream(wsapi.NewDialer(e.cfg), printer, e.cfg.ReconnectDelay)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return stream.Run(gctx) })
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Override the configured log mode (push or pull)")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "In pull mode, print the current log and exit")
	return cmd
}

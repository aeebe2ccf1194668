package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
	"github.com/socialharvester/harvester/internal/ui"
	"github.com/socialharvester/harvester/internal/wsapi"
	"github.com/socialharvester/harvester/pkg/config"
	"github.com/socialharvester/harvester/pkg/jobprofile"
)

// env is what every backend command needs from PersistentPreRun.
type env struct {
	cfg     *config.Config
	display ui.DisplayConfig
	client  api.Client
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return nil, ui.NewConfigurationError(fmt.Errorf("failed to load config: %w", err))
	}

	display, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return nil, ui.NewInternalError(fmt.Errorf("failed to get display options: %w", err))
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, ui.NewConfigurationError(fmt.Errorf("failed to create API client: %w", err))
	}

	return &env{cfg: cfg, display: display, client: client}, nil
}

// jobFlags are shared by start and dashboard. Flags override harvester.toml.
type jobFlags struct {
	profile  string
	query    string
	maxPosts int
	networks []string
}

func addJobFlags(cmd *cobra.Command, f *jobFlags) {
	cmd.Flags().StringVar(&f.profile, "profile", jobprofile.DefaultFileName, "Job profile to read defaults from")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Search query to scrape")
	cmd.Flags().IntVar(&f.maxPosts, "max-posts", 0, fmt.Sprintf("Maximum posts per network (default %d)", jobprofile.DefaultMaxPosts))
	cmd.Flags().StringSliceVar(&f.networks, "networks", nil, "Networks to scrape (comma separated)")
}

// resolve merges the profile with the flags. The result is not validated;
// the dispatcher does that before anything is sent.
func (f *jobFlags) resolve(cmd *cobra.Command) (api.StartRequest, []string, error) {
	profile, err := loadProfile(f.profile)
	if err != nil {
		return api.StartRequest{}, nil, err
	}

	req := profile.StartRequest()
	if cmd.Flags().Changed("query") {
		req.Query = f.query
	}
	if cmd.Flags().Changed("max-posts") {
		req.MaxPosts = f.maxPosts
	}
	if cmd.Flags().Changed("networks") {
		req.Networks = splitList(f.networks)
	}

	return req, profile.Analysis.Networks, nil
}

// loadProfile reads a job profile, falling back to the init defaults when
// the file does not exist.
func loadProfile(path string) (*jobprofile.Profile, error) {
	profile, err := jobprofile.LoadOptional(path)
	if err != nil {
		return nil, ui.NewConfigurationError(err)
	}
	if profile == nil {
		profile = jobprofile.New("")
	}
	return profile, nil
}

// splitList flattens repeated and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// programOptions configures bubbletea the same way for every full screen view.
func programOptions(display ui.DisplayConfig) []tea.ProgramOption {
	if !display.IsInteractive {
		return []tea.ProgramOption{tea.WithoutRenderer(), tea.WithInput(nil)}
	}
	return []tea.ProgramOption{tea.WithAltScreen()}
}

// modelError is implemented by every view that can fail.
type modelError interface {
	Error() error
}

// finish converts a view's error into the command's result.
func finish(final tea.Model) error {
	m, ok := final.(modelError)
	if !ok {
		return nil
	}
	err := m.Error()
	if err == nil {
		return nil
	}
	if uiErr, ok := err.(*ui.UIError); ok && uiErr.SilentExit {
		return nil
	}
	return err
}

// watchUntilIdle prints updates until a status shows neither job running or
// ctx is done. In push mode the log stream runs alongside.
func watchUntilIdle(ctx context.Context, e *env, sync *jobsync.Synchronizer, printer *ui.PrinterSink) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if e.cfg.LogMode == config.LogModePush {
		stream := jobsync.NewLogStream(wsapi.NewDialer(e.cfg), printer, e.cfg.ReconnectDelay)
		g.Go(func() error { return stream.Run(gctx) })
	}

	g.Go(func() error {
		defer cancel()
		select {
		case <-printer.Idle():
		case <-gctx.Done():
		}
		return nil
	})

	err := g.Wait()
	sync.Shutdown()
	return err
}

// drainIdle discards an idle signal left over from before a command was sent.
func drainIdle(printer *ui.PrinterSink) {
	select {
	case <-printer.Idle():
	default:
	}
}

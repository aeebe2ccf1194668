package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/bmatcuk/doublestar/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/ui"
	uiCommands "github.com/socialharvester/harvester/internal/ui/commands"
)

func NewChartsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Generate and browse result charts",
	}

	cmd.AddCommand(newChartsGenerateCmd())
	cmd.AddCommand(newChartsViewCmd())
	return cmd
}

// generateCharts asks the backend to render charts, showing a spinner on
// stderr while it works.
func generateCharts(ctx context.Context, client api.Client, request string, errOut io.Writer) (*api.ChartsResponse, error) {
	spinner := ui.NewSimpleSpinner(errOut, "Generating charts...")
	spinner.Start()
	resp, err := client.GenerateCharts(ctx, request)
	spinner.Stop()

	if err != nil {
		return nil, ui.NewAPIError(fmt.Errorf("failed to generate charts: %s", api.DetailOr(err, err.Error())))
	}
	return resp, nil
}

// filterCharts keeps the images whose folder/file path matches pattern.
func filterCharts(images []api.ChartImage, pattern string) ([]api.ChartImage, error) {
	if pattern == "" {
		return images, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, ui.NewValidationError(fmt.Errorf("invalid --match pattern %q", pattern))
	}

	var out []api.ChartImage
	for _, img := range images {
		if ok, _ := doublestar.Match(pattern, img.Path()); ok {
			out = append(out, img)
		}
	}
	return out, nil
}

func newChartsGenerateCmd() *cobra.Command {
	var request string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render charts for a request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			resp, err := generateCharts(cmd.Context(), e.client, request, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if resp.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message) //nolint:errcheck // best effort
			}
			ui.WriteChartsTable(cmd.OutOrStdout(), resp.Images)
			return nil
		},
	}

	cmd.Flags().StringVar(&request, "request", "", "Request to chart (default all results)")
	return cmd
}

func newChartsViewCmd() *cobra.Command {
	var (
		request string
		match   string
		saveDir string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse generated charts",
		Long: `Generate charts and browse them one at a time. Navigation wraps around
from the last chart to the first.

Without an interactive terminal the matching charts are listed, and with
--save they are all downloaded.

Examples:
  harvester charts view --request "electric cars"
  harvester charts view --match "**/sentiment_*.png" --save ./charts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			resp, err := generateCharts(cmd.Context(), e.client, request, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			images, err := filterCharts(resp.Images, match)
			if err != nil {
				return err
			}

			if e.display.SimpleOutput() {
				return saveCharts(cmd, e.client, images, saveDir)
			}

			model := uiCommands.NewChartsView(cmd.Context(), uiCommands.ChartsConfig{
				DisplayConfig: e.display,
				Client:        e.client,
				Images:        images,
				BaseURL:       e.cfg.APIURL,
				SaveDir:       saveDir,
			})

			p := tea.NewProgram(model, programOptions(e.display)...)
			done := ui.HandleSignals(p, 0)
			final, err := p.Run()
			done()
			if err != nil {
				return ui.NewInternalError(fmt.Errorf("program error: %w", err))
			}
			return finish(final)
		},
	}

	cmd.Flags().StringVar(&request, "request", "", "Request to chart (default all results)")
	cmd.Flags().StringVar(&match, "match", "", "Only show charts whose folder/file matches this glob")
	cmd.Flags().StringVar(&saveDir, "save", "", "Directory to download charts into")
	return cmd
}

func saveCharts(cmd *cobra.Command, client api.Client, images []api.ChartImage, dir string) error {
	ui.WriteChartsTable(cmd.OutOrStdout(), images)
	if dir == "" {
		return nil
	}

	for _, img := range images {
		path, n, err := uiCommands.SaveChart(cmd.Context(), client, img, dir)
		if err != nil {
			return ui.ClassifyError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s (%s)\n", path, ui.FormatSize(n)) //nolint:errcheck // best effort
	}
	return nil
}

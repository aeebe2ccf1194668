package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
	"github.com/socialharvester/harvester/internal/ui"
	"github.com/socialharvester/harvester/pkg/jobprofile"
)

func NewRequestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requests",
		Short: "List the requests that have scraped results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			requests, err := e.client.ListRequests(cmd.Context())
			if err != nil {
				return ui.NewAPIError(fmt.Errorf("failed to list requests: %w", err))
			}

			ui.WriteRequestsTable(cmd.OutOrStdout(), requests)
			return nil
		},
	}
}

func NewResultsCmd() *cobra.Command {
	var (
		request string
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Download scraped results",
		Long: `Download the scraped posts as CSV or JSON. Without --request the
results of every request are exported.

Examples:
  harvester results --request "electric cars" -o cars.csv
  harvester results --format json | jq length`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			resultsFormat, err := api.ParseResultsFormat(format)
			if err != nil {
				return ui.NewValidationError(err)
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				if _, err := e.client.DownloadResults(cmd.Context(), request, resultsFormat, cmd.OutOrStdout()); err != nil {
					return ui.NewAPIError(fmt.Errorf("failed to download results: %w", err))
				}
				return nil
			}

			n, err := downloadToFile(output, func(f *os.File) (int64, error) {
				return e.client.DownloadResults(cmd.Context(), request, resultsFormat, f)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved %s (%s)\n", output, ui.FormatSize(n)) //nolint:errcheck // best effort
			return nil
		},
	}

	cmd.Flags().StringVar(&request, "request", "", "Request to export (default all)")
	cmd.Flags().StringVar(&format, "format", string(api.ResultsFormatCSV), "Export format (csv or json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

// downloadToFile writes a download to path and removes the partial file
// when it fails.
func downloadToFile(path string, download func(f *os.File) (int64, error)) (int64, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // Output directory for user downloads
			return 0, ui.NewFileSystemError(fmt.Errorf("failed to create %s: %w", dir, err))
		}
	}

	f, err := os.Create(path) //nolint:gosec // Path chosen by the user
	if err != nil {
		return 0, ui.NewFileSystemError(fmt.Errorf("failed to create %s: %w", path, err))
	}

	n, err := download(f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = ui.NewFileSystemError(fmt.Errorf("failed to write %s: %w", path, closeErr))
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, ui.ClassifyError(err)
	}
	return n, nil
}

func NewCommentsCmd() *cobra.Command {
	var (
		request string
		network string
		profile string
	)

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Show publications and comments with their sentiment",
		Long: `Show each scraped publication of a request with its comments and the
sentiment the analysis assigned to them. The request defaults to the query
in harvester.toml.

Examples:
  harvester comments --request "electric cars"
  harvester comments --request "electric cars" --network Twitter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if request == "" {
				jp, err := loadProfile(profile)
				if err != nil {
					return err
				}
				request = jp.Job.Query
			}
			if request == "" {
				return ui.NewValidationError(fmt.Errorf("a request is required: pass --request or set [job] query in %s", profile))
			}

			if network != "" {
				canonical, ok := jobsync.CanonicalNetwork(network)
				if !ok {
					return ui.NewValidationError(fmt.Errorf("unknown network %q", network))
				}
				network = canonical
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			explained, err := e.client.GetCommentsExplained(cmd.Context(), request, network)
			if err != nil {
				if api.IsNotFound(err) {
					return ui.NewAPIError(fmt.Errorf("no analyzed comments for %q: %s", request, api.DetailOr(err, "not found")))
				}
				return ui.NewAPIError(fmt.Errorf("failed to load comments: %w", err))
			}

			plain := e.display.NoColor || e.display.SimpleOutput()
			ui.WriteCommentsTable(cmd.OutOrStdout(), explained, plain)
			return nil
		},
	}

	cmd.Flags().StringVar(&request, "request", "", "Request to show")
	cmd.Flags().StringVar(&network, "network", "", "Only show one network")
	cmd.Flags().StringVar(&profile, "profile", jobprofile.DefaultFileName, "Job profile to read the default request from")
	return cmd
}

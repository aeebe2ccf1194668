package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/socialharvester/harvester/internal/jobsync"
	"github.com/socialharvester/harvester/internal/ui"
	"github.com/socialharvester/harvester/pkg/jobprofile"
)

type initOptions struct {
	dir      string
	maxPosts int
	networks []string
	analyze  []string
	force    bool
}

func NewInitCmd() *cobra.Command {
	opts := initOptions{}

	cmd := &cobra.Command{
		Use:   "init [query]",
		Short: "Create a harvester.toml job profile",
		Long: `Create harvester.toml in the current directory. start, analyze,
comments and the dashboard read their defaults from it.

Examples:
  harvester init "electric cars"
  harvester init "electric cars" --networks LinkedIn,Reddit --max-posts 200`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			path, err := runInit(query, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created %s\n", path) //nolint:errcheck // best effort
			if query == "" {
				fmt.Fprintln(out, "Set [job] query before running 'harvester start'") //nolint:errcheck // best effort
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", ".", "Directory to write the profile into")
	cmd.Flags().IntVar(&opts.maxPosts, "max-posts", jobprofile.DefaultMaxPosts, "Maximum posts per network")
	cmd.Flags().StringSliceVar(&opts.networks, "networks", nil, "Networks to scrape (default all)")
	cmd.Flags().StringSliceVar(&opts.analyze, "analyze", nil, "Networks to analyze (default all supported)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing profile")
	return cmd
}

// runInit writes the profile and returns its path.
func runInit(query string, opts initOptions) (string, error) {
	if opts.maxPosts <= 0 {
		return "", ui.NewValidationError(fmt.Errorf("--max-posts must be greater than 0"))
	}

	profile := jobprofile.New(strings.TrimSpace(query))
	profile.Job.MaxPosts = opts.maxPosts

	if networks := splitList(opts.networks); len(networks) > 0 {
		canonical, err := canonicalNetworks(networks)
		if err != nil {
			return "", err
		}
		profile.Job.Networks = canonical
	}
	if analyze := splitList(opts.analyze); len(analyze) > 0 {
		filtered := jobsync.FilterLLMNetworks(analyze)
		if len(filtered) == 0 {
			return "", ui.NewValidationError(fmt.Errorf("none of %s support analysis (choose from %s)",
				strings.Join(analyze, ", "), strings.Join(jobsync.LLMNetworks, ", ")))
		}
		profile.Analysis.Networks = filtered
	}

	path := filepath.Join(opts.dir, jobprofile.DefaultFileName)
	if err := jobprofile.Write(path, profile, opts.force); err != nil {
		return "", ui.NewFileSystemError(fmt.Errorf("%w (use --force to overwrite)", err))
	}
	return path, nil
}

func canonicalNetworks(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		canonical, ok := jobsync.CanonicalNetwork(name)
		if !ok {
			return nil, ui.NewValidationError(fmt.Errorf("unknown network %q (choose from %s)",
				name, strings.Join(jobsync.ScrapeNetworks, ", ")))
		}
		out = append(out, canonical)
	}
	return out, nil
}

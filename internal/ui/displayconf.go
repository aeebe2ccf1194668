package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type displayConfigKey struct{}

// DisplayConfig decides between the dashboard and line-oriented output
type DisplayConfig struct {
	DisableAnimation bool
	IsInteractive    bool
	NoColor          bool
}

func (d DisplayConfig) SimpleOutput() bool {
	return !d.IsInteractive || d.DisableAnimation
}

// terminalFacts captures what we know about the process's output streams.
type terminalFacts struct {
	stdoutIsTTY        bool
	stderrSameAsStdout bool
}

type displayFlags struct {
	noColor          bool
	noANSI           bool
	disableAnimation bool
	verbose          bool
}

func resolveDisplay(flags displayFlags, term terminalFacts) DisplayConfig {
	disableAnimation := flags.noColor || flags.noANSI || flags.disableAnimation

	// Verbose logs go to stderr; they only break the dashboard when stderr
	// shares the terminal with stdout.
	verboseBreaksTUI := flags.verbose && term.stderrSameAsStdout

	return DisplayConfig{
		DisableAnimation: disableAnimation,
		IsInteractive:    term.stdoutIsTTY && !disableAnimation && !verboseBreaksTUI,
		NoColor:          flags.noColor || flags.noANSI,
	}
}

func detectTerminal() terminalFacts {
	facts := terminalFacts{stdoutIsTTY: isatty.IsTerminal(os.Stdout.Fd())}
	if out, err := os.Stdout.Stat(); err == nil {
		if errOut, err := os.Stderr.Stat(); err == nil {
			facts.stderrSameAsStdout = os.SameFile(out, errOut)
		}
	}
	return facts
}

// NewDisplayConfig reads the persistent display flags and inspects stdout.
func NewDisplayConfig(cmd *cobra.Command, verbose bool) DisplayConfig {
	flags := displayFlags{verbose: verbose}
	flags.noColor, _ = cmd.Flags().GetBool("no-color")
	flags.noANSI, _ = cmd.Flags().GetBool("no-ansi")
	flags.disableAnimation, _ = cmd.Flags().GetBool("disable-animation")

	term := detectTerminal()
	cfg := resolveDisplay(flags, term)

	slog.Debug("Display options determined",
		"command", cmd.Name(),
		"no-color", flags.noColor,
		"no-ansi", flags.noANSI,
		"disable-animation", flags.disableAnimation,
		"verbose", verbose,
		"stdout-is-tty", term.stdoutIsTTY,
		"stderr-same-as-stdout", term.stderrSameAsStdout,
		"simple-output", cfg.SimpleOutput(),
	)

	return cfg
}

// WithDisplayConfig stores cfg in ctx for subcommands.
func WithDisplayConfig(ctx context.Context, cfg DisplayConfig) context.Context {
	return context.WithValue(ctx, displayConfigKey{}, cfg)
}

// GetDisplayConfigFromContext retrieves DisplayConfig from the command context
func GetDisplayConfigFromContext(cmd *cobra.Command) (DisplayConfig, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return DisplayConfig{}, fmt.Errorf("command context is nil")
	}

	cfg, ok := ctx.Value(displayConfigKey{}).(DisplayConfig)
	if !ok {
		return DisplayConfig{}, fmt.Errorf("display options not found in context")
	}

	return cfg, nil
}

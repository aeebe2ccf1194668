// Package logrium configures the process-wide slog logger.
package logrium

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-isatty"
)

// Setup installs a text logger at level and returns the log file path, or ""
// when logging to stderr.
//
// While the dashboard owns the terminal, logs go to a timestamped file in the
// temp dir so they don't tear the display. If stderr was redirected (2>),
// the redirect is honored instead.
func Setup(isInteractive bool, level slog.Level) (string, error) {
	var output io.Writer = os.Stderr
	path := ""

	if isInteractive && isatty.IsTerminal(os.Stderr.Fd()) {
		path = debugLogPath(time.Now())
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // Temp dir log file
		if err != nil {
			return "", fmt.Errorf("failed to open debug log: %w", err)
		}
		output = f
	}

	slog.SetDefault(newLogger(output, level))
	return path, nil
}

func debugLogPath(now time.Time) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("harvester-debug-%s.log", now.Format("2006-01-02T15-04-05")))
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Disable discards all log output. Used when --verbose is not set.
func Disable() {
	slog.SetDefault(slog.New(slog.DiscardHandler))
}

// SetupForTesting sends logs to w for the duration of the test.
func SetupForTesting(t *testing.T, w io.Writer, level slog.Level) {
	t.Helper()

	original := slog.Default()
	slog.SetDefault(newLogger(w, level))
	t.Cleanup(func() {
		slog.SetDefault(original)
	})
}

package logrium

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupForTesting(t *testing.T) {
	var buf bytes.Buffer
	SetupForTesting(t, &buf, slog.LevelInfo)

	slog.Debug("poll tick", "poller", "status")
	slog.Info("Scrape started", "query", "coffee")
	slog.Warn("Failed to list reports", "error", "timeout")

	output := buf.String()
	assert.NotContains(t, output, "poll tick")
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "query=coffee")
	assert.Contains(t, output, "level=WARN")

	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Len(t, lines, 2)
}

func TestSetupForTesting_RestoresLogger(t *testing.T) {
	original := slog.Default()

	t.Run("custom", func(t *testing.T) {
		var buf bytes.Buffer
		SetupForTesting(t, &buf, slog.LevelDebug)
		assert.NotEqual(t, original, slog.Default())
	})

	assert.Equal(t, original, slog.Default())
}

func TestDisable(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	Disable()
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelError))
}

func TestSetup_NonInteractiveUsesStderr(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	path, err := Setup(false, slog.LevelDebug)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestDebugLogPath(t *testing.T) {
	path := debugLogPath(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, "harvester-debug-2026-01-02T03-04-05.log", filepath.Base(path))
}

package ui

import (
	"errors"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
)

func TestStatusLine(t *testing.T) {
	tcs := []struct {
		name     string
		status   api.JobStatus
		expected string
	}{
		{name: "idle", status: api.JobStatus{}, expected: "Idle"},
		{name: "scraping", status: api.JobStatus{Running: true}, expected: "Scraping active"},
		{
			name:     "scraping with networks",
			status:   api.JobStatus{Running: true, Networks: []string{"LinkedIn", "Reddit"}},
			expected: "Scraping active (LinkedIn, Reddit)",
		},
		{name: "analysis only", status: api.JobStatus{LLMRunning: true}, expected: "Idle, analysis running"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusLine(tc.status))
		})
	}
}

func TestFormatters_PlainProfile(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	assert.Equal(t, "Running", ColorizePhase(jobsync.PhaseRunning))
	assert.Equal(t, "Starting...", ColorizePhase(jobsync.PhaseStarting))
	assert.Equal(t, "positivo", ColorizeSentiment("positivo"))
	assert.Equal(t, "-", ColorizeSentiment(""))
	assert.Equal(t, "10:00 started", FormatLogEntry(api.LogEntry{Time: "10:00", Message: "started"}))
	assert.Equal(t, "started", FormatLogEntry(api.LogEntry{Message: "started"}))
	assert.Equal(t, "✗ Error: boom\n", FormatError(errors.New("boom")))
	assert.Empty(t, FormatError(nil))
}

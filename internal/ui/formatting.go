package ui

import (
	"fmt"
	"strings"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
)

// ColorizePhase applies color styling to a job control phase
func ColorizePhase(phase jobsync.Phase) string {
	switch phase {
	case jobsync.PhaseRunning:
		return GreenStyle.Render(phase.Title())
	case jobsync.PhaseStarting, jobsync.PhaseStopping:
		return PendingStyle.Render(phase.Title() + "...")
	default:
		return BoldStyle.Render(phase.Title())
	}
}

// ColorizeSentiment colors a sentiment label returned by the analysis.
// Labels arrive in Spanish or English.
func ColorizeSentiment(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positivo", "positive":
		return GreenStyle.Render(label)
	case "negativo", "negative":
		return RedStyle.Render(label)
	case "neutral", "neutro":
		return YellowStyle.Render(label)
	case "":
		return PendingStyle.Render("-")
	default:
		return BoldStyle.Render(label)
	}
}

// StatusLine describes the running state of both jobs in one line.
func StatusLine(status api.JobStatus) string {
	var parts []string
	if status.Running {
		scrape := "Scraping active"
		if len(status.Networks) > 0 {
			scrape += " (" + strings.Join(status.Networks, ", ") + ")"
		}
		parts = append(parts, scrape)
	} else {
		parts = append(parts, "Idle")
	}
	if status.LLMRunning {
		parts = append(parts, "analysis running")
	}
	return strings.Join(parts, ", ")
}

// FormatLogEntry renders one log entry with a subdued timestamp
func FormatLogEntry(entry api.LogEntry) string {
	if entry.Time == "" {
		return entry.Message
	}
	return TimestampStyle.Render(entry.Time) + " " + entry.Message
}

// FormatError formats an error message with styling
// NOTE: Adds a new line manually. Use strings.TrimSpace if you want to strip it.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	// Append a new line because the last line of a Bubbletea program can be
	// overwritten when it exits: https://github.com/charmbracelet/bubbletea/issues/304
	return ErrorStyle.Render(fmt.Sprintf("✗ Error: %s", err.Error())) + "\n"
}

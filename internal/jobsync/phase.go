package jobsync

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Phase is the locally displayed state of the scrape job controls.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseStarting Phase = "starting"
	PhaseRunning  Phase = "running"
	PhaseStopping Phase = "stopping"
)

// CanStart reports whether the start control is enabled.
func (p Phase) CanStart() bool {
	return p == PhaseIdle
}

// CanStop reports whether the stop control is enabled.
func (p Phase) CanStop() bool {
	return p == PhaseRunning
}

// Title returns the phase name for display.
func (p Phase) Title() string {
	return cases.Title(language.English).String(string(p))
}

// phaseFor is the settled phase implied by an authoritative status.
func phaseFor(running bool) Phase {
	if running {
		return PhaseRunning
	}
	return PhaseIdle
}

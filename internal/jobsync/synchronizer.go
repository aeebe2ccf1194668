package jobsync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/pkg/config"
)

// Synchronizer mirrors the server owned scrape and analysis jobs into a Sink.
// Reconciles are serialized; network I/O happens outside the lock.
type Synchronizer struct {
	client api.Client
	sink   Sink
	pull   *PullLogAdapter

	status  *Poller
	reports *Poller

	// issued stamps every status request when it is sent. applied is the
	// newest stamp whose response (or command completion) reached the sink.
	issued atomic.Uint64

	mu             sync.Mutex
	applied        uint64
	phase          Phase
	analyzing      bool
	commandPending bool
	reportsShown   bool
}

// NewSynchronizer creates a synchronizer with both pollers stopped. In pull
// log mode the displayed log is replaced from each applied status.
func NewSynchronizer(client api.Client, sink Sink, cfg *config.Config) *Synchronizer {
	s := &Synchronizer{
		client: client,
		sink:   sink,
		phase:  PhaseIdle,
	}

	if cfg.LogMode == config.LogModePull {
		s.pull = NewPullLogAdapter(sink)
	}

	statusInterval := cfg.StatusInterval
	if statusInterval <= 0 {
		statusInterval = config.DefaultStatusInterval
	}
	reportInterval := cfg.ReportInterval
	if reportInterval <= 0 {
		reportInterval = config.DefaultReportInterval
	}

	s.status = NewPoller("status", statusInterval, func(ctx context.Context, _ func() bool) {
		s.FetchStatus(ctx)
	})
	s.reports = NewPoller("reports", reportInterval, s.pollReports)

	return s
}

// StartStatusPolling activates the status poller. No-op when already active.
func (s *Synchronizer) StartStatusPolling(ctx context.Context) {
	s.status.Start(ctx)
}

// StopStatusPolling deactivates the status poller. No-op when already stopped.
func (s *Synchronizer) StopStatusPolling() {
	s.status.Stop()
}

// StartReportPolling activates the report poller. No-op when already active.
func (s *Synchronizer) StartReportPolling(ctx context.Context) {
	s.reports.Start(ctx)
}

// StopReportPolling deactivates the report poller. No-op when already stopped.
func (s *Synchronizer) StopReportPolling() {
	s.reports.Stop()
}

// StatusPolling reports whether the status poller is active.
func (s *Synchronizer) StatusPolling() bool {
	return s.status.Active()
}

// ReportPolling reports whether the report poller is active.
func (s *Synchronizer) ReportPolling() bool {
	return s.reports.Active()
}

// Phase returns the current control phase.
func (s *Synchronizer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Analyzing reports whether the analysis busy indicator is shown.
func (s *Synchronizer) Analyzing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzing
}

// Shutdown stops both pollers.
func (s *Synchronizer) Shutdown() {
	s.StopStatusPolling()
	s.StopReportPolling()
}

// FetchStatus performs one status request and reconciles the response. Every
// failure is surfaced to the sink and leaves both pollers untouched. It
// reports whether the response was applied.
func (s *Synchronizer) FetchStatus(ctx context.Context) bool {
	stamp := s.issued.Add(1)

	status, err := s.client.GetStatus(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if stamp <= s.applied {
		slog.Debug("Discarding stale status response", "stamp", stamp, "applied", s.applied)
		return false
	}

	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		slog.Warn("Failed to fetch status", "error", err)
		s.sink.ShowError("Error fetching status: " + api.DetailOr(err, err.Error()))
		return false
	}

	s.applied = stamp
	s.reconcile(ctx, *status)
	return true
}

// reconcile applies an authoritative status. Caller holds s.mu.
func (s *Synchronizer) reconcile(ctx context.Context, status api.JobStatus) {
	s.sink.ShowStatus(status)

	if !s.commandPending {
		if phase := phaseFor(status.Running); phase != s.phase {
			s.phase = phase
			s.sink.SetPhase(phase)
		}
	}

	if status.LLMRunning {
		if !s.analyzing {
			s.analyzing = true
			s.sink.SetAnalyzing(true)
		}
		if !s.reportsShown {
			s.reports.Start(ctx)
		}
	} else {
		if s.analyzing {
			s.analyzing = false
			s.sink.SetAnalyzing(false)
		}
		s.reportsShown = false
		s.reports.Stop()
	}

	// Once the report poller has gone quiet the status poller is the only
	// thing left to notice the analysis ending.
	if status.Running || (status.LLMRunning && s.reportsShown) {
		s.status.Start(ctx)
	} else {
		s.status.Stop()
	}

	if s.pull != nil {
		s.pull.Apply(status.Log)
	}
}

// pollReports is one report poller tick: status first, then the report list.
func (s *Synchronizer) pollReports(ctx context.Context, live func() bool) {
	s.FetchStatus(ctx)
	if !live() {
		return
	}

	reports, err := s.client.ListReports(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("Failed to list reports", "error", err)
		}
		return
	}

	ready := api.ActionableReports(reports)
	if len(ready) == 0 || !live() {
		return
	}

	s.mu.Lock()
	s.reportsShown = true
	s.reports.Stop()
	if s.analyzing {
		s.status.Start(ctx)
	}
	s.sink.ShowReports(ready)
	s.mu.Unlock()

	slog.Info("Reports ready", "count", len(ready), "first", ready[0].Network)
	s.LoadReport(ctx, ready[0].Network, api.ReportFormatText)
}

// LoadReport fetches one report and hands it to the sink. A missing report is
// shown as such rather than as an error.
func (s *Synchronizer) LoadReport(ctx context.Context, network string, format api.ReportFormat) {
	report, err := s.client.GetReport(ctx, network, format)
	if err != nil {
		if api.IsNotFound(err) {
			s.sink.ShowReportMissing(network)
			return
		}
		slog.Warn("Failed to load report", "network", network, "error", err)
		s.sink.ShowError("Error loading report: " + api.DetailOr(err, err.Error()))
		return
	}
	s.sink.ShowReport(report)
}

// RefreshRequests reloads the list of request identifiers.
func (s *Synchronizer) RefreshRequests(ctx context.Context) {
	requests, err := s.client.ListRequests(ctx)
	if err != nil {
		slog.Warn("Failed to list requests", "error", err)
		return
	}
	s.sink.ShowRequests(requests)
}

// beginCommand shows the optimistic phase of a command in flight. Polled
// status does not override the phase until endCommand.
func (s *Synchronizer) beginCommand(phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commandPending = true
	if phase != "" && phase != s.phase {
		s.phase = phase
		s.sink.SetPhase(phase)
	}
}

// endCommand settles a command. Any status request issued before this point
// is discarded when its response arrives.
func (s *Synchronizer) endCommand(phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commandPending = false
	s.applied = s.issued.Add(1)
	if phase != "" && phase != s.phase {
		s.phase = phase
		s.sink.SetPhase(phase)
	}
}

// analysisAccepted marks a new analysis as running.
func (s *Synchronizer) analysisAccepted(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applied = s.issued.Add(1)
	s.reportsShown = false
	if !s.analyzing {
		s.analyzing = true
		s.sink.SetAnalyzing(true)
	}
	s.reports.Start(ctx)
}

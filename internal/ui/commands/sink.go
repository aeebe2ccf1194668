package commands

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
)

// Messages delivered from the synchronizer to the dashboard
type (
	statusMsg        struct{ status api.JobStatus }
	phaseMsg         struct{ phase jobsync.Phase }
	analyzingMsg     struct{ busy bool }
	reportsMsg       struct{ reports []api.ReportDescriptor }
	reportMsg        struct{ report *api.Report }
	reportMissingMsg struct{ network string }
	requestsMsg      struct{ requests []string }
	logAppendMsg     struct{ entry api.LogEntry }
	logReplaceMsg    struct{ entries []api.LogEntry }
	errorMsg         struct{ message string }
	noticeMsg        struct{ message string }
)

// TeaSink turns synchronizer callbacks into Bubble Tea messages. Callbacks
// only enqueue, so they never block the synchronizer on the render loop;
// Run forwards the queue in order.
type TeaSink struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

var _ jobsync.Sink = (*TeaSink)(nil)

func NewTeaSink() *TeaSink {
	return &TeaSink{wake: make(chan struct{}, 1)}
}

// Run delivers queued messages to send until ctx is done.
func (s *TeaSink) Run(ctx context.Context, send func(tea.Msg)) error {
	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		for _, msg := range batch {
			send(msg)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}
	}
}

func (s *TeaSink) push(msg tea.Msg) {
	s.mu.Lock()
	s.queue = append(s.queue, msg)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *TeaSink) ShowStatus(status api.JobStatus) { s.push(statusMsg{status}) }
func (s *TeaSink) SetPhase(phase jobsync.Phase)     { s.push(phaseMsg{phase}) }
func (s *TeaSink) SetAnalyzing(busy bool)           { s.push(analyzingMsg{busy}) }
func (s *TeaSink) ShowReport(report *api.Report)    { s.push(reportMsg{report}) }
func (s *TeaSink) ShowReportMissing(network string) { s.push(reportMissingMsg{network}) }
func (s *TeaSink) ShowRequests(requests []string)   { s.push(requestsMsg{requests}) }
func (s *TeaSink) AppendLog(entry api.LogEntry)     { s.push(logAppendMsg{entry}) }
func (s *TeaSink) ShowError(message string)         { s.push(errorMsg{message}) }
func (s *TeaSink) ShowNotice(message string)        { s.push(noticeMsg{message}) }

func (s *TeaSink) ShowReports(reports []api.ReportDescriptor) {
	s.push(reportsMsg{reports})
}

func (s *TeaSink) ReplaceLog(entries []api.LogEntry) {
	s.push(logReplaceMsg{entries})
}

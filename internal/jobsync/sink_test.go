package jobsync

import (
	"sync"

	"github.com/socialharvester/harvester/internal/api"
)

// recordingSink captures everything the synchronizer shows.
type recordingSink struct {
	mu        sync.Mutex
	statuses  []api.JobStatus
	phases    []Phase
	analyzing []bool
	reports   [][]api.ReportDescriptor
	shown     []*api.Report
	missing   []string
	requests  [][]string
	log       []api.LogEntry
	replaced  int
	errors    []string
	notices   []string
}

var _ Sink = (*recordingSink)(nil)

func (r *recordingSink) ShowStatus(status api.JobStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordingSink) SetPhase(phase Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

func (r *recordingSink) SetAnalyzing(busy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzing = append(r.analyzing, busy)
}

func (r *recordingSink) ShowReports(reports []api.ReportDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, reports)
}

func (r *recordingSink) ShowReport(report *api.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, report)
}

func (r *recordingSink) ShowReportMissing(network string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missing = append(r.missing, network)
}

func (r *recordingSink) ShowRequests(requests []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, requests)
}

func (r *recordingSink) AppendLog(entry api.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, entry)
}

func (r *recordingSink) ReplaceLog(entries []api.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = entries
	r.replaced++
}

func (r *recordingSink) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recordingSink) ShowNotice(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, message)
}

func (r *recordingSink) lastStatus() (api.JobStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return api.JobStatus{}, false
	}
	return r.statuses[len(r.statuses)-1], true
}

func (r *recordingSink) logEntries() []api.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.LogEntry(nil), r.log...)
}

func (r *recordingSink) errorMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

func (r *recordingSink) reportLists() [][]api.ReportDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]api.ReportDescriptor(nil), r.reports...)
}

func (r *recordingSink) shownReports() []*api.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*api.Report(nil), r.shown...)
}

func (r *recordingSink) phaseHistory() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Phase(nil), r.phases...)
}

func (r *recordingSink) replaceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaced
}

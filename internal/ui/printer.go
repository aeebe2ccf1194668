package ui

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
)

// PrinterSink writes synchronizer updates as plain lines. It is used when
// output is not interactive, and by the logs command.
type PrinterSink struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	status   *api.JobStatus
	printed  []api.LogEntry
	reports  []api.ReportDescriptor
	requests []string
	idle     chan struct{}
}

var _ jobsync.Sink = (*PrinterSink)(nil)

func NewPrinterSink(out, errOut io.Writer) *PrinterSink {
	return &PrinterSink{
		out:    out,
		errOut: errOut,
		idle:   make(chan struct{}, 1),
	}
}

// Idle receives a value whenever a status arrives with neither job running.
func (p *PrinterSink) Idle() <-chan struct{} {
	return p.idle
}

// ShowStatus prints the status only when it differs from the last one printed.
func (p *PrinterSink) ShowStatus(status api.JobStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status == nil || p.status.Running != status.Running || p.status.LLMRunning != status.LLMRunning ||
		!slices.Equal(p.status.Networks, status.Networks) {
		fmt.Fprintf(p.out, "Status: %s\n", StatusLine(status))
	}
	s := status
	s.Log = nil
	p.status = &s

	if !status.Running && !status.LLMRunning {
		select {
		case p.idle <- struct{}{}:
		default:
		}
	}
}

func (p *PrinterSink) SetPhase(phase jobsync.Phase) {
	// Phases are implied by the status line
}

func (p *PrinterSink) SetAnalyzing(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if busy {
		fmt.Fprintln(p.out, "Analysis running...")
	} else {
		fmt.Fprintln(p.out, "Analysis finished")
	}
}

func (p *PrinterSink) ShowReports(reports []api.ReportDescriptor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reports = reports
	names := make([]string, 0, len(reports))
	for _, r := range reports {
		names = append(names, r.Network)
	}
	fmt.Fprintf(p.out, "Reports ready: %s\n", strings.Join(names, ", "))
}

func (p *PrinterSink) ShowReport(report *api.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	title := fmt.Sprintf("%s report (%s)", report.Network, report.Format)
	if report.Request != "" {
		title += " for " + report.Request
	}
	fmt.Fprintf(p.out, "== %s ==\n%s\n", title, strings.TrimRight(report.Content, "\n"))
}

func (p *PrinterSink) ShowReportMissing(network string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "No report available for %s yet\n", network)
}

func (p *PrinterSink) ShowRequests(requests []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = requests
}

// Requests returns the last request list shown.
func (p *PrinterSink) Requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.requests)
}

// Reports returns the last actionable reports shown.
func (p *PrinterSink) Reports() []api.ReportDescriptor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.reports)
}

func (p *PrinterSink) AppendLog(entry api.LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printed = append(p.printed, entry)
	fmt.Fprintln(p.out, entry.String())
}

// ReplaceLog prints the entries that follow what has already been printed.
// When the new log does not continue the printed one, it is printed in full.
func (p *PrinterSink) ReplaceLog(entries []api.LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := 0
	if len(entries) >= len(p.printed) && slices.Equal(entries[:len(p.printed)], p.printed) {
		start = len(p.printed)
	} else if len(p.printed) > 0 {
		fmt.Fprintln(p.out, "-- log restarted --")
	}
	for _, e := range entries[start:] {
		fmt.Fprintln(p.out, e.String())
	}
	p.printed = slices.Clone(entries)
}

func (p *PrinterSink) ShowError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.errOut, "Error: "+message)
}

func (p *PrinterSink) ShowNotice(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, message)
}

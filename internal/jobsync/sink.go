package jobsync

import "github.com/socialharvester/harvester/internal/api"

// Sink renders synchronizer state. Implementations must be safe for
// concurrent use: pollers, the log stream and commands call it from their
// own goroutines.
type Sink interface {
	// ShowStatus displays the running state. It is called for every applied status.
	ShowStatus(status api.JobStatus)
	// SetPhase enables or disables the start and stop controls.
	SetPhase(phase Phase)
	// SetAnalyzing shows or hides the analysis busy indicator.
	SetAnalyzing(busy bool)
	// ShowReports offers the actionable reports for selection.
	ShowReports(reports []api.ReportDescriptor)
	// ShowReport displays one report's content.
	ShowReport(report *api.Report)
	// ShowReportMissing tells the user a network has no report yet.
	ShowReportMissing(network string)
	// ShowRequests lists the request identifiers with results.
	ShowRequests(requests []string)
	// AppendLog adds one streamed entry to the end of the log.
	AppendLog(entry api.LogEntry)
	// ReplaceLog replaces the displayed log wholesale.
	ReplaceLog(entries []api.LogEntry)
	// ShowError displays a non blocking error message.
	ShowError(message string)
	// ShowNotice displays an informational message.
	ShowNotice(message string)
}

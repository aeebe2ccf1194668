package commands

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
	"github.com/socialharvester/harvester/internal/ui"
)

// DashboardConfig contains configuration for the dashboard
type DashboardConfig struct {
	ui.DisplayConfig

	Sync       *jobsync.Synchronizer
	Dispatcher *jobsync.Dispatcher

	// Job is sent when the user presses start
	Job api.StartRequest
	// AnalyzeNetworks is sent with every analysis; empty means all
	AnalyzeNetworks []string
	LogMode         string
}

// commandDoneMsg reports that a start, stop or analyze command returned.
// Outcomes are shown through the sink; this only re-enables the controls.
type commandDoneMsg struct {
	name string
	err  error
}

// DashboardView is the Bubbletea model for the dashboard command
type DashboardView struct {
	ctx  context.Context
	conf DashboardConfig

	status    *api.JobStatus
	phase     jobsync.Phase
	analyzing bool
	spinner   *ui.SpinnerModel
	busy      string // name of the command in flight

	requests        []string
	selectedRequest int

	reports      []api.ReportDescriptor
	activeReport int
	reportFormat api.ReportFormat
	loaded       map[string]*api.Report
	missing      map[string]bool
	reportScroll int

	logs         []api.LogEntry
	logScroll    int
	anchorBottom bool

	errMsg string
	notice string
	width  int

	err *ui.UIError
}

func NewDashboardView(ctx context.Context, conf DashboardConfig) *DashboardView {
	return &DashboardView{
		ctx:          ctx,
		conf:         conf,
		phase:        jobsync.PhaseIdle,
		reportFormat: api.ReportFormatText,
		loaded:       map[string]*api.Report{},
		missing:      map[string]bool{},
		anchorBottom: true,
	}
}

// Error returns the error the dashboard exited with, if any
func (m *DashboardView) Error() error {
	if m.err == nil {
		return nil
	}
	return m.err
}

// Init performs the initial status fetch; polling starts from there if a job is running.
func (m *DashboardView) Init() tea.Cmd {
	s := m.conf.Sync
	ctx := m.ctx
	return func() tea.Msg {
		s.FetchStatus(ctx)
		s.RefreshRequests(ctx)
		return nil
	}
}

func (m *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SignalCancelMsg:
		return m.quit(ui.NewUserCancelledError())

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case statusMsg:
		status := msg.status
		m.status = &status

	case phaseMsg:
		m.phase = msg.phase

	case analyzingMsg:
		m.analyzing = msg.busy
		if msg.busy {
			m.spinner = ui.NewSpinner("Analyzing...")
			return m, m.spinner.Init()
		}
		m.spinner = nil

	case reportsMsg:
		m.reports = msg.reports
		m.activeReport = 0
		m.reportScroll = 0
		m.loaded = map[string]*api.Report{}
		m.missing = map[string]bool{}

	case reportMsg:
		m.loaded[msg.report.Network] = msg.report
		delete(m.missing, msg.report.Network)

	case reportMissingMsg:
		m.missing[msg.network] = true

	case requestsMsg:
		m.requests = msg.requests
		if m.selectedRequest >= len(m.requests) {
			m.selectedRequest = max(0, len(m.requests)-1)
		}

	case logAppendMsg:
		m.logs = append(m.logs, msg.entry)
		m.followLog()

	case logReplaceMsg:
		m.logs = msg.entries
		m.followLog()

	case errorMsg:
		m.errMsg = msg.message
		m.notice = ""

	case noticeMsg:
		m.notice = msg.message
		m.errMsg = ""

	case commandDoneMsg:
		if m.busy == msg.name {
			m.busy = ""
		}
		// Rejections from the server already reached the sink
		if jobsync.IsValidationError(msg.err) {
			m.errMsg = msg.err.Error()
			m.notice = ""
		}

	default:
		if m.spinner != nil {
			_, cmd := m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *DashboardView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit(ui.NewUserCancelledError())
	case "q":
		return m.quit(nil)

	case "s":
		if m.busy != "" || !m.phase.CanStart() {
			return m, nil
		}
		job := m.conf.Job
		return m.run("start", func(ctx context.Context) error {
			return m.conf.Dispatcher.Start(ctx, job)
		})

	case "x":
		if m.busy != "" || !m.phase.CanStop() {
			return m, nil
		}
		return m.run("stop", m.conf.Dispatcher.Stop)

	case "a":
		if m.busy != "" || m.analyzing {
			return m, nil
		}
		request := m.analysisRequest()
		networks := m.conf.AnalyzeNetworks
		return m.run("analyze", func(ctx context.Context) error {
			return m.conf.Dispatcher.AnalyzeLLM(ctx, request, networks)
		})

	case "r":
		s, ctx := m.conf.Sync, m.ctx
		return m, func() tea.Msg {
			s.RefreshRequests(ctx)
			return nil
		}

	case "]":
		if n := len(m.requests); n > 0 {
			m.selectedRequest = (m.selectedRequest + 1) % n
		}
	case "[":
		if n := len(m.requests); n > 0 {
			m.selectedRequest = (m.selectedRequest - 1 + n) % n
		}

	case "tab":
		return m.selectReport(1)
	case "shift+tab":
		return m.selectReport(-1)
	case "f":
		return m.toggleReportFormat()

	case "down":
		m.reportScroll++
	case "up":
		m.reportScroll = max(0, m.reportScroll-1)

	case "j":
		m.scrollLog(1)
	case "k":
		m.scrollLog(-1)
	case "J":
		m.scrollLog(len(m.logs))
	case "K":
		m.scrollLog(-len(m.logs))
	case "ctrl+d":
		m.scrollLog(10)
	case "ctrl+u":
		m.scrollLog(-10)
	}

	return m, nil
}

func (m *DashboardView) quit(err *ui.UIError) (tea.Model, tea.Cmd) {
	m.conf.Sync.Shutdown()
	m.err = err
	return m, tea.Quit
}

// run executes a job command off the render loop.
func (m *DashboardView) run(name string, fn func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = name
	ctx := m.ctx
	return m, func() tea.Msg {
		return commandDoneMsg{name: name, err: fn(ctx)}
	}
}

// analysisRequest is the selected request, or the configured query when the
// server has no requests yet.
func (m *DashboardView) analysisRequest() string {
	if len(m.requests) > 0 {
		return m.requests[m.selectedRequest]
	}
	return m.conf.Job.Query
}

func (m *DashboardView) selectReport(delta int) (tea.Model, tea.Cmd) {
	n := len(m.reports)
	if n == 0 {
		return m, nil
	}
	m.activeReport = (m.activeReport + delta + n) % n
	m.reportScroll = 0

	r := m.reports[m.activeReport]
	format := m.reportFormat
	if !hasFormat(r, format) {
		format = api.ReportFormat(r.Formats()[0])
	}
	if loaded, ok := m.loaded[r.Network]; ok && loaded.Format == format {
		return m, nil
	}
	return m, m.loadReport(r.Network, format)
}

func (m *DashboardView) toggleReportFormat() (tea.Model, tea.Cmd) {
	if len(m.reports) == 0 {
		return m, nil
	}
	next := api.ReportFormatJSON
	if m.reportFormat == api.ReportFormatJSON {
		next = api.ReportFormatText
	}
	r := m.reports[m.activeReport]
	if !hasFormat(r, next) {
		return m, nil
	}
	m.reportFormat = next
	m.reportScroll = 0
	return m, m.loadReport(r.Network, next)
}

func (m *DashboardView) loadReport(network string, format api.ReportFormat) tea.Cmd {
	s, ctx := m.conf.Sync, m.ctx
	return func() tea.Msg {
		s.LoadReport(ctx, network, format)
		return nil
	}
}

func hasFormat(r api.ReportDescriptor, format api.ReportFormat) bool {
	for _, f := range r.Formats() {
		if api.ReportFormat(f) == format {
			return true
		}
	}
	return false
}

func (m *DashboardView) scrollLog(delta int) {
	maxOffset := max(0, len(m.logs)-ui.MAX_LOGS_IN_VIEWER)
	m.logScroll = min(maxOffset, max(0, m.logScroll+delta))
	m.anchorBottom = m.logScroll >= maxOffset
}

// followLog keeps the newest entries visible while anchored to the bottom.
func (m *DashboardView) followLog() {
	maxOffset := max(0, len(m.logs)-ui.MAX_LOGS_IN_VIEWER)
	if m.anchorBottom {
		m.logScroll = maxOffset
	}
	m.logScroll = min(m.logScroll, maxOffset)
}

func (m *DashboardView) View() string {
	var b strings.Builder

	b.WriteString(ui.TitleStyle.Render("Social Data Harvester"))
	b.WriteString("\n\n")
	b.WriteString(m.box("Job", m.renderJob()))
	b.WriteString("\n")
	if len(m.reports) > 0 {
		b.WriteString(m.box("Reports", m.renderReports()))
		b.WriteString("\n")
	}
	b.WriteString(m.box("Log", m.renderLog()))
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(ui.ErrorStyle.Render("✗ " + m.errMsg))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString(ui.NoticeStyle.Render("✓ " + m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	b.WriteString("\n")
	return b.String()
}

func (m *DashboardView) box(title, content string) string {
	style := ui.BoxStyle
	if m.width > 4 {
		style = style.Width(m.width - 2)
	}
	return ui.BoldStyle.Render(title) + "\n" + style.Render(content)
}

func (m *DashboardView) renderJob() string {
	var lines []string

	status := "Waiting for status..."
	if m.status != nil {
		status = ui.StatusLine(*m.status)
	}
	lines = append(lines, "Status:   "+status)
	lines = append(lines, "Controls: "+ui.ColorizePhase(m.phase))

	if m.analyzing && m.spinner != nil {
		lines = append(lines, "Analysis: "+m.spinner.View())
	}

	job := m.conf.Job
	lines = append(lines, fmt.Sprintf("Query:    %q, max %d posts on %s", job.Query, job.MaxPosts, strings.Join(job.Networks, ", ")))

	request := ui.PendingStyle.Render("(none yet)")
	if len(m.requests) > 0 {
		request = fmt.Sprintf("%s (%d/%d)", m.requests[m.selectedRequest], m.selectedRequest+1, len(m.requests))
	}
	lines = append(lines, "Request:  "+request)

	return strings.Join(lines, "\n")
}

func (m *DashboardView) renderReports() string {
	tabs := make([]string, 0, len(m.reports))
	for i, r := range m.reports {
		if i == m.activeReport {
			tabs = append(tabs, ui.ActiveTabStyle.Render(r.Network))
		} else {
			tabs = append(tabs, ui.InactiveTabStyle.Render(r.Network))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	active := m.reports[m.activeReport]
	var body string
	switch report, ok := m.loaded[active.Network]; {
	case m.missing[active.Network]:
		body = ui.PendingStyle.Render("No report available for " + active.Network)
	case !ok:
		body = ui.PendingStyle.Render("Loading report...")
	default:
		lines := strings.Split(strings.TrimRight(report.Content, "\n"), "\n")
		start := min(m.reportScroll, max(0, len(lines)-1))
		end := min(len(lines), start+ui.MAX_REPORT_LINES)
		body = strings.Join(lines[start:end], "\n")
		if report.Request != "" {
			body = ui.PendingStyle.Render("Request: "+report.Request+" ("+string(report.Format)+")") + "\n" + body
		}
	}

	return header + "\n" + body
}

func (m *DashboardView) renderLog() string {
	if len(m.logs) == 0 {
		return ui.PendingStyle.Render("No log entries yet")
	}

	end := min(len(m.logs), m.logScroll+ui.MAX_LOGS_IN_VIEWER)
	lines := make([]string, 0, end-m.logScroll)
	for _, e := range m.logs[m.logScroll:end] {
		lines = append(lines, ui.FormatLogEntry(e))
	}

	out := strings.Join(lines, "\n")
	if len(m.logs) > ui.MAX_LOGS_IN_VIEWER {
		out += "\n" + ui.PendingStyle.Render(fmt.Sprintf("lines %d-%d of %d", m.logScroll+1, end, len(m.logs)))
	}
	return out
}

func (m *DashboardView) renderHelp() string {
	var keys []string
	if m.busy == "" && m.phase.CanStart() {
		keys = append(keys, "s: start")
	}
	if m.busy == "" && m.phase.CanStop() {
		keys = append(keys, "x: stop")
	}
	if m.busy == "" && !m.analyzing {
		keys = append(keys, "a: analyze")
	}
	keys = append(keys, "[/]: request", "r: refresh")
	if len(m.reports) > 0 {
		keys = append(keys, "tab: report", "f: format", "↑/↓: scroll report")
	}
	keys = append(keys, "j/k: scroll log", "q: quit")
	return ui.HelpStyle.Render(strings.Join(keys, " • "))
}

package commands

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/socialharvester/harvester/internal/api"
	apimock "github.com/socialharvester/harvester/internal/api/mock"
	"github.com/socialharvester/harvester/internal/jobsync"
	"github.com/socialharvester/harvester/internal/ui"
	uitesting "github.com/socialharvester/harvester/internal/ui/testing"
	"github.com/socialharvester/harvester/pkg/config"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

var testJob = api.StartRequest{Query: "coffee", MaxPosts: 10, Networks: []string{"Reddit"}}

// newTestDashboard wires a dashboard to a mocked backend. Pollers use long
// intervals so only explicit fetches reach the mock.
func newTestDashboard(t *testing.T, client *apimock.MockClient, job api.StartRequest) *DashboardView {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	sink := NewTeaSink()
	sync := jobsync.NewSynchronizer(client, sink, &config.Config{
		StatusInterval: time.Hour,
		ReportInterval: time.Hour,
	})
	t.Cleanup(func() {
		sync.Shutdown()
		cancel()
	})

	return NewDashboardView(ctx, DashboardConfig{
		DisplayConfig: ui.DisplayConfig{IsInteractive: true},
		Sync:          sync,
		Dispatcher:    jobsync.NewDispatcher(client, sync, sink),
		Job:           job,
	})
}

func idleBackend(t *testing.T) *apimock.MockClient {
	return backendWithStatus(t, api.JobStatus{})
}

func backendWithStatus(t *testing.T, status api.JobStatus) *apimock.MockClient {
	client := apimock.NewMockClient(t)
	client.On("GetStatus", mock.Anything).Return(&status, nil).Maybe()
	client.On("ListRequests", mock.Anything).Return([]string{}, nil).Maybe()
	return client
}

func TestDashboard_StatusAndControls(t *testing.T) {
	client := idleBackend(t)

	uitesting.NewTestHarness(t, newTestDashboard(t, client, testJob)).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "initial",
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Social Data Harvester")
				uitesting.AssertContains(t, view, "Waiting for status...")
				uitesting.AssertContains(t, view, "s: start")
				uitesting.AssertNotContains(t, view, "x: stop")
				uitesting.AssertContains(t, view, `"coffee", max 10 posts on Reddit`)
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "running_status",
			Msg:  statusMsg{api.JobStatus{Running: true, Networks: []string{"Reddit"}}},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Scraping active (Reddit)")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "running_phase",
			Msg:  phaseMsg{jobsync.PhaseRunning},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Controls: Running")
				uitesting.AssertContains(t, view, "x: stop")
				uitesting.AssertNotContains(t, view, "s: start")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "start_ignored_while_running",
			Msg:  key("s"),
			ModelAssert: func(t *testing.T, m *DashboardView) {
				assert.Empty(t, m.busy)
			},
		}).
		Run(t)

	client.AssertNotCalled(t, "StartScrape", mock.Anything, mock.Anything)
}

func TestDashboard_StartCommand(t *testing.T) {
	client := backendWithStatus(t, api.JobStatus{Running: true})
	client.On("StartScrape", mock.Anything, testJob).
		Return(&api.StartResponse{Status: "started", Networks: []string{"Reddit"}}, nil).Once()

	uitesting.NewTestHarness(t, newTestDashboard(t, client, testJob)).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "press_start",
			Msg:  key("s"),
		}).
		Expect(uitesting.TestStep[*DashboardView]{
			Name:            "start_returned",
			ExpectedMsgType: commandDoneMsg{},
			MessageAssert: func(t *testing.T, msg tea.Msg) {
				assert.NoError(t, msg.(commandDoneMsg).err)
			},
			ModelAssert: func(t *testing.T, m *DashboardView) {
				assert.Empty(t, m.busy)
				assert.True(t, m.conf.Sync.StatusPolling())
			},
		}).
		Run(t)
}

func TestDashboard_StartValidationShownLocally(t *testing.T) {
	client := idleBackend(t)

	uitesting.NewTestHarness(t, newTestDashboard(t, client, api.StartRequest{MaxPosts: 10, Networks: []string{"Reddit"}})).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "press_start",
			Msg:  key("s"),
		}).
		Expect(uitesting.TestStep[*DashboardView]{
			Name:            "rejected",
			ExpectedMsgType: commandDoneMsg{},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "✗ Enter a search query")
				uitesting.AssertContains(t, view, "s: start")
			},
		}).
		Run(t)

	client.AssertNotCalled(t, "StartScrape", mock.Anything, mock.Anything)
}

func TestDashboard_AnalyzeUsesSelectedRequest(t *testing.T) {
	client := backendWithStatus(t, api.JobStatus{LLMRunning: true})
	client.On("AnalyzeLLM", mock.Anything, mock.MatchedBy(func(r api.AnalyzeRequest) bool {
		return r.Request == "tea" && len(r.Networks) == len(jobsync.LLMNetworks)
	})).Return(&api.AnalyzeResponse{Status: "ok", Message: "Analysis started"}, nil).Once()

	uitesting.NewTestHarness(t, newTestDashboard(t, client, testJob)).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "requests_loaded",
			Msg:  requestsMsg{[]string{"coffee", "tea"}},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "coffee (1/2)")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "previous_wraps",
			Msg:  key("["),
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "tea (2/2)")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "press_analyze",
			Msg:  key("a"),
		}).
		Expect(uitesting.TestStep[*DashboardView]{
			Name:            "analysis_accepted",
			ExpectedMsgType: commandDoneMsg{},
			ModelAssert: func(t *testing.T, m *DashboardView) {
				assert.True(t, m.conf.Sync.Analyzing())
				assert.True(t, m.conf.Sync.ReportPolling())
			},
		}).
		Run(t)
}

func TestDashboard_AnalyzingSpinner(t *testing.T) {
	client := idleBackend(t)

	uitesting.NewTestHarness(t, newTestDashboard(t, client, testJob)).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "busy",
			Msg:  analyzingMsg{busy: true},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Analyzing...")
				uitesting.AssertNotContains(t, view, "a: analyze")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "done",
			Msg:  analyzingMsg{busy: false},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertNotContains(t, view, "Analyzing...")
				uitesting.AssertContains(t, view, "a: analyze")
			},
		}).
		Run(t)
}

func TestDashboard_ReportTabs(t *testing.T) {
	client := idleBackend(t)
	client.On("GetReport", mock.Anything, "Twitter", api.ReportFormatJSON).
		Return(&api.Report{Network: "Twitter", Format: api.ReportFormatJSON, Content: "{}"}, nil).Once()

	reports := []api.ReportDescriptor{
		{Network: "LinkedIn", HasText: true},
		{Network: "Twitter", HasJSON: true},
	}

	uitesting.NewTestHarness(t, newTestDashboard(t, client, testJob)).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "reports_ready",
			Msg:  reportsMsg{reports},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "LinkedIn")
				uitesting.AssertContains(t, view, "Loading report...")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "first_report",
			Msg:  reportMsg{&api.Report{Network: "LinkedIn", Format: api.ReportFormatText, Request: "coffee", Content: "Mostly positive"}},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Mostly positive")
				uitesting.AssertContains(t, view, "Request: coffee (text)")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "next_tab_loads_json",
			Msg:  key("tab"),
			ModelAssert: func(t *testing.T, m *DashboardView) {
				assert.Equal(t, 1, m.activeReport)
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "missing",
			Msg:  reportMissingMsg{"Twitter"},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "No report available for Twitter")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "wraps_to_loaded_tab",
			Msg:  key("tab"),
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Mostly positive")
			},
		}).
		Run(t)
}

func TestDashboard_LogScrolling(t *testing.T) {
	client := idleBackend(t)
	model := newTestDashboard(t, client, testJob)

	entries := make([]api.LogEntry, 25)
	for i := range entries {
		entries[i] = api.LogEntry{Time: "t", Message: fmt.Sprintf("line %02d", i)}
	}

	uitesting.NewTestHarness(t, model).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "empty",
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "No log entries yet")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "replaced",
			Msg:  logReplaceMsg{entries},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "lines 6-25 of 25")
				uitesting.AssertContains(t, view, "line 24")
				uitesting.AssertNotContains(t, view, "line 04")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "scroll_to_top",
			Msg:  key("K"),
			ModelAssert: func(t *testing.T, m *DashboardView) {
				assert.False(t, m.anchorBottom)
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "append_keeps_position",
			Msg:  logAppendMsg{api.LogEntry{Time: "t", Message: "line 25"}},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "lines 1-20 of 26")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "bottom_reanchors",
			Msg:  key("J"),
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "lines 7-26 of 26")
			},
			ModelAssert: func(t *testing.T, m *DashboardView) {
				assert.True(t, m.anchorBottom)
			},
		}).
		Run(t)
}

func TestDashboard_Messages(t *testing.T) {
	client := idleBackend(t)

	uitesting.NewTestHarness(t, newTestDashboard(t, client, testJob)).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "error",
			Msg:  errorMsg{"Error fetching status: boom"},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "✗ Error fetching status: boom")
			},
		}).
		Step(uitesting.TestStep[*DashboardView]{
			Name: "notice_replaces_error",
			Msg:  noticeMsg{"Scraping started: Reddit"},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "✓ Scraping started: Reddit")
				uitesting.AssertNotContains(t, view, "boom")
			},
		}).
		Run(t)
}

func TestDashboard_Quit(t *testing.T) {
	t.Run("q quits cleanly", func(t *testing.T) {
		m := newTestDashboard(t, idleBackend(t), testJob)
		_, cmd := m.Update(key("q"))

		assert.NotNil(t, cmd)
		assert.NoError(t, m.Error())
		assert.False(t, m.conf.Sync.StatusPolling())
	})

	t.Run("ctrl+c is a silent cancellation", func(t *testing.T) {
		m := newTestDashboard(t, idleBackend(t), testJob)
		m.Update(key("ctrl+c"))

		var uiErr *ui.UIError
		assert.ErrorAs(t, m.Error(), &uiErr)
		assert.True(t, uiErr.SilentExit)
	})

	t.Run("signal", func(t *testing.T) {
		m := newTestDashboard(t, idleBackend(t), testJob)
		m.Update(ui.SignalCancelMsg{})

		assert.Error(t, m.Error())
	})
}

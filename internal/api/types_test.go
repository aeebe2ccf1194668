package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse_Message(t *testing.T) {
	tcs := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "string detail",
			body:     `{"detail": "Scraping already in progress"}`,
			expected: "Scraping already in progress",
		},
		{
			name:     "validation problem list",
			body:     `{"detail": [{"loc": ["body", "max_posts"], "msg": "field required"}, {"loc": [], "msg": "bad"}]}`,
			expected: "max_posts: field required; bad",
		},
		{
			name:     "missing detail",
			body:     `{"error": "boom"}`,
			expected: "",
		},
		{
			name:     "unexpected detail shape",
			body:     `{"detail": {"code": 7}}`,
			expected: `{"code": 7}`,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(tc.body), &resp))
			assert.Equal(t, tc.expected, resp.Message())
		})
	}
}

func TestJobStatus_Decode(t *testing.T) {
	var status JobStatus
	err := json.Unmarshal([]byte(`{
		"running": true,
		"llm_running": false,
		"networks": ["LinkedIn"],
		"log": [{"time": "10:00:01", "message": "Scraping LinkedIn"}]
	}`), &status)

	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.False(t, status.LLMRunning)
	assert.Equal(t, []string{"LinkedIn"}, status.Networks)
	assert.Equal(t, []LogEntry{{Time: "10:00:01", Message: "Scraping LinkedIn"}}, status.Log)
}

func TestLogEntry_String(t *testing.T) {
	assert.Equal(t, "[10:00:01] hello", LogEntry{Time: "10:00:01", Message: "hello"}.String())
	assert.Equal(t, "hello", LogEntry{Message: "hello"}.String())
}

func TestActionableReports(t *testing.T) {
	reports := []ReportDescriptor{
		{Network: "LinkedIn", HasText: true},
		{Network: "Instagram"},
		{Network: "Twitter", HasJSON: true},
	}

	actionable := ActionableReports(reports)

	require.Len(t, actionable, 2)
	assert.Equal(t, "LinkedIn", actionable[0].Network)
	assert.Equal(t, "Twitter", actionable[1].Network)
	assert.Nil(t, ActionableReports([]ReportDescriptor{{Network: "Facebook"}}))
}

func TestReportDescriptor_Formats(t *testing.T) {
	assert.Equal(t, []string{"text", "json"}, ReportDescriptor{HasText: true, HasJSON: true}.Formats())
	assert.Equal(t, []string{"json"}, ReportDescriptor{HasJSON: true}.Formats())
	assert.Empty(t, ReportDescriptor{}.Formats())
}

func TestParseFormats(t *testing.T) {
	f, err := ParseReportFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, ReportFormatJSON, f)

	_, err = ParseReportFormat("pdf")
	assert.ErrorContains(t, err, "invalid report format")

	r, err := ParseResultsFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, ResultsFormatCSV, r)

	_, err = ParseResultsFormat("xlsx")
	assert.ErrorContains(t, err, "invalid results format")
}

func TestError(t *testing.T) {
	withDetail := &Error{StatusCode: 409, Method: "POST", Path: "/api/scrape/start", Detail: "Scraping already in progress"}
	assert.Equal(t, "API error (409): Scraping already in progress", withDetail.Error())

	bare := &Error{StatusCode: 502, Method: "GET", Path: "/api/scrape/status"}
	assert.Equal(t, "API error (502): GET /api/scrape/status", bare.Error())

	assert.True(t, IsNotFound(&Error{StatusCode: 404}))
	assert.False(t, IsNotFound(bare))
	assert.True(t, IsUnauthorized(&Error{StatusCode: 403}))

	assert.Equal(t, "Scraping already in progress", DetailOr(withDetail, "fallback"))
	assert.Equal(t, "fallback", DetailOr(bare, "fallback"))
}

package api_test

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/api/apitest"
)

func newTestClient(t *testing.T) (api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	client, err := api.NewClient(srv.Config())
	require.NoError(t, err)
	return client, srv
}

func TestClient_GetStatus(t *testing.T) {
	client, srv := newTestClient(t)
	srv.SetStatuses(api.JobStatus{
		Running:  true,
		Networks: []string{"LinkedIn"},
		Log:      []api.LogEntry{{Time: "10:00", Message: "started"}},
	})

	status, err := client.GetStatus(context.Background())

	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, []string{"LinkedIn"}, status.Networks)
	require.Len(t, status.Log, 1)
	assert.Equal(t, "started", status.Log[0].Message)
}

func TestClient_StartScrape(t *testing.T) {
	t.Run("sends the request body", func(t *testing.T) {
		client, srv := newTestClient(t)

		resp, err := client.StartScrape(context.Background(), api.StartRequest{
			Query:    "elecciones",
			MaxPosts: 50,
			Networks: []string{"LinkedIn", "Reddit"},
		})

		require.NoError(t, err)
		assert.Equal(t, "started", resp.Status)
		require.Len(t, srv.Starts(), 1)
		assert.Equal(t, "elecciones", srv.Starts()[0].Query)
		assert.Equal(t, 50, srv.Starts()[0].MaxPosts)
	})

	t.Run("surfaces the server detail and is not retried", func(t *testing.T) {
		client, srv := newTestClient(t)
		srv.Fail("/api/scrape/start", http.StatusConflict, "Scraping already in progress")

		_, err := client.StartScrape(context.Background(), api.StartRequest{Query: "q", MaxPosts: 1, Networks: []string{"LinkedIn"}})

		require.Error(t, err)
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		assert.Equal(t, "Scraping already in progress", apiErr.Detail)
		assert.Equal(t, 1, srv.Hits("/api/scrape/start"))
	})

	t.Run("flattens validation problem lists", func(t *testing.T) {
		client, srv := newTestClient(t)
		srv.Fail("/api/scrape/start", http.StatusUnprocessableEntity, []map[string]any{
			{"loc": []string{"body", "query"}, "msg": "field required"},
		})

		_, err := client.StartScrape(context.Background(), api.StartRequest{Query: "q", MaxPosts: 1, Networks: []string{"LinkedIn"}})

		assert.Equal(t, "query: field required", api.DetailOr(err, ""))
	})
}

func TestClient_ErrorsAreNotRetried(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Fail("/api/scrape/status", http.StatusInternalServerError, "boom")

	_, err := client.GetStatus(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, srv.Hits("/api/scrape/status"))
}

// closingListener accepts connections and closes them without answering.
func closingListener(t *testing.T) (string, *atomic.Int32) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	accepted := &atomic.Int32{}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted.Add(1)
			_ = conn.Close()
		}
	}()

	return "http://" + ln.Addr().String(), accepted
}

func TestClient_TransportErrorsAreRetriedForReads(t *testing.T) {
	cfg := apitest.NewServer(t).Config()
	url, accepted := closingListener(t)
	cfg.APIURL = url

	client, err := api.NewClient(cfg)
	require.NoError(t, err)

	_, err = client.ListRequests(context.Background())
	assert.ErrorContains(t, err, "request failed")
	assert.Equal(t, int32(2), accepted.Load())
}

func TestClient_PolledReadsAreSingleAttempt(t *testing.T) {
	tests := []struct {
		name string
		call func(api.Client) error
	}{
		{"status", func(c api.Client) error {
			_, err := c.GetStatus(context.Background())
			return err
		}},
		{"report list", func(c api.Client) error {
			_, err := c.ListReports(context.Background())
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := apitest.NewServer(t).Config()
			url, accepted := closingListener(t)
			cfg.APIURL = url

			client, err := api.NewClient(cfg)
			require.NoError(t, err)

			assert.ErrorContains(t, tt.call(client), "request failed")
			assert.Equal(t, int32(1), accepted.Load())
		})
	}
}

func TestClient_StopAndAnalyze(t *testing.T) {
	client, srv := newTestClient(t)

	stop, err := client.StopScrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stopped", stop.Status)

	analysis, err := client.AnalyzeLLM(context.Background(), api.AnalyzeRequest{Request: "req-1", Networks: []string{"Twitter"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Twitter"}, analysis.Networks)
	require.Len(t, srv.Analyses(), 1)
	assert.Equal(t, "req-1", srv.Analyses()[0].Request)
}

func TestClient_Reports(t *testing.T) {
	client, srv := newTestClient(t)
	srv.SetReportLists([]api.ReportDescriptor{{Network: "LinkedIn", HasText: true, HasJSON: true}})
	srv.SetReport("LinkedIn", api.ReportFormatText, "mostly positive")
	srv.SetReport("LinkedIn", api.ReportFormatJSON, `{"request":"req-9","positive":12}`)

	reports, err := client.ListReports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []api.ReportDescriptor{{Network: "LinkedIn", HasText: true, HasJSON: true}}, reports)

	text, err := client.GetReport(context.Background(), "LinkedIn", api.ReportFormatText)
	require.NoError(t, err)
	assert.Equal(t, "mostly positive", text.Content)
	assert.Equal(t, "req-linkedin", text.Request)

	js, err := client.GetReport(context.Background(), "LinkedIn", api.ReportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "req-9", js.Request)
	assert.Equal(t, "{\n  \"request\": \"req-9\",\n  \"positive\": 12\n}", js.Content)

	_, err = client.GetReport(context.Background(), "Facebook", api.ReportFormatText)
	assert.True(t, api.IsNotFound(err))
}

func TestClient_RequestsAndResults(t *testing.T) {
	client, srv := newTestClient(t)
	srv.SetRequests("req-1", "req-2")
	srv.SetResults(api.ResultsFormatCSV, "red,texto\nLinkedIn,hola\n")

	requests, err := client.ListRequests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"req-1", "req-2"}, requests)

	var buf bytes.Buffer
	n, err := client.DownloadResults(context.Background(), "req-1", api.ResultsFormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "red,texto\nLinkedIn,hola\n", buf.String())

	_, err = client.DownloadResults(context.Background(), "", api.ResultsFormatJSON, &buf)
	assert.True(t, api.IsNotFound(err))
}

func TestClient_Charts(t *testing.T) {
	client, srv := newTestClient(t)
	image := api.ChartImage{Folder: "req-1", File: "sentiment.png", Title: "Sentiment"}
	srv.SetCharts(api.ChartsResponse{Images: []api.ChartImage{image}, Message: "1 chart"},
		map[string][]byte{"req-1/sentiment.png": []byte("PNGDATA")})

	charts, err := client.GenerateCharts(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "1 chart", charts.Message)
	require.Len(t, charts.Images, 1)

	var buf bytes.Buffer
	_, err = client.DownloadChart(context.Background(), charts.Images[0], &buf)
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", buf.String())
}

func TestClient_CommentsExplained(t *testing.T) {
	client, srv := newTestClient(t)
	srv.SetComments(api.CommentsExplained{
		Request: "req-1",
		Publications: []api.Publication{
			{Network: "LinkedIn", Text: "post", Sentiment: "positivo", Comments: []api.Comment{{Text: "nice", Sentiment: "positivo"}}},
			{Network: "Twitter", Text: "tweet", Sentiment: "negativo"},
		},
	})

	all, err := client.GetCommentsExplained(context.Background(), "req-1", "")
	require.NoError(t, err)
	assert.Len(t, all.Publications, 2)

	filtered, err := client.GetCommentsExplained(context.Background(), "req-1", "twitter")
	require.NoError(t, err)
	require.Len(t, filtered.Publications, 1)
	assert.Equal(t, "tweet", filtered.Publications[0].Text)
}

func TestClient_ServerInfo(t *testing.T) {
	client, srv := newTestClient(t)
	srv.SetVersion("2.3.1")

	info, err := client.GetServerInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2.3.1", info.Info.Version)
}

func TestNewClient_RejectsExpiredToken(t *testing.T) {
	srv := apitest.NewServer(t)
	cfg := srv.Config()
	// exp: 1000000000 (2001)
	cfg.APIToken = "eyJhbGciOiJIUzI1NiJ9.eyJleHAiOjEwMDAwMDAwMDB9.c2ln"

	_, err := api.NewClient(cfg)

	assert.ErrorContains(t, err, "expired")
}

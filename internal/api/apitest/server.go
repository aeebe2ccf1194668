// Package apitest runs an in-process fake of the harvester backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/pkg/config"
)

// Server is a scripted fake backend. Status and report list responses are
// consumed in order; the last one repeats once the script runs out.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	statuses    []api.JobStatus
	reportLists [][]api.ReportDescriptor
	reports     map[string]map[api.ReportFormat]string
	requests    []string
	results     map[api.ResultsFormat]string
	charts      api.ChartsResponse
	images      map[string][]byte
	comments    api.CommentsExplained
	version     string
	failures    map[string]failure
	hits        map[string]int
	starts      []api.StartRequest
	analyses    []api.AnalyzeRequest

	wsMu    sync.Mutex
	wsConns []*websocket.Conn
	dials   int
}

type failure struct {
	status int
	detail any
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewServer starts a fake backend that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		statuses: []api.JobStatus{{}},
		reports:  map[string]map[api.ReportFormat]string{},
		results:  map[api.ResultsFormat]string{},
		images:   map[string][]byte{},
		version:  "1.0.0",
		failures: map[string]failure{},
		hits:     map[string]int{},
	}

	r := chi.NewRouter()
	r.Use(s.count)

	r.Get("/openapi.json", s.handleOpenAPI)
	r.Route("/api", func(r chi.Router) {
		r.Get("/scrape/status", s.handleStatus)
		r.Post("/scrape/start", s.handleStart)
		r.Post("/scrape/stop", s.handleStop)
		r.Post("/llm/analyze", s.handleAnalyze)
		r.Get("/llm/reports", s.handleReports)
		r.Get("/llm/reports/{network}", s.handleReport)
		r.Get("/requests", s.handleRequests)
		r.Get("/results", s.handleResults)
		r.Post("/charts/generate", s.handleCharts)
		r.Get("/charts/image/{folder}/{file}", s.handleChartImage)
		r.Get("/comments-explained", s.handleComments)
	})
	r.Get("/ws/log", s.handleLogStream)

	s.Server = httptest.NewServer(r)
	t.Cleanup(func() {
		s.DropLogStreams()
		s.Close()
	})

	return s
}

// Config returns a client configuration pointing at the fake backend with
// short intervals and no rate limit.
func (s *Server) Config() *config.Config {
	return &config.Config{
		APIURL:         s.URL,
		LogMode:        config.LogModePush,
		StatusInterval: 20 * time.Millisecond,
		ReportInterval: 20 * time.Millisecond,
		ReconnectDelay: 20 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
	}
}

// SetStatuses scripts the responses of GET /api/scrape/status.
func (s *Server) SetStatuses(statuses ...api.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = statuses
}

// SetReportLists scripts the responses of GET /api/llm/reports.
func (s *Server) SetReportLists(lists ...[]api.ReportDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportLists = lists
}

// SetReport stores one network's report in the given format. For JSON the
// content must be a JSON document.
func (s *Server) SetReport(network string, format api.ReportFormat, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reports[network] == nil {
		s.reports[network] = map[api.ReportFormat]string{}
	}
	s.reports[network][format] = content
}

// SetRequests sets the response of GET /api/requests.
func (s *Server) SetRequests(requests ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = requests
}

// SetResults sets the body served by GET /api/results for a format.
func (s *Server) SetResults(format api.ResultsFormat, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[format] = body
}

// SetCharts sets the response of POST /api/charts/generate and the bytes of each image.
func (s *Server) SetCharts(resp api.ChartsResponse, images map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts = resp
	s.images = images
}

// SetComments sets the response of GET /api/comments-explained.
func (s *Server) SetComments(resp api.CommentsExplained) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = resp
}

// SetVersion sets info.version in /openapi.json.
func (s *Server) SetVersion(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
}

// Fail makes every request to path answer with status and a FastAPI detail body.
// detail may be a string or a list of validation problems.
func (s *Server) Fail(path string, status int, detail any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, detail: detail}
}

// Recover removes a failure installed by Fail.
func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the number of HTTP requests served, excluding websocket upgrades.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for path, n := range s.hits {
		if path != "/ws/log" {
			total += n
		}
	}
	return total
}

// Starts returns the bodies received by POST /api/scrape/start.
func (s *Server) Starts() []api.StartRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.StartRequest(nil), s.starts...)
}

// Analyses returns the bodies received by POST /api/llm/analyze.
func (s *Server) Analyses() []api.AnalyzeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.AnalyzeRequest(nil), s.analyses...)
}

// PushLog sends entries to every connected log stream, one message each.
func (s *Server) PushLog(entries ...api.LogEntry) {
	for _, e := range entries {
		data, _ := json.Marshal(e)
		s.PushRaw(data)
	}
}

// PushRaw sends an arbitrary text message to every connected log stream.
func (s *Server) PushRaw(data []byte) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for _, c := range s.wsConns {
		_ = c.WriteMessage(websocket.TextMessage, data)
	}
}

// DropLogStreams abruptly closes every connected log stream.
func (s *Server) DropLogStreams() {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for _, c := range s.wsConns {
		_ = c.Close()
	}
	s.wsConns = nil
}

// LogStreams returns the number of currently connected log streams.
func (s *Server) LogStreams() int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return len(s.wsConns)
}

// LogDials returns how many log stream connections were accepted in total.
func (s *Server) LogDials() int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return s.dials
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		f, failing := s.failures[r.URL.Path]
		s.mu.Unlock()

		if failing {
			writeJSON(w, f.status, map[string]any{"detail": f.detail})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": detail})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	v := s.version
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"openapi": "3.1.0",
		"info":    map[string]string{"title": "Social Data Harvester", "version": v},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	status := s.statuses[0]
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req api.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	s.starts = append(s.starts, req)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.StartResponse{Status: "started", Networks: req.Networks})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.StopResponse{Status: "stopped"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	s.analyses = append(s.analyses, req)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.AnalyzeResponse{
		Status:   "started",
		Message:  "analysis running in the background",
		Networks: req.Networks,
	})
}

func (s *Server) handleReports(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	var list []api.ReportDescriptor
	if len(s.reportLists) > 0 {
		list = s.reportLists[0]
		if len(s.reportLists) > 1 {
			s.reportLists = s.reportLists[1:]
		}
	}
	s.mu.Unlock()

	if list == nil {
		list = []api.ReportDescriptor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	network := chi.URLParam(r, "network")
	format := api.ReportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = api.ReportFormatText
	}

	s.mu.Lock()
	content, ok := s.reports[network][format]
	s.mu.Unlock()

	if !ok {
		notFound(w, "Report not found")
		return
	}

	if format == api.ReportFormatJSON {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(content))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content, "request": "req-" + strings.ToLower(network)})
}

func (s *Server) handleRequests(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	requests := append([]string{}, s.requests...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	format := api.ResultsFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = api.ResultsFormatCSV
	}

	s.mu.Lock()
	body, ok := s.results[format]
	s.mu.Unlock()

	if !ok {
		notFound(w, "No results file or file is empty")
		return
	}

	if format == api.ResultsFormatCSV {
		w.Header().Set("Content-Type", "text/csv")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleCharts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := s.charts
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "folder") + "/" + chi.URLParam(r, "file")

	s.mu.Lock()
	data, ok := s.images[key]
	s.mu.Unlock()

	if !ok {
		notFound(w, "Image not found")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := s.comments
	s.mu.Unlock()

	if network := r.URL.Query().Get("network"); network != "" {
		var filtered []api.Publication
		for _, p := range resp.Publications {
			if strings.EqualFold(p.Network, network) {
				filtered = append(filtered, p)
			}
		}
		resp.Publications = filtered
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	s.wsConns = append(s.wsConns, c)
	s.dials++
	s.wsMu.Unlock()

	// Drain until the client goes away so close frames and pings are processed.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	s.wsMu.Lock()
	for i, existing := range s.wsConns {
		if existing == c {
			s.wsConns = append(s.wsConns[:i], s.wsConns[i+1:]...)
			break
		}
	}
	s.wsMu.Unlock()
	_ = c.Close()
}

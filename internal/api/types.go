package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JobStatus is the authoritative state of the scrape and analysis jobs.
type JobStatus struct {
	Running    bool       `json:"running"`
	LLMRunning bool       `json:"llm_running"`
	Networks   []string   `json:"networks,omitempty"`
	Log        []LogEntry `json:"log,omitempty"` // Only populated by servers that deliver logs through polling
}

// LogEntry is a single job log line. Time is an opaque display label.
type LogEntry struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

// String formats the entry the way the dashboard shows it.
func (e LogEntry) String() string {
	if e.Time == "" {
		return e.Message
	}
	return fmt.Sprintf("[%s] %s", e.Time, e.Message)
}

// StartRequest is the body of POST /api/scrape/start
type StartRequest struct {
	Query    string   `json:"query"`
	MaxPosts int      `json:"max_posts"`
	Networks []string `json:"networks"`
}

// StartResponse is returned when the server accepts a scrape job.
type StartResponse struct {
	Status   string   `json:"status"`
	Networks []string `json:"networks"`
}

// StopResponse is returned by POST /api/scrape/stop
type StopResponse struct {
	Status string `json:"status"`
}

// AnalyzeRequest is the body of POST /api/llm/analyze
type AnalyzeRequest struct {
	Request  string   `json:"request"`
	Networks []string `json:"networks"`
}

// AnalyzeResponse is returned when the server accepts an analysis job.
type AnalyzeResponse struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Networks []string `json:"networks"`
}

// ReportDescriptor describes which report formats exist for a network.
type ReportDescriptor struct {
	Network string `json:"network"`
	HasText bool   `json:"has_text"`
	HasJSON bool   `json:"has_json"`
}

// Actionable reports whether the descriptor has at least one renderable format.
func (r ReportDescriptor) Actionable() bool {
	return r.HasText || r.HasJSON
}

// Formats lists the available formats in display order.
func (r ReportDescriptor) Formats() []string {
	var formats []string
	if r.HasText {
		formats = append(formats, string(ReportFormatText))
	}
	if r.HasJSON {
		formats = append(formats, string(ReportFormatJSON))
	}
	return formats
}

// ActionableReports filters out descriptors with no renderable format.
func ActionableReports(reports []ReportDescriptor) []ReportDescriptor {
	var out []ReportDescriptor
	for _, r := range reports {
		if r.Actionable() {
			out = append(out, r)
		}
	}
	return out
}

type reportsResponse struct {
	Reports []ReportDescriptor `json:"reports"`
}

// ReportFormat selects the representation of a report.
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// ParseReportFormat validates a report format name.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(s)) {
	case ReportFormatText:
		return ReportFormatText, nil
	case ReportFormatJSON:
		return ReportFormatJSON, nil
	default:
		return "", fmt.Errorf("invalid report format %q (expected text or json)", s)
	}
}

// Report is the content of one network's report.
type Report struct {
	Network string
	Format  ReportFormat
	Request string
	Content string
}

type textReportResponse struct {
	Content string `json:"content"`
	Request string `json:"request"`
}

type requestsResponse struct {
	Requests []string `json:"requests"`
}

// ResultsFormat selects the representation of a results export.
type ResultsFormat string

const (
	ResultsFormatCSV  ResultsFormat = "csv"
	ResultsFormatJSON ResultsFormat = "json"
)

// ParseResultsFormat validates a results format name.
func ParseResultsFormat(s string) (ResultsFormat, error) {
	switch ResultsFormat(strings.ToLower(s)) {
	case ResultsFormatCSV:
		return ResultsFormatCSV, nil
	case ResultsFormatJSON:
		return ResultsFormatJSON, nil
	default:
		return "", fmt.Errorf("invalid results format %q (expected csv or json)", s)
	}
}

// ChartImage identifies a generated chart.
type ChartImage struct {
	Folder string `json:"folder"`
	File   string `json:"file"`
	Title  string `json:"title"`
}

// Path returns the folder/file pair used for matching and downloads.
func (c ChartImage) Path() string {
	return c.Folder + "/" + c.File
}

// ChartsResponse is returned by POST /api/charts/generate
type ChartsResponse struct {
	Images  []ChartImage `json:"images"`
	Message string       `json:"message"`
}

type chartsRequest struct {
	Request *string `json:"request"`
}

// CommentsExplained groups publications and their comments with sentiment labels.
type CommentsExplained struct {
	Request      string        `json:"request"`
	Publications []Publication `json:"publications"`
}

// Publication is one scraped post with its sentiment analysis.
type Publication struct {
	Network     string    `json:"red"`
	PublishedAt string    `json:"fechaPublicacion"`
	Text        string    `json:"post_text"`
	Sentiment   string    `json:"post_sentimiento"`
	Explanation string    `json:"post_explicacion"`
	Comments    []Comment `json:"comments"`
}

// Comment is one comment on a publication with its sentiment analysis.
type Comment struct {
	Text        string `json:"text"`
	Sentiment   string `json:"sentimiento"`
	Explanation string `json:"explicacion"`
}

// ServerInfo is the subset of /openapi.json the client reads.
type ServerInfo struct {
	Info struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	} `json:"info"`
}

// ErrorResponse is the FastAPI error body. Detail is either a string or a list
// of validation problems.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type validationProblem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// Message flattens Detail into a single human readable line.
func (e ErrorResponse) Message() string {
	if len(e.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}

	var problems []validationProblem
	if err := json.Unmarshal(e.Detail, &problems); err == nil {
		msgs := make([]string, 0, len(problems))
		for _, p := range problems {
			if len(p.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", p.Loc[len(p.Loc)-1], p.Msg))
			} else {
				msgs = append(msgs, p.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(e.Detail)
}

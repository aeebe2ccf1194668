package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/socialharvester/harvester/internal/auth"
	"github.com/socialharvester/harvester/pkg/config"
)

const (
	getAttempts  = 2
	retryDelay   = 250 * time.Millisecond
	userAgentCLI = "harvester-cli"
)

// client is the Social Data Harvester API client
type client struct {
	config     *config.Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Client = (*client)(nil)

// NewClient creates a new API client. A configured API token is validated up
// front so an expired token fails before any request is sent.
func NewClient(cfg *config.Config) (Client, error) {
	if cfg.APIToken != "" {
		if err := auth.ValidateToken(cfg.APIToken); err != nil {
			return nil, err
		}
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// request makes an HTTP request to the harvester API. Reads are retried once on
// transport failures; commands are sent exactly once.
func (c *client) request(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	attempts := uint(1)
	if method == http.MethodGet {
		attempts = getAttempts
	}
	return c.send(ctx, method, path, query, body, attempts)
}

// poll makes a single GET attempt. Polled resources are retried by the next
// tick, not inside this one.
func (c *client) poll(ctx context.Context, path string) ([]byte, error) {
	return c.send(ctx, http.MethodGet, path, nil, nil, 1)
}

func (c *client) send(ctx context.Context, method, path string, query url.Values, body any, attempts uint) ([]byte, error) {
	var respBody []byte
	attempt := 0

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			slog.Error("Failed to marshal request body", "error", err, "path", path)
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	reqURL := c.config.APIURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	err := retry.Do(
		func() error {
			attempt++
			requestID := uuid.NewString()

			slog.Debug("API request",
				"method", method,
				"path", path,
				"url", reqURL,
				"requestID", requestID,
				"attempt", attempt,
			)

			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(fmt.Errorf("request cancelled: %w", err))
			}

			var bodyReader io.Reader
			if payload != nil {
				bodyReader = bytes.NewReader(payload)
			}

			req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
			if err != nil {
				slog.Error("Failed to create HTTP request", "error", err, "method", method, "url", reqURL)
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}

			if payload != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			req.Header.Set("User-Agent", userAgentCLI)
			req.Header.Set("X-Request-ID", requestID)
			if c.config.APIToken != "" {
				req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
			}

			startTime := time.Now()
			resp, err := c.httpClient.Do(req)
			duration := time.Since(startTime)

			if err != nil {
				slog.Warn("HTTP request failed",
					"error", err,
					"method", method,
					"path", path,
					"duration", duration,
					"attempt", attempt,
				)
				if ctx.Err() != nil {
					return retry.Unrecoverable(fmt.Errorf("request failed: %w", err))
				}
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close() //nolint:errcheck // Deferred close, error not actionable

			respBody, err = io.ReadAll(resp.Body)
			if err != nil {
				slog.Error("Failed to read response body", "error", err, "statusCode", resp.StatusCode)
				return fmt.Errorf("failed to read response: %w", err)
			}

			slog.Debug("API response",
				"statusCode", resp.StatusCode,
				"responseSize", len(respBody),
				"duration", duration,
				"method", method,
				"path", path,
			)

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}

			apiErr := &Error{StatusCode: resp.StatusCode, Method: method, Path: path}

			var errResp ErrorResponse
			if err := json.Unmarshal(respBody, &errResp); err == nil {
				apiErr.Detail = errResp.Message()
			}

			if apiErr.Detail == "" && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
				apiErr.Detail = "the server rejected the API token. Set one with 'harvester config set api-token <token>'"
			}

			slog.Warn("API error",
				"statusCode", resp.StatusCode,
				"detail", apiErr.Detail,
				"path", path,
				"method", method,
			)
			return retry.Unrecoverable(apiErr)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	return respBody, nil
}

func decode[T any](body []byte, what string) (*T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", what, err)
	}
	return &v, nil
}

// GetStatus fetches the current job status
func (c *client) GetStatus(ctx context.Context) (*JobStatus, error) {
	body, err := c.poll(ctx, "/api/scrape/status")
	if err != nil {
		return nil, err
	}
	return decode[JobStatus](body, "status")
}

// StartScrape asks the server to start a scrape job
func (c *client) StartScrape(ctx context.Context, req StartRequest) (*StartResponse, error) {
	body, err := c.request(ctx, http.MethodPost, "/api/scrape/start", nil, req)
	if err != nil {
		return nil, err
	}
	return decode[StartResponse](body, "start")
}

// StopScrape asks the server to stop the running scrape job
func (c *client) StopScrape(ctx context.Context) (*StopResponse, error) {
	body, err := c.request(ctx, http.MethodPost, "/api/scrape/stop", nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[StopResponse](body, "stop")
}

// AnalyzeLLM starts a sentiment analysis over the results of a request
func (c *client) AnalyzeLLM(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	body, err := c.request(ctx, http.MethodPost, "/api/llm/analyze", nil, req)
	if err != nil {
		return nil, err
	}
	return decode[AnalyzeResponse](body, "analyze")
}

// ListReports returns one descriptor per network that has analysis output
func (c *client) ListReports(ctx context.Context) ([]ReportDescriptor, error) {
	body, err := c.poll(ctx, "/api/llm/reports")
	if err != nil {
		return nil, err
	}
	resp, err := decode[reportsResponse](body, "reports")
	if err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

// GetReport fetches one network's report. JSON reports are returned
// indented; text reports return their content field.
func (c *client) GetReport(ctx context.Context, network string, format ReportFormat) (*Report, error) {
	path := "/api/llm/reports/" + url.PathEscape(network)
	body, err := c.request(ctx, http.MethodGet, path, url.Values{"format": {string(format)}}, nil)
	if err != nil {
		return nil, err
	}

	if format == ReportFormatJSON {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			return nil, fmt.Errorf("failed to parse report response: %w", err)
		}

		// JSON reports may be any document; the request id is read when present
		var meta textReportResponse
		_ = json.Unmarshal(body, &meta)
		return &Report{Network: network, Format: format, Request: meta.Request, Content: pretty.String()}, nil
	}

	meta, err := decode[textReportResponse](body, "report")
	if err != nil {
		return nil, err
	}
	return &Report{Network: network, Format: format, Request: meta.Request, Content: meta.Content}, nil
}

// ListRequests returns the request identifiers that have scraped results
func (c *client) ListRequests(ctx context.Context) ([]string, error) {
	body, err := c.request(ctx, http.MethodGet, "/api/requests", nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := decode[requestsResponse](body, "requests")
	if err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

// DownloadResults writes a results export to w
func (c *client) DownloadResults(ctx context.Context, request string, format ResultsFormat, w io.Writer) (int64, error) {
	query := url.Values{"format": {string(format)}}
	if request != "" {
		query.Set("request", request)
	}

	body, err := c.request(ctx, http.MethodGet, "/api/results", query, nil)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(w, bytes.NewReader(body))
	if err != nil {
		return n, fmt.Errorf("failed to write results: %w", err)
	}
	return n, nil
}

// GenerateCharts renders charts for a request, or for all results when request is empty
func (c *client) GenerateCharts(ctx context.Context, request string) (*ChartsResponse, error) {
	payload := chartsRequest{}
	if request != "" {
		payload.Request = &request
	}

	body, err := c.request(ctx, http.MethodPost, "/api/charts/generate", nil, payload)
	if err != nil {
		return nil, err
	}
	return decode[ChartsResponse](body, "charts")
}

// DownloadChart writes a chart image to w
func (c *client) DownloadChart(ctx context.Context, image ChartImage, w io.Writer) (int64, error) {
	path := "/api/charts/image/" + url.PathEscape(image.Folder) + "/" + url.PathEscape(image.File)
	body, err := c.request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(w, bytes.NewReader(body))
	if err != nil {
		return n, fmt.Errorf("failed to write chart: %w", err)
	}
	return n, nil
}

// GetCommentsExplained returns publications with their per-comment sentiment
func (c *client) GetCommentsExplained(ctx context.Context, request, network string) (*CommentsExplained, error) {
	query := url.Values{"request": {request}}
	if network != "" {
		query.Set("network", network)
	}

	body, err := c.request(ctx, http.MethodGet, "/api/comments-explained", query, nil)
	if err != nil {
		return nil, err
	}
	return decode[CommentsExplained](body, "comments")
}

// GetServerInfo reads the server's OpenAPI document header
func (c *client) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	body, err := c.request(ctx, http.MethodGet, "/openapi.json", nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[ServerInfo](body, "server info")
}

package api

import (
	"context"
	"io"
)

type Client interface {
	// Job control
	GetStatus(ctx context.Context) (*JobStatus, error)
	StartScrape(ctx context.Context, req StartRequest) (*StartResponse, error)
	StopScrape(ctx context.Context) (*StopResponse, error)
	AnalyzeLLM(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)

	// Reports
	ListReports(ctx context.Context) ([]ReportDescriptor, error)
	GetReport(ctx context.Context, network string, format ReportFormat) (*Report, error)

	// Results and supporting data
	ListRequests(ctx context.Context) ([]string, error)
	DownloadResults(ctx context.Context, request string, format ResultsFormat, w io.Writer) (int64, error)
	GenerateCharts(ctx context.Context, request string) (*ChartsResponse, error)
	DownloadChart(ctx context.Context, image ChartImage, w io.Writer) (int64, error)
	GetCommentsExplained(ctx context.Context, request, network string) (*CommentsExplained, error)

	GetServerInfo(ctx context.Context) (*ServerInfo, error)
}

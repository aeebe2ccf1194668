// Package mock provides a testify mock of api.Client.
//
// Usage in tests:
//
//	mockClient := mock.NewMockClient(t)
//	mockClient.On("GetStatus", testifymock.Anything).Return(&api.JobStatus{Running: true}, nil)
package mock

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/socialharvester/harvester/internal/api"
)

// MockClient is a testify mock of api.Client.
type MockClient struct {
	mock.Mock
}

var _ api.Client = (*MockClient)(nil)

// NewMockClient creates a mock client and registers expectation assertions on cleanup.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func ptr[T any](args mock.Arguments, i int) *T {
	if v := args.Get(i); v != nil {
		return v.(*T)
	}
	return nil
}

func (m *MockClient) GetStatus(ctx context.Context) (*api.JobStatus, error) {
	args := m.Called(ctx)
	return ptr[api.JobStatus](args, 0), args.Error(1)
}

func (m *MockClient) StartScrape(ctx context.Context, req api.StartRequest) (*api.StartResponse, error) {
	args := m.Called(ctx, req)
	return ptr[api.StartResponse](args, 0), args.Error(1)
}

func (m *MockClient) StopScrape(ctx context.Context) (*api.StopResponse, error) {
	args := m.Called(ctx)
	return ptr[api.StopResponse](args, 0), args.Error(1)
}

func (m *MockClient) AnalyzeLLM(ctx context.Context, req api.AnalyzeRequest) (*api.AnalyzeResponse, error) {
	args := m.Called(ctx, req)
	return ptr[api.AnalyzeResponse](args, 0), args.Error(1)
}

func (m *MockClient) ListReports(ctx context.Context) ([]api.ReportDescriptor, error) {
	args := m.Called(ctx)
	reports, _ := args.Get(0).([]api.ReportDescriptor)
	return reports, args.Error(1)
}

func (m *MockClient) GetReport(ctx context.Context, network string, format api.ReportFormat) (*api.Report, error) {
	args := m.Called(ctx, network, format)
	return ptr[api.Report](args, 0), args.Error(1)
}

func (m *MockClient) ListRequests(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	requests, _ := args.Get(0).([]string)
	return requests, args.Error(1)
}

func (m *MockClient) DownloadResults(ctx context.Context, request string, format api.ResultsFormat, w io.Writer) (int64, error) {
	args := m.Called(ctx, request, format, w)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *MockClient) GenerateCharts(ctx context.Context, request string) (*api.ChartsResponse, error) {
	args := m.Called(ctx, request)
	return ptr[api.ChartsResponse](args, 0), args.Error(1)
}

func (m *MockClient) DownloadChart(ctx context.Context, image api.ChartImage, w io.Writer) (int64, error) {
	args := m.Called(ctx, image, w)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *MockClient) GetCommentsExplained(ctx context.Context, request, network string) (*api.CommentsExplained, error) {
	args := m.Called(ctx, request, network)
	return ptr[api.CommentsExplained](args, 0), args.Error(1)
}

func (m *MockClient) GetServerInfo(ctx context.Context) (*api.ServerInfo, error) {
	args := m.Called(ctx)
	return ptr[api.ServerInfo](args, 0), args.Error(1)
}

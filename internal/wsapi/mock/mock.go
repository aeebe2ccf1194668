// Package mock provides testify mocks of wsapi.Dialer and wsapi.Conn.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/wsapi"
)

// MockDialer is a testify mock of wsapi.Dialer.
type MockDialer struct {
	mock.Mock
}

var _ wsapi.Dialer = (*MockDialer)(nil)

// NewMockDialer creates a mock dialer and registers expectation assertions on cleanup.
func NewMockDialer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockDialer {
	m := &MockDialer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDialer) DialLogs(ctx context.Context) (wsapi.Conn, error) {
	args := m.Called(ctx)
	conn, _ := args.Get(0).(wsapi.Conn)
	return conn, args.Error(1)
}

// MockConn is a testify mock of wsapi.Conn.
type MockConn struct {
	mock.Mock
}

var _ wsapi.Conn = (*MockConn)(nil)

func (m *MockConn) Next() (api.LogEntry, error) {
	args := m.Called()
	entry, _ := args.Get(0).(api.LogEntry)
	return entry, args.Error(1)
}

func (m *MockConn) Close() error {
	return m.Called().Error(0)
}

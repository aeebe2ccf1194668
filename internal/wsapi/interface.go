package wsapi

import (
	"context"

	"github.com/socialharvester/harvester/internal/api"
)

// Dialer opens connections to the job log websocket.
type Dialer interface {
	// DialLogs connects to /ws/log. The returned connection is owned by the
	// caller, which must Close it.
	DialLogs(ctx context.Context) (Conn, error)
}

// Conn is one open log stream connection.
type Conn interface {
	// Next blocks until the next log entry arrives. Malformed messages are
	// skipped. Returns io.EOF when the server closes the connection normally
	// and a non-nil error for any other failure; after an error the
	// connection is unusable.
	Next() (api.LogEntry, error)

	// Close closes the connection. Safe to call more than once and
	// concurrently with Next, which then returns an error.
	Close() error
}

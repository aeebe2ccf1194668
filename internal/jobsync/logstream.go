package jobsync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/socialharvester/harvester/internal/wsapi"
)

// timer is the part of *time.Timer the log stream uses.
type timer interface {
	Stop() bool
}

// LogStream keeps one push connection to the job log open and appends every
// entry it receives to the sink in arrival order. When the connection closes
// exactly one reconnect is scheduled after the reconnect delay; reconnects are
// unbounded while the stream's context is alive.
type LogStream struct {
	dialer    wsapi.Dialer
	sink      Sink
	delay     time.Duration
	afterFunc func(d time.Duration, f func()) timer

	mu      sync.Mutex
	conn    wsapi.Conn
	dialing bool
	pending timer
	closed  bool
}

// NewLogStream creates a stream that is not yet connected.
func NewLogStream(dialer wsapi.Dialer, sink Sink, reconnectDelay time.Duration) *LogStream {
	return &LogStream{
		dialer: dialer,
		sink:   sink,
		delay:  reconnectDelay,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
}

// Run opens the stream and keeps it open until ctx is done.
func (l *LogStream) Run(ctx context.Context) error {
	l.Open(ctx)
	<-ctx.Done()
	l.Close()
	return nil
}

// Open connects unless a connection is already open or being dialed.
func (l *LogStream) Open(ctx context.Context) {
	l.mu.Lock()
	if l.closed || l.conn != nil || l.dialing || ctx.Err() != nil {
		l.mu.Unlock()
		return
	}
	l.dialing = true
	l.mu.Unlock()

	conn, err := l.dialer.DialLogs(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.dialing = false

	if err != nil {
		slog.Warn("Log stream connection failed", "error", err)
		l.scheduleReconnect(ctx)
		return
	}

	if l.closed || ctx.Err() != nil {
		_ = conn.Close()
		return
	}

	l.conn = conn
	go l.read(ctx, conn)
}

// Connected reports whether a connection is currently open.
func (l *LogStream) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn != nil
}

// ReconnectPending reports whether a reconnect is scheduled.
func (l *LogStream) ReconnectPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending != nil
}

// Close shuts the stream down permanently. No reconnect follows.
func (l *LogStream) Close() {
	l.mu.Lock()
	l.closed = true
	conn := l.conn
	l.conn = nil
	if l.pending != nil {
		l.pending.Stop()
		l.pending = nil
	}
	l.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (l *LogStream) read(ctx context.Context, conn wsapi.Conn) {
	for {
		entry, err := conn.Next()
		if err != nil {
			l.handleClose(ctx, conn, err)
			return
		}
		l.sink.AppendLog(entry)
	}
}

// handleClose releases a connection that ended and schedules the reconnect.
// A read error force-closes the connection first.
func (l *LogStream) handleClose(ctx context.Context, conn wsapi.Conn, err error) {
	if !errors.Is(err, io.EOF) {
		slog.Warn("Log stream read failed, closing connection", "error", err)
	} else {
		slog.Debug("Log stream closed by server")
	}
	_ = conn.Close()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == conn {
		l.conn = nil
	}
	l.scheduleReconnect(ctx)
}

// scheduleReconnect arms a single reconnect timer. Caller holds l.mu.
func (l *LogStream) scheduleReconnect(ctx context.Context) {
	if l.closed || l.pending != nil || ctx.Err() != nil {
		return
	}

	slog.Debug("Scheduling log stream reconnect", "delay", l.delay)

	var t timer
	t = l.afterFunc(l.delay, func() {
		l.mu.Lock()
		if l.pending != t {
			l.mu.Unlock()
			return
		}
		l.pending = nil
		l.mu.Unlock()

		l.Open(ctx)
	})
	l.pending = t
}

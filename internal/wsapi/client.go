package wsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/pkg/config"
)

const (
	// logPath is the websocket endpoint that streams job log entries
	logPath = "/ws/log"
	// pingInterval is how often we send ping frames to keep the connection alive
	pingInterval = 10 * time.Second
	// pongTimeout is how long we wait for a pong response before considering the connection dead
	pongTimeout = 5 * time.Second
	// handshakeTimeout is how long we wait for the websocket handshake
	handshakeTimeout = 5 * time.Second
)

// dialer implements the Dialer interface using gorilla/websocket.
type dialer struct {
	cfg *config.Config
}

var _ Dialer = (*dialer)(nil)

// NewDialer creates a new log stream dialer.
func NewDialer(cfg *config.Config) Dialer {
	return &dialer{
		cfg: cfg,
	}
}

// DialLogs implements Dialer.DialLogs.
func (d *dialer) DialLogs(ctx context.Context) (Conn, error) {
	wsURL, err := url.Parse(d.cfg.LogStreamURL())
	if err != nil {
		return nil, fmt.Errorf("invalid log stream URL: %w", err)
	}
	wsURL.Path = logPath

	var header http.Header
	if d.cfg.APIToken != "" {
		header = http.Header{"Authorization": {"Bearer " + d.cfg.APIToken}}
	}

	slog.Debug("Connecting to log websocket", "url", wsURL.Host+wsURL.Path)

	wsDialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	ws, resp, err := wsDialer.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	slog.Info("Connected to log websocket", "url", wsURL.Host+wsURL.Path)

	c := &conn{ws: ws, done: make(chan struct{})}

	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pingInterval + pongTimeout))
	})
	go c.pingLoop()

	return c, nil
}

// conn wraps a websocket connection carrying one JSON log entry per message.
type conn struct {
	ws        *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

var _ Conn = (*conn)(nil)

// Next implements Conn.Next.
func (c *conn) Next() (api.LogEntry, error) {
	for {
		if err := c.ws.SetReadDeadline(time.Now().Add(pingInterval + pongTimeout)); err != nil {
			return api.LogEntry{}, fmt.Errorf("failed to set read deadline: %w", err)
		}

		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("WebSocket closed normally")
				return api.LogEntry{}, io.EOF
			}
			return api.LogEntry{}, fmt.Errorf("read error: %w", err)
		}

		entry, err := parseMessage(message)
		if err != nil {
			slog.Warn("Failed to parse websocket message", "error", err)
			continue
		}

		return entry, nil
	}
}

// Close implements Conn.Close.
func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))

		err = c.ws.Close()
	})
	return err
}

// pingLoop sends periodic ping messages to keep the connection alive.
func (c *conn) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(pongTimeout)); err != nil {
				slog.Debug("Failed to send ping", "error", err)
				return
			}
		}
	}
}

// parseMessage decodes one websocket message into a log entry.
func parseMessage(data []byte) (api.LogEntry, error) {
	var entry api.LogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return api.LogEntry{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if entry.Message == "" && entry.Time == "" {
		return api.LogEntry{}, fmt.Errorf("message has neither time nor message field")
	}
	return entry, nil
}

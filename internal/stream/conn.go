// Package stream pushes live session events to browsers over WebSockets.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/ytakahashi/shared-todo/internal/live"
)

const (
	outboundBuffer = 32
	writeTimeout   = 5 * time.Second
	flushTimeout   = time.Second
)

// Message is the frame written to clients.
type Message struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Command is a frame sent by the client.
type Command struct {
	Type   string `json:"type"`
	ListID string `json:"listId,omitempty"`
}

const CommandSelect = "select"

// Conn is one client connection. Publish may be called from any goroutine;
// a single writer goroutine started by Serve owns the socket writes.
type Conn struct {
	ws     *websocket.Conn
	out    chan Message
	logger *slog.Logger
}

// Accept upgrades the request and wraps the resulting socket.
func Accept(w http.ResponseWriter, r *http.Request, originPatterns []string, logger *slog.Logger) (*Conn, error) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("websocket upgrade failed: %w", err)
	}
	return NewConn(ws, logger), nil
}

func NewConn(ws *websocket.Conn, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{
		ws:     ws,
		out:    make(chan Message, outboundBuffer),
		logger: logger,
	}
}

// Publish queues a session event without blocking. Every event carries
// complete state, so when the client falls behind the oldest queued event is
// discarded and the newest is always kept.
func (c *Conn) Publish(e live.Event) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		c.logger.Error("event_marshal_failed", "type", e.Type, "error", err)
		return
	}

	msg := Message{
		Type:      string(e.Type),
		Timestamp: time.Now(),
		Data:      data,
	}

	for {
		select {
		case c.out <- msg:
			return
		default:
		}

		select {
		case old := <-c.out:
			c.logger.Warn("outbound_queue_full", "type", e.Type, "dropped", old.Type)
		default:
		}
	}
}

// Serve runs the connection until ctx is done or the client goes away.
// onCommand is called for every well-formed client command. Queued messages
// are flushed before the socket is closed.
func (c *Conn) Serve(ctx context.Context, onCommand func(Command)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Cancelling a read context closes the socket, so reads get their own
	// context that outlives the final flush.
	readCtx, stopRead := context.WithCancel(context.Background())
	defer stopRead()

	readErr := make(chan error, 1)
	go func() {
		readErr <- c.readLoop(readCtx, onCommand)
		cancel()
	}()

	werr := c.writeLoop(ctx)
	_ = c.ws.Close(websocket.StatusNormalClosure, "")
	stopRead()
	rerr := <-readErr

	if rerr != nil && !isClosed(rerr) {
		c.logger.Debug("read_loop_ended", "error", rerr)
	}
	return werr
}

func (c *Conn) readLoop(ctx context.Context, onCommand func(Command)) error {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			return err
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil || cmd.Type == "" {
			c.logger.Debug("ignored_client_frame", "bytes", len(data))
			continue
		}
		if onCommand != nil {
			onCommand(cmd)
		}
	}
}

func (c *Conn) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			c.flush()
			return nil
		case msg := <-c.out:
			if err := c.write(context.Background(), msg, writeTimeout); err != nil {
				return err
			}
		}
	}
}

// flush writes whatever is still queued, giving up after flushTimeout.
func (c *Conn) flush() {
	deadline := time.Now().Add(flushTimeout)
	for {
		select {
		case msg := <-c.out:
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return
			}
			if err := c.write(context.Background(), msg, remaining); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) write(ctx context.Context, msg Message, timeout time.Duration) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func isClosed(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}

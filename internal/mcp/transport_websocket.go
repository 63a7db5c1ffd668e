package mcp

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConfig configures a framed WebSocket transport.
type WebSocketConfig struct {
	URL         string
	Subprotocols []string
	Headers     http.Header

	// MaxReconnectAttempts is the ceiling on automatic reconnect attempts
	// after an abnormal close; default 3 (§4.1.2).
	MaxReconnectAttempts int

	// ReconnectDelay is the base delay for exponential backoff; default
	// 1000ms. The nth reconnect waits ReconnectDelay * 2^n.
	ReconnectDelay time.Duration
}

func (c *WebSocketConfig) withDefaults() WebSocketConfig {
	out := *c
	if out.MaxReconnectAttempts == 0 {
		out.MaxReconnectAttempts = 3
	}
	if out.ReconnectDelay == 0 {
		out.ReconnectDelay = time.Second
	}
	return out
}

// Close codes that suppress reconnect per §4.1.2 / §8.
const (
	closeNormal          = 1000
	closePolicyViolation = 1008
)

// WebSocketTransport opens a WebSocket and frames one JSON-RPC message per
// text frame. On abnormal close it reconnects with exponential backoff,
// grounded on the gorilla/websocket server-push pattern in
// other_examples/018ce405_acadiaai-tns (HandleWebSocket/conn.ReadJSON loop),
// adapted into a client-initiated connection with its own reconnect
// scheduler, since that example only drove one inbound connection per
// request and never reconnected.
type WebSocketTransport struct {
	cfg WebSocketConfig

	mu            sync.Mutex
	conn          *websocket.Conn
	connected     bool
	closed        bool
	attempt       int
	reconnectTimer *time.Timer
	events        chan Event
}

// NewWebSocketTransport builds a transport for the given config without
// dialing; Connect performs the initial dial.
func NewWebSocketTransport(cfg WebSocketConfig) *WebSocketTransport {
	return &WebSocketTransport{
		cfg:    cfg.withDefaults(),
		events: make(chan Event, 32),
	}
}

func (t *WebSocketTransport) Events() <-chan Event { return t.events }

func (t *WebSocketTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Connect dials the WebSocket. Double-connect is a no-op. On success the
// reconnect attempt counter resets (§4.1.2).
func (t *WebSocketTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.connected {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()
	return t.dial(ctx)
}

func (t *WebSocketTransport) dial(ctx context.Context) error {
	dialer := websocket.Dialer{Subprotocols: t.cfg.Subprotocols}
	conn, _, err := dialer.DialContext(ctx, t.cfg.URL, t.cfg.Headers)
	if err != nil {
		return fmt.Errorf("websocket transport: dial: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.attempt = 0
	t.mu.Unlock()

	go t.readLoop(conn)
	t.emit(Event{Kind: EventConnect})
	return nil
}

func (t *WebSocketTransport) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			code := websocket.CloseNoStatusReceived
			if ce, ok := err.(*websocket.CloseError); ok {
				code = ce.Code
			}
			t.handleClose(code)
			return
		}
		if _, decErr := Decode(data); decErr != nil {
			t.emit(Event{Kind: EventError, Err: fmt.Errorf("websocket transport: parse error: %w", decErr)})
			continue
		}
		t.emit(Event{Kind: EventMessage, Message: data})
	}
}

// handleClose implements the reconnect policy of §4.1.2: reconnect iff the
// close code is neither 1000 nor 1008 and the attempt count is below the
// configured maximum. A pending timer prevents duplicate scheduling.
func (t *WebSocketTransport) handleClose(code int) {
	t.mu.Lock()
	t.connected = false
	closed := t.closed
	shouldReconnect := !closed && code != closeNormal && code != closePolicyViolation && t.attempt < t.cfg.MaxReconnectAttempts
	var delay time.Duration
	if shouldReconnect {
		t.attempt++
		delay = t.cfg.ReconnectDelay * time.Duration(1<<uint(t.attempt-1))
	}
	t.mu.Unlock()

	t.emit(Event{Kind: EventDisconnect, DisconnectCode: code})

	if !shouldReconnect {
		return
	}

	t.mu.Lock()
	if t.reconnectTimer != nil {
		t.mu.Unlock()
		return
	}
	t.reconnectTimer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		t.reconnectTimer = nil
		t.mu.Unlock()
		if err := t.dial(context.Background()); err != nil {
			t.emit(Event{Kind: EventError, Err: err})
		}
	})
	t.mu.Unlock()
}

// Send writes one complete JSON-RPC object as a single text frame.
func (t *WebSocketTransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	conn := t.conn
	connected := t.connected
	t.mu.Unlock()

	if !connected || conn == nil {
		return newNotConnectedError("websocket transport")
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("websocket transport: write: %w", err)
	}
	return nil
}

// Close cancels any pending reconnect timer and closes with code 1000, the
// normal-closure code that itself suppresses reconnect.
func (t *WebSocketTransport) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	if t.reconnectTimer != nil {
		t.reconnectTimer.Stop()
		t.reconnectTimer = nil
	}
	conn := t.conn
	t.connected = false
	t.mu.Unlock()

	if conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeNormal, ""), deadline)
		_ = conn.Close()
	}
	close(t.events)
	return nil
}

func (t *WebSocketTransport) emit(e Event) {
	select {
	case t.events <- e:
	default:
	}
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPMethod selects the verb an HTTPTransport uses to send messages.
type HTTPMethod string

const (
	MethodPOST HTTPMethod = http.MethodPost
	MethodPUT  HTTPMethod = http.MethodPut
)

// HTTPConfig configures a request/response transport.
type HTTPConfig struct {
	Endpoint string
	Method   HTTPMethod // default POST
	Headers  http.Header
	Timeout  time.Duration // default 30s
}

func (c *HTTPConfig) withDefaults() HTTPConfig {
	out := *c
	if out.Method == "" {
		out.Method = MethodPOST
	}
	if out.Timeout == 0 {
		out.Timeout = 30 * time.Second
	}
	return out
}

// HTTPTransport is a half-duplex request/response transport: there is no
// server push, so every inbound message is the direct reply to a Send. Each
// call does a fresh context-timed request with the configured method (POST
// or PUT) and unmarshals the body as one raw JSON-RPC envelope.
type HTTPTransport struct {
	cfg    HTTPConfig
	client *http.Client

	mu        sync.Mutex
	connected bool
	events    chan Event
}

// NewHTTPTransport builds a transport for the given config.
func NewHTTPTransport(cfg HTTPConfig) *HTTPTransport {
	c := cfg.withDefaults()
	return &HTTPTransport{
		cfg:    c,
		client: &http.Client{Timeout: c.Timeout},
		events: make(chan Event, 8),
	}
}

func (t *HTTPTransport) Events() <-chan Event { return t.events }

func (t *HTTPTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Connect probes the endpoint with a synthetic "ping" request; success marks
// the transport connected. This hub keeps the probe rather than treating
// HTTP as always-ready, so IsConnected reflects a confirmed round trip.
func (t *HTTPTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.connected {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	ping := Request{JSONRPC: "2.0", ID: json.RawMessage("0"), Method: "ping"}
	data, err := json.Marshal(ping)
	if err != nil {
		return fmt.Errorf("http transport: marshal ping: %w", err)
	}

	if err := t.doRequest(ctx, data); err != nil {
		return fmt.Errorf("http transport: connect probe: %w", err)
	}

	t.mu.Lock()
	t.connected = true
	t.mu.Unlock()
	t.emit(Event{Kind: EventConnect})
	return nil
}

// Send performs one HTTP request carrying the JSON-encoded message and
// aborts after the configured timeout. A non-empty response body is parsed
// and emitted as a message event; an empty body yields no event.
func (t *HTTPTransport) Send(ctx context.Context, data []byte) error {
	if !t.IsConnected() {
		return newNotConnectedError("http transport")
	}
	return t.doRequest(ctx, data)
}

func (t *HTTPTransport) doRequest(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, string(t.cfg.Method), t.cfg.Endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("http transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, values := range t.cfg.Headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.emit(Event{Kind: EventError, Err: err})
		return fmt.Errorf("http transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("http transport: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("http transport: status %d: %s", resp.StatusCode, string(body))
		t.emit(Event{Kind: EventError, Err: err})
		return err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if _, decErr := Decode(body); decErr != nil {
		t.emit(Event{Kind: EventError, Err: fmt.Errorf("http transport: parse error: %w", decErr)})
		return nil
	}
	t.emit(Event{Kind: EventMessage, Message: body})
	return nil
}

// Close marks the transport disconnected. HTTP holds no persistent socket,
// so this only stops further probes/sends from succeeding.
func (t *HTTPTransport) Close(ctx context.Context) error {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return nil
	}
	t.connected = false
	t.mu.Unlock()
	close(t.events)
	return nil
}

func (t *HTTPTransport) emit(e Event) {
	select {
	case t.events <- e:
	default:
	}
}

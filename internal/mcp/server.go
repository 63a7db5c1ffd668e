package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// ServerConnection is the narrow send/close contract the server hub needs
// from whatever is feeding it raw bytes - a stdio pair, one accepted
// WebSocket, or one pending HTTP response writer. It intentionally does not
// reuse the client-side Transport interface: a server connection is already
// established by the time it is registered, it never dials or reconnects.
type ServerConnection interface {
	Send(ctx context.Context, data []byte) error
	Close(ctx context.Context) error
}

// connState is the per-connection bookkeeping the dispatcher needs.
type connState struct {
	id          string
	conn        ServerConnection
	initialized bool
}

// CancelledEvent is delivered for notifications/cancelled.
type CancelledEvent struct {
	ConnectionID string
	RequestID    json.RawMessage
	Reason       string
}

// ServerNotificationEvent is delivered for every inbound notification other
// than notifications/initialized and notifications/cancelled, which get
// their own named events.
type ServerNotificationEvent struct {
	ConnectionID string
	Method       string
	Params       json.RawMessage
}

// ServerConnectionErrorEvent reports a failure sending a reply to one
// connection. It is informational only: Transport-level errors are
// never turned into JSON-RPC error responses (§7).
type ServerConnectionErrorEvent struct {
	ConnectionID string
	Err          error
}

// ServerEvents is the server hub's observer surface, following the same
// typed-channel shape as ClientEvents rather than a generic callback bus.
type ServerEvents struct {
	Initialized      chan string
	RequestCancelled chan CancelledEvent
	Notification     chan ServerNotificationEvent
	ConnectionError  chan ServerConnectionErrorEvent
}

func newServerEvents() *ServerEvents {
	return &ServerEvents{
		Initialized:      make(chan string, 16),
		RequestCancelled: make(chan CancelledEvent, 16),
		Notification:     make(chan ServerNotificationEvent, 64),
		ConnectionError:  make(chan ServerConnectionErrorEvent, 16),
	}
}

// Server is the server-side hub: namespaced provider registries, capability
// gating, and the JSON-RPC method dispatch table (§4.3).
type Server struct {
	mu     sync.RWMutex
	config ServerConfig

	resourceProviders *orderedRegistry[ResourceProvider]
	toolProviders     *orderedRegistry[ToolProvider]
	promptProviders   *orderedRegistry[PromptProvider]

	connections map[string]*connState

	Events *ServerEvents
	*verboseLogger
}

// NewServer builds a server hub that will identify itself as config during
// the initialize handshake and reject methods outside config.Capabilities.
func NewServer(config ServerConfig) *Server {
	return &Server{
		config:            config,
		resourceProviders: newOrderedRegistry[ResourceProvider](),
		toolProviders:     newOrderedRegistry[ToolProvider](),
		promptProviders:   newOrderedRegistry[PromptProvider](),
		connections:       make(map[string]*connState),
		Events:            newServerEvents(),
		verboseLogger:     newVerboseLogger(),
	}
}

// SetLogger redirects lifecycle logging to w and enables it when verbose is
// true. A server built by NewServer logs nothing until this is called.
func (s *Server) SetLogger(w io.Writer, verbose bool) {
	s.verboseLogger.SetOutput(w, verbose)
}

// RegisterConnection adopts an already-established connection and starts
// consuming raw messages from inbound until it closes. inbound is expected
// to carry one complete JSON-RPC object per value, already framed by the
// caller's transport (newline-delimited stdio, one WebSocket frame, one
// HTTP request body).
func (s *Server) RegisterConnection(id string, conn ServerConnection, inbound <-chan []byte) {
	s.mu.Lock()
	s.connections[id] = &connState{id: id, conn: conn}
	s.mu.Unlock()

	s.logf("mcp: connection %q registered", id)

	go func() {
		for data := range inbound {
			s.handleMessage(context.Background(), id, data)
		}
		s.mu.Lock()
		delete(s.connections, id)
		s.mu.Unlock()
		s.logf("mcp: connection %q closed", id)
	}()
}

// UnregisterConnection closes and forgets one connection.
func (s *Server) UnregisterConnection(ctx context.Context, id string) error {
	s.mu.Lock()
	cs, ok := s.connections[id]
	delete(s.connections, id)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	s.logf("mcp: connection %q unregistered", id)
	return cs.conn.Close(ctx)
}

// handleMessage classifies one inbound payload and either answers it
// (requests) or routes it (notifications). Input that is not valid JSON gets
// a PARSE_ERROR response with a null id; valid JSON that is not a request,
// response or notification gets INVALID_REQUEST with a null id.
func (s *Server) handleMessage(ctx context.Context, connID string, data []byte) {
	s.mu.RLock()
	cs, ok := s.connections[connID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	msg, err := Decode(data)
	if err != nil {
		s.reply(ctx, cs, &Response{JSONRPC: "2.0", ID: json.RawMessage("null"), Error: NewError(ParseError, err.Error(), nil)})
		return
	}

	switch msg.Kind {
	case KindRequest:
		resp := s.dispatch(ctx, cs, msg.Request)
		s.reply(ctx, cs, resp)
	case KindNotification:
		s.handleNotification(connID, msg.Notification)
	case KindInvalid:
		s.reply(ctx, cs, &Response{JSONRPC: "2.0", ID: json.RawMessage("null"), Error: NewError(InvalidRequest, "Invalid request", nil)})
	case KindResponse:
		// Servers in this hub never issue outbound requests of their own, so
		// an inbound response has no pending entry to resolve. Drop it.
	}
}

func (s *Server) reply(ctx context.Context, cs *connState, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := cs.conn.Send(ctx, data); err != nil {
		emit(s.Events.ConnectionError, ServerConnectionErrorEvent{ConnectionID: cs.id, Err: err})
	}
}

func (s *Server) handleNotification(connID string, note *Notification) {
	switch note.Method {
	case "notifications/initialized":
		s.mu.Lock()
		if cs, ok := s.connections[connID]; ok {
			cs.initialized = true
		}
		s.mu.Unlock()
		emit(s.Events.Initialized, connID)

	case "notifications/cancelled":
		var payload struct {
			RequestID json.RawMessage `json:"requestId"`
			Reason    string          `json:"reason"`
		}
		_ = json.Unmarshal(note.Params, &payload)
		emit(s.Events.RequestCancelled, CancelledEvent{ConnectionID: connID, RequestID: payload.RequestID, Reason: payload.Reason})

	default:
		emit(s.Events.Notification, ServerNotificationEvent{ConnectionID: connID, Method: note.Method, Params: note.Params})
	}
}

// dispatch is the method table of §4.3, wrapped in a panic recovery so a
// misbehaving provider becomes INTERNAL_ERROR instead of taking the whole
// server down.
func (s *Server) dispatch(ctx context.Context, cs *connState, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(InternalError, fmt.Sprintf("panic: %v", r), map[string]string{"method": req.Method})}
		}
	}()

	switch req.Method {
	case "initialize":
		return s.handleInitialize(cs, req)
	case "ping":
		return s.handlePing(req)
	case "resources/list":
		return s.handleResourcesList(ctx, req)
	case "resources/read":
		return s.handleResourcesRead(ctx, req)
	case "tools/list":
		return s.handleToolsList(ctx, req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "prompts/list":
		return s.handlePromptsList(ctx, req)
	case "prompts/get":
		return s.handlePromptsGet(ctx, req)
	default:
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(MethodNotFound, "Method not found: "+req.Method, nil)}
	}
}

// handleInitialize answers the initialize handshake. The caller's name is
// only used for the verbose lifecycle log line, so it is pulled straight out
// of the raw params with gjson rather than decoding a full InitializeParams
// struct the dispatcher otherwise has no use for.
func (s *Server) handleInitialize(cs *connState, req *Request) *Response {
	clientName := gjson.GetBytes(req.Params, "clientInfo.name").String()
	if clientName == "" {
		clientName = "unknown"
	}
	s.logf("mcp: connection %q initializing (client %q)", cs.id, clientName)

	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    s.config.Capabilities,
		ServerInfo:      ClientInfo{Name: s.config.Name, Version: s.config.Version},
	}
	raw, _ := json.Marshal(result)
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: raw}
}

func (s *Server) handlePing(req *Request) *Response {
	raw, _ := json.Marshal(map[string]interface{}{"pong": true, "timestamp": time.Now().UTC().Format(time.RFC3339)})
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: raw}
}

// capabilityGate returns a MethodNotFound response when the named capability
// is disabled in config, or nil when the call is allowed to proceed. A
// disabled capability exposes no methods at all, so it is indistinguishable
// from an unknown method.
func (s *Server) capabilityGate(req *Request, enabled bool, kind string) *Response {
	if enabled {
		return nil
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(MethodNotFound, kind+" not supported by this server", nil)}
}

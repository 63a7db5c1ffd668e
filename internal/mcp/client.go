package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

// ServerStatus is the lifecycle state of a registered server entry (§3).
type ServerStatus int

const (
	StatusDisconnected ServerStatus = iota
	StatusConnected
	StatusError
)

func (s ServerStatus) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "disconnected"
	}
}

// ServerEntry is the client-side registry record for one registered server.
type ServerEntry struct {
	ID        string
	Config    ServerConfig
	Status    ServerStatus
	LastError string

	transport Transport
}

// NotificationEvent is delivered for every inbound notification, in
// addition to the named events for the four well-known methods (§4.2.3).
type NotificationEvent struct {
	ServerID string
	Method   string
	Params   json.RawMessage
}

// ServerMessageEvent carries a notifications/message payload.
type ServerMessageEvent struct {
	ServerID string
	Level    string
	Logger   string
	Data     string
}

// ClientEvents exposes the client hub's observer surface as narrow, typed
// channels rather than a single untyped name->callback bus, per the design
// note in §9: "avoid a single untyped bus because several events... demand
// different handler shapes." Each channel is buffered and non-blocking on
// send so a slow subscriber never stalls the hub.
type ClientEvents struct {
	ServerConnected    chan ServerConnectedEvent
	ServerError        chan ServerErrorEvent
	ServerDisconnected chan string
	Notification       chan NotificationEvent
	ServerMessage      chan ServerMessageEvent
	ResourcesUpdated   chan string
	ToolsUpdated       chan string
	PromptsUpdated     chan string
}

// ServerConnectedEvent is emitted once per successful RegisterServer.
type ServerConnectedEvent struct {
	ServerID string
	Config   ServerConfig
}

// ServerErrorEvent is emitted when a server enters the error state.
type ServerErrorEvent struct {
	ServerID string
	Err      error
}

func newClientEvents() *ClientEvents {
	return &ClientEvents{
		ServerConnected:    make(chan ServerConnectedEvent, 16),
		ServerError:        make(chan ServerErrorEvent, 16),
		ServerDisconnected: make(chan string, 16),
		Notification:       make(chan NotificationEvent, 64),
		ServerMessage:      make(chan ServerMessageEvent, 64),
		ResourcesUpdated:   make(chan string, 16),
		ToolsUpdated:       make(chan string, 16),
		PromptsUpdated:     make(chan string, 16),
	}
}

func emit[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// pendingEntry is one slot of the correlation table (§3): exactly one of
// {response, timeout, send-error, teardown} completes it, ever.
type pendingEntry struct {
	method string
	done   chan pendingResult
	timer  *time.Timer
}

type pendingResult struct {
	resp *Response
	err  error
}

// Client is the client-side hub: server registry, initialize handshake,
// request correlation, and notification routing (§4.2).
type Client struct {
	mu      sync.Mutex
	servers map[string]*ServerEntry
	pending map[int64]*pendingEntry
	nextID  int64

	requestTimeout time.Duration
	clientInfo     ClientInfo

	Events *ClientEvents
	*verboseLogger
}

// SetLogger redirects lifecycle logging to w and enables it when verbose is
// true. A client built by NewClient logs nothing until this is called.
func (c *Client) SetLogger(w io.Writer, verbose bool) {
	c.verboseLogger.SetOutput(w, verbose)
}

// NewClient builds a client hub identifying itself with clientInfo during
// every initialize handshake. requestTimeout of 0 uses the 30s default.
func NewClient(clientInfo ClientInfo, requestTimeout time.Duration) *Client {
	if requestTimeout == 0 {
		requestTimeout = 30 * time.Second
	}
	return &Client{
		servers:        make(map[string]*ServerEntry),
		pending:        make(map[int64]*pendingEntry),
		requestTimeout: requestTimeout,
		clientInfo:     clientInfo,
		Events:         newClientEvents(),
		verboseLogger:  newVerboseLogger(),
	}
}

// RegisterServer inserts a registry entry and performs the initialize
// handshake (§4.2.1). Double-registration under the same id overwrites
// silently; callers are expected to UnregisterServer first.
func (c *Client) RegisterServer(ctx context.Context, serverID string, cfg ServerConfig, transport Transport) error {
	entry := &ServerEntry{ID: serverID, Config: cfg, Status: StatusDisconnected, transport: transport}

	c.mu.Lock()
	c.servers[serverID] = entry
	c.mu.Unlock()

	go c.readLoop(serverID, transport)

	if err := transport.Connect(ctx); err != nil {
		c.markError(serverID, err)
		return err
	}

	if err := c.initializeServer(ctx, serverID); err != nil {
		c.markError(serverID, err)
		return err
	}

	c.mu.Lock()
	entry.Status = StatusConnected
	c.mu.Unlock()
	c.logf("mcp: server %q connected (%s %s)", serverID, cfg.Name, cfg.Version)
	emit(c.Events.ServerConnected, ServerConnectedEvent{ServerID: serverID, Config: cfg})
	return nil
}

func (c *Client) markError(serverID string, err error) {
	c.mu.Lock()
	if entry, ok := c.servers[serverID]; ok {
		entry.Status = StatusError
		entry.LastError = err.Error()
	}
	c.mu.Unlock()
	c.logf("mcp: server %q error: %v", serverID, err)
	emit(c.Events.ServerError, ServerErrorEvent{ServerID: serverID, Err: err})
}

// initializeServer sends the initialize request and, on success, the
// notifications/initialized notification before the server is considered
// operational (§4.2.1). The protocol version is hard-coded at this layer.
func (c *Client) initializeServer(ctx context.Context, serverID string) error {
	params := InitializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ClientCapabilities{Resources: true, Tools: true, Prompts: true, Logging: false},
		ClientInfo:      c.clientInfo,
	}

	resp, err := c.sendRequest(ctx, serverID, "initialize", params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("initialize: %s", resp.Error.Message)
	}

	return c.sendNotification(serverID, "notifications/initialized", nil)
}

// UnregisterServer closes the connection (ignoring "not connected") and
// removes the registry entry.
func (c *Client) UnregisterServer(ctx context.Context, serverID string) error {
	c.mu.Lock()
	entry, ok := c.servers[serverID]
	delete(c.servers, serverID)
	c.mu.Unlock()
	if !ok {
		return nil
	}

	if err := entry.transport.Close(ctx); err != nil {
		if _, notConnected := err.(*errNotConnected); !notConnected {
			return err
		}
	}
	c.logf("mcp: server %q unregistered", serverID)
	emit(c.Events.ServerDisconnected, serverID)
	return nil
}

// Disconnect unregisters every server and rejects every remaining pending
// request with "Client disconnected" (invariant 3, §8).
func (c *Client) Disconnect(ctx context.Context) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.servers))
	for id := range c.servers {
		ids = append(ids, id)
	}
	pending := c.pending
	c.pending = make(map[int64]*pendingEntry)
	c.mu.Unlock()

	for _, p := range pending {
		p.timer.Stop()
		select {
		case p.done <- pendingResult{err: fmt.Errorf("Client disconnected")}:
		default:
		}
	}

	for _, id := range ids {
		_ = c.UnregisterServer(ctx, id)
	}
}

// ListServers returns a snapshot of the current registry.
func (c *Client) ListServers() []ServerEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ServerEntry, 0, len(c.servers))
	for _, e := range c.servers {
		out = append(out, ServerEntry{ID: e.ID, Config: e.Config, Status: e.Status, LastError: e.LastError})
	}
	return out
}

// sendRequest implements §4.2.2: the pending table is populated before
// Send; a send failure removes the entry and cancels its timer; a timer of
// requestTimeout rejects with "Request timeout: <method>".
func (c *Client) sendRequest(ctx context.Context, serverID, method string, params interface{}) (*Response, error) {
	c.mu.Lock()
	entry, ok := c.servers[serverID]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("unknown server: %s", serverID)
	}
	transport := entry.transport
	id := c.nextID + 1
	c.nextID = id
	c.mu.Unlock()

	var paramsRaw json.RawMessage
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		paramsRaw = raw
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(strconv.FormatInt(id, 10)),
		Method:  method,
		Params:  paramsRaw,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	pe := &pendingEntry{method: method, done: make(chan pendingResult, 1)}
	pe.timer = time.AfterFunc(c.requestTimeout, func() {
		c.completePending(id, pendingResult{err: fmt.Errorf("Request timeout: %s", method)})
	})

	c.mu.Lock()
	c.pending[id] = pe
	c.mu.Unlock()

	if err := transport.Send(ctx, data); err != nil {
		c.removePending(id)
		pe.timer.Stop()
		return nil, fmt.Errorf("send: %w", err)
	}

	result := <-pe.done
	if result.err != nil {
		return nil, result.err
	}
	if result.resp.Error != nil {
		return result.resp, fmt.Errorf("%s", result.resp.Error.Message)
	}
	return result.resp, nil
}

func (c *Client) sendNotification(serverID, method string, params interface{}) error {
	c.mu.Lock()
	entry, ok := c.servers[serverID]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown server: %s", serverID)
	}

	var paramsRaw json.RawMessage
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		paramsRaw = raw
	}
	note := Notification{JSONRPC: "2.0", Method: method, Params: paramsRaw}
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return entry.transport.Send(context.Background(), data)
}

// completePending resolves a pending slot exactly once; a second completion
// (e.g. a late response after timeout) is silently dropped per §5's
// ordering guarantee (c).
func (c *Client) completePending(id int64, result pendingResult) {
	c.mu.Lock()
	pe, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	pe.timer.Stop()
	select {
	case pe.done <- result:
	default:
	}
}

func (c *Client) removePending(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readLoop classifies every message a server's transport delivers (§4.2.3).
func (c *Client) readLoop(serverID string, transport Transport) {
	for ev := range transport.Events() {
		switch ev.Kind {
		case EventMessage:
			c.handleInbound(serverID, ev.Message)
		case EventDisconnect:
			c.mu.Lock()
			if entry, ok := c.servers[serverID]; ok && entry.Status == StatusConnected {
				entry.Status = StatusError
				entry.LastError = "transport disconnected"
			}
			c.mu.Unlock()
		}
	}
}

func (c *Client) handleInbound(serverID string, data []byte) {
	msg, err := Decode(data)
	if err != nil || msg.Kind == KindInvalid {
		return
	}

	switch msg.Kind {
	case KindResponse:
		id, ok := parseNumericID(msg.Response.ID)
		if !ok {
			return
		}
		c.completePending(id, pendingResult{resp: msg.Response})

	case KindNotification:
		c.routeNotification(serverID, msg.Notification)

	case KindRequest:
		c.replyToInboundRequest(serverID, msg.Request)
	}
}

// routeNotification emits the generic notification event plus the named
// event for each of the four well-known methods (§4.2.3).
func (c *Client) routeNotification(serverID string, note *Notification) {
	emit(c.Events.Notification, NotificationEvent{ServerID: serverID, Method: note.Method, Params: note.Params})

	switch note.Method {
	case "notifications/message":
		var payload ServerMessageEvent
		_ = json.Unmarshal(note.Params, &payload)
		payload.ServerID = serverID
		emit(c.Events.ServerMessage, payload)
	case "notifications/resources/updated":
		emit(c.Events.ResourcesUpdated, serverID)
	case "notifications/tools/updated":
		emit(c.Events.ToolsUpdated, serverID)
	case "notifications/prompts/updated":
		emit(c.Events.PromptsUpdated, serverID)
	}
}

// replyToInboundRequest answers requests originating from a server (§4.2.4).
// Only "ping" is handled; everything else is METHOD_NOT_FOUND.
func (c *Client) replyToInboundRequest(serverID string, req *Request) {
	c.mu.Lock()
	entry, ok := c.servers[serverID]
	c.mu.Unlock()
	if !ok {
		return
	}

	resp := c.buildInboundResponse(req)
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = entry.transport.Send(context.Background(), data)
}

func (c *Client) buildInboundResponse(req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(InternalError, fmt.Sprintf("panic: %v", r), nil)}
		}
	}()

	switch req.Method {
	case "ping":
		result, _ := json.Marshal(map[string]bool{"pong": true})
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
	default:
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(MethodNotFound, "Method not found: "+req.Method, nil)}
	}
}

func parseNumericID(raw json.RawMessage) (int64, bool) {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

package mcp

import "context"

// InboundMessage is a message delivered by a transport, tagged with the
// encoded bytes so the caller can decode it with Decode.
type InboundMessage struct {
	Data []byte
}

// Transport is the contract every concrete connection variant implements:
// subprocess stdio, WebSocket, and HTTP (§4.1). All operations are
// asynchronous and idempotent with respect to already-reached terminal
// states: a second Connect on an already-connected transport is a no-op, and
// a second Close on an already-closed transport is a no-op.
type Transport interface {
	// Connect establishes the connection. For HTTP this probes the endpoint
	// with a synthetic ping (§4.1.3).
	Connect(ctx context.Context) error

	// Send writes one message. It fails with a "not connected" error if the
	// transport is not currently connected.
	Send(ctx context.Context, data []byte) error

	// Close releases the transport's resources. It must be safe to call
	// more than once.
	Close(ctx context.Context) error

	// IsConnected reports the current connection state.
	IsConnected() bool

	// Events returns the channel on which Message, Error, Disconnect, and
	// Connect events are delivered. The channel is closed once the
	// transport is closed and will deliver no further events.
	Events() <-chan Event
}

// EventKind enumerates the shapes an Event can take. Different kinds carry
// different payload fields; see the doc comments on Event's fields.
type EventKind int

const (
	EventMessage EventKind = iota
	EventError
	EventDisconnect
	EventConnect
	EventStderr
)

// Event is emitted on a Transport's event channel.
type Event struct {
	Kind EventKind

	// Message is set when Kind == EventMessage: the raw decoded-ready bytes
	// of one complete JSON-RPC object.
	Message []byte

	// Err is set when Kind == EventError: a transport-level failure (parse
	// error, dial error, write error). Transport errors are never
	// translated into JSON-RPC error responses (§7) - they are reported out
	// of band.
	Err error

	// DisconnectCode carries the close code for EventDisconnect on the
	// WebSocket transport; it is 0 for other transports.
	DisconnectCode int

	// Line carries the raw line for EventStderr (subprocess transport
	// stderr passthrough).
	Line string
}

// errNotConnected is returned by Send when the transport has not completed
// Connect, per the "not connected" requirement of §4.1.
type errNotConnected struct{ what string }

func (e *errNotConnected) Error() string { return e.what + ": not connected" }

func newNotConnectedError(what string) error { return &errNotConnected{what: what} }

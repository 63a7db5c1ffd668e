package mcp

import "fmt"

// TransportConfig is a tagged-variant configuration that NewTransport turns
// into a concrete Transport (§4.4). Exactly one of the embedded configs is
// read, selected by Type.
type TransportConfig struct {
	Type string // "stdio" | "websocket" | "http"

	Stdio     StdioConfig
	WebSocket WebSocketConfig
	HTTP      HTTPConfig
}

// NewTransport constructs the transport named by cfg.Type. Unknown types
// fail fast rather than silently falling back to a default.
func NewTransport(cfg TransportConfig) (Transport, error) {
	switch cfg.Type {
	case "stdio":
		return NewStdioTransport(cfg.Stdio), nil
	case "websocket":
		return NewWebSocketTransport(cfg.WebSocket), nil
	case "http":
		return NewHTTPTransport(cfg.HTTP), nil
	default:
		return nil, fmt.Errorf("unknown transport type: %s", cfg.Type)
	}
}

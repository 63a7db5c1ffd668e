package mcp

import "github.com/google/uuid"

// NewConnectionID mints an opaque identifier for a server connection that
// has no natural id of its own (an accepted WebSocket, an HTTP request). The
// stdio listener gets exactly one connection and is free to use a fixed
// name like "stdio" instead of calling this.
func NewConnectionID() string {
	return uuid.NewString()
}

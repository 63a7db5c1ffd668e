package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// allowedLogLevels mirrors the level vocabulary MCP borrows from syslog
// (§6): anything outside this set is rejected by SendMessage rather than
// forwarded verbatim.
var allowedLogLevels = map[string]bool{
	"debug": true, "info": true, "notice": true,
	"warning": true, "error": true, "critical": true,
	"alert": true, "emergency": true,
}

// RegisterResourceProvider adds or replaces a namespace's resource provider
// and announces the change to every initialized connection.
func (s *Server) RegisterResourceProvider(namespace string, p ResourceProvider) {
	s.resourceProviders.set(namespace, p)
	_ = s.BroadcastNotification("notifications/resources/updated", nil)
}

// RegisterToolProvider adds or replaces a namespace's tool provider.
func (s *Server) RegisterToolProvider(namespace string, p ToolProvider) {
	s.toolProviders.set(namespace, p)
	_ = s.BroadcastNotification("notifications/tools/updated", nil)
}

// RegisterPromptProvider adds or replaces a namespace's prompt provider.
func (s *Server) RegisterPromptProvider(namespace string, p PromptProvider) {
	s.promptProviders.set(namespace, p)
	_ = s.BroadcastNotification("notifications/prompts/updated", nil)
}

func (s *Server) RemoveResourceProvider(namespace string) { s.resourceProviders.remove(namespace) }
func (s *Server) RemoveToolProvider(namespace string)     { s.toolProviders.remove(namespace) }
func (s *Server) RemovePromptProvider(namespace string)   { s.promptProviders.remove(namespace) }

// BroadcastNotification sends method/params to every registered connection
// that has completed the initialize handshake. A connection that has not
// yet sent notifications/initialized is skipped, not queued.
func (s *Server) BroadcastNotification(method string, params interface{}) error {
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

	s.mu.RLock()
	targets := make([]*connState, 0, len(s.connections))
	for _, cs := range s.connections {
		if cs.initialized {
			targets = append(targets, cs)
		}
	}
	s.mu.RUnlock()

	ctx := context.Background()
	for _, cs := range targets {
		if err := cs.conn.Send(ctx, data); err != nil {
			s.logf("mcp: broadcast %s to %q failed: %v", method, cs.id, err)
			emit(s.Events.ConnectionError, ServerConnectionErrorEvent{ConnectionID: cs.id, Err: err})
		}
	}
	return nil
}

// SendMessage broadcasts a notifications/message log event (§6). level must
// be one of the MCP logging levels; anything else is rejected rather than
// silently forwarded to clients that may treat it as a sentinel.
func (s *Server) SendMessage(level, logger, data string) error {
	if !allowedLogLevels[level] {
		return fmt.Errorf("invalid log level: %s", level)
	}
	return s.BroadcastNotification("notifications/message", map[string]string{
		"level": level, "logger": logger, "data": data,
	})
}

package mcpconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/samestrin/mcp-hub/internal/mcp"
)

// ServerRegistration is one entry of a client registry file: a server id and
// the transport it is reached through.
type ServerRegistration struct {
	ServerID  string            `yaml:"serverId"`
	Transport string            `yaml:"transport"` // "stdio" | "websocket" | "http"
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args"`
	Env       map[string]string `yaml:"env"`
	URL       string            `yaml:"url"`
	Endpoint  string            `yaml:"endpoint"`
}

// ClientRegistry is the parsed shape of a client registry file
// (conventionally servers.yaml): every server the client hub should
// register at startup.
type ClientRegistry struct {
	Servers []ServerRegistration `yaml:"servers"`
}

// LoadClientRegistry reads a YAML client registry file.
func LoadClientRegistry(path string) (*ClientRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client registry: %w", err)
	}
	var reg ClientRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse client registry: %w", err)
	}
	for i, s := range reg.Servers {
		if s.ServerID == "" {
			return nil, fmt.Errorf("client registry %s: entry %d is missing serverId", path, i)
		}
	}
	return &reg, nil
}

// ToTransportConfig builds the mcp.TransportConfig the registration
// describes.
func (r ServerRegistration) ToTransportConfig() mcp.TransportConfig {
	switch r.Transport {
	case "websocket":
		return mcp.TransportConfig{Type: "websocket", WebSocket: mcp.WebSocketConfig{URL: r.URL}}
	case "http":
		return mcp.TransportConfig{Type: "http", HTTP: mcp.HTTPConfig{Endpoint: r.Endpoint, Timeout: 30 * time.Second}}
	default:
		return mcp.TransportConfig{Type: "stdio", Stdio: mcp.StdioConfig{Command: r.Command, Args: r.Args, Env: r.Env}}
	}
}

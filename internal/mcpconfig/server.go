// Package mcpconfig loads the on-disk descriptors that tell an mcp-server or
// mcp-client binary what to build: a server's identity, capabilities, and
// provider wiring, or a client's list of servers to register at startup.
package mcpconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/samestrin/mcp-hub/internal/mcp"
)

// ProviderMount names one provider to load under a namespace, and the
// provider-specific settings it needs (a database path, an allowed-roots
// list, an API endpoint). What each key means is up to the provider kind.
type ProviderMount struct {
	Kind      string            `toml:"kind" yaml:"kind"`
	Namespace string            `toml:"namespace" yaml:"namespace"`
	Settings  map[string]string `toml:"settings" yaml:"settings"`
}

// ServerDescriptor is the on-disk shape of an mcp.ServerConfig plus the
// provider mounts and the transport it should serve on.
type ServerDescriptor struct {
	Name         string          `toml:"name" yaml:"name"`
	Version      string          `toml:"version" yaml:"version"`
	Description  string          `toml:"description" yaml:"description"`
	Author       string          `toml:"author" yaml:"author"`
	Homepage     string          `toml:"homepage" yaml:"homepage"`
	Capabilities CapabilityFlags `toml:"capabilities" yaml:"capabilities"`

	Transport string `toml:"transport" yaml:"transport"` // "stdio" | "websocket" | "http"
	Listen    string `toml:"listen" yaml:"listen"`       // websocket/http bind address

	Verbose  bool            `toml:"verbose" yaml:"verbose"`
	Mounts   []ProviderMount `toml:"mounts" yaml:"mounts"`
}

// CapabilityFlags mirrors mcp.ServerCapabilities for file parsing.
type CapabilityFlags struct {
	Resources bool `toml:"resources" yaml:"resources"`
	Tools     bool `toml:"tools" yaml:"tools"`
	Prompts   bool `toml:"prompts" yaml:"prompts"`
	Logging   bool `toml:"logging" yaml:"logging"`
}

// ToServerConfig converts the parsed descriptor into the mcp package's own
// config type, which knows nothing about files.
func (d *ServerDescriptor) ToServerConfig() mcp.ServerConfig {
	return mcp.ServerConfig{
		Name:        d.Name,
		Version:     d.Version,
		Description: d.Description,
		Author:      d.Author,
		Homepage:    d.Homepage,
		Capabilities: mcp.ServerCapabilities{
			Resources: d.Capabilities.Resources,
			Tools:     d.Capabilities.Tools,
			Prompts:   d.Capabilities.Prompts,
			Logging:   d.Capabilities.Logging,
		},
	}
}

// LoadServerDescriptor reads a server descriptor, choosing the parser by
// file extension: .toml uses BurntSushi/toml, .yaml/.yml uses goccy/go-yaml.
func LoadServerDescriptor(path string) (*ServerDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read server descriptor: %w", err)
	}

	var d ServerDescriptor
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &d); err != nil {
			return nil, fmt.Errorf("parse toml server descriptor: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse yaml server descriptor: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported server descriptor extension: %s", ext)
	}

	if d.Name == "" {
		return nil, fmt.Errorf("server descriptor %s: name is required", path)
	}
	return &d, nil
}

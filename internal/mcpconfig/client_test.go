package mcpconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadClientRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servers.yaml")
	content := `
servers:
  - serverId: files
    transport: stdio
    command: mcp-fs-server
    args: ["--root", "/tmp"]
  - serverId: search
    transport: websocket
    url: ws://localhost:9000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write test registry: %v", err)
	}

	reg, err := LoadClientRegistry(path)
	if err != nil {
		t.Fatalf("LoadClientRegistry() error = %v", err)
	}
	if len(reg.Servers) != 2 {
		t.Fatalf("Servers len = %d, want 2", len(reg.Servers))
	}
	if reg.Servers[0].ServerID != "files" || reg.Servers[0].Command != "mcp-fs-server" {
		t.Errorf("Servers[0] = %+v", reg.Servers[0])
	}

	tc := reg.Servers[1].ToTransportConfig()
	if tc.Type != "websocket" || tc.WebSocket.URL != "ws://localhost:9000" {
		t.Errorf("ToTransportConfig() = %+v", tc)
	}
}

func TestLoadClientRegistryMissingServerID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servers.yaml")
	content := "servers:\n  - transport: stdio\n    command: foo\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write test registry: %v", err)
	}
	if _, err := LoadClientRegistry(path); err == nil {
		t.Fatal("Expected error for missing serverId, got nil")
	}
}

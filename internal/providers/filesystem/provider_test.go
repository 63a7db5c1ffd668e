package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samestrin/mcp-hub/internal/mcp"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

func TestProviderListResourcesSkipsGitignored(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, ".gitignore", "secret.txt\n")
	writeFixture(t, dir, "visible.txt", "hello")
	writeFixture(t, dir, "secret.txt", "shh")

	p := New([]string{dir}, dir)
	resources, err := p.ListResources(context.Background())
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}

	var names []string
	for _, r := range resources {
		names = append(names, r.Name)
	}
	for _, want := range []string{"visible.txt", ".gitignore"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %q among listed resources, got %v", want, names)
		}
	}
	for _, n := range names {
		if n == "secret.txt" {
			t.Errorf("secret.txt should have been excluded by .gitignore, got %v", names)
		}
	}
}

func TestProviderGetResourceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "note.txt", "hello world")

	p := New([]string{dir}, dir)
	content, err := p.GetResource(context.Background(), pathToURI(path))
	if err != nil {
		t.Fatalf("GetResource() error = %v", err)
	}
	if content == nil || content.Text != "hello world" {
		t.Fatalf("GetResource() = %+v, want text %q", content, "hello world")
	}
}

func TestProviderGetResourceIgnoresForeignScheme(t *testing.T) {
	p := New([]string{t.TempDir()}, "")
	content, err := p.GetResource(context.Background(), "https://example.com/x")
	if content != nil || err != nil {
		t.Fatalf("GetResource() = (%v, %v), want (nil, nil) for an unowned scheme", content, err)
	}
}

func TestProviderCallToolWriteThenReadFile(t *testing.T) {
	dir := t.TempDir()
	p := New([]string{dir}, dir)
	path := filepath.Join(dir, "out.txt")

	_, err := p.CallTool(context.Background(), mcp.ToolCall{
		Name: "write_file",
		Arguments: map[string]interface{}{
			"path":    path,
			"content": "written by tool",
		},
	})
	if err != nil {
		t.Fatalf("write_file CallTool() error = %v", err)
	}

	result, err := p.CallTool(context.Background(), mcp.ToolCall{
		Name:      "read_file",
		Arguments: map[string]interface{}{"path": path},
	})
	if err != nil {
		t.Fatalf("read_file CallTool() error = %v", err)
	}
	if result == nil || len(result.Content) == 0 || !strings.Contains(result.Content[0].Text, "written by tool") {
		t.Fatalf("read_file result = %+v, want content containing the written text", result)
	}
}

func TestProviderCallToolUnknownNameSkipped(t *testing.T) {
	p := New([]string{t.TempDir()}, "")
	result, err := p.CallTool(context.Background(), mcp.ToolCall{Name: "not_a_tool"})
	if result != nil || err != nil {
		t.Fatalf("CallTool() = (%v, %v), want (nil, nil) so the dispatcher tries the next provider", result, err)
	}
}

func TestProviderCallToolWriteMissingArgumentErrors(t *testing.T) {
	p := New([]string{t.TempDir()}, "")
	_, err := p.CallTool(context.Background(), mcp.ToolCall{
		Name:      "write_file",
		Arguments: map[string]interface{}{"path": "x.txt"},
	})
	if err == nil {
		t.Fatal("expected error for missing content argument")
	}
}

func TestProviderListToolsReturnsFixedSet(t *testing.T) {
	p := New([]string{t.TempDir()}, "")
	tools, err := p.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(tools) != len(toolDefinitions) {
		t.Fatalf("ListTools() returned %d tools, want %d", len(tools), len(toolDefinitions))
	}
}

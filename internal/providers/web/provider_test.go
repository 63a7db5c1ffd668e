package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samestrin/mcp-hub/internal/mcp"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func newTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestProviderCallToolWebFetchExtractsText(t *testing.T) {
	server := newTestServer(t, `<html><head><title>Hi</title></head><body><p>Hello world</p></body></html>`)
	p := newTestProvider(t)

	result, err := p.CallTool(context.Background(), mcp.ToolCall{
		Name:      "web_fetch",
		Arguments: map[string]interface{}{"url": server.URL},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if result == nil || !strings.Contains(result.Content[0].Text, "Hello world") {
		t.Errorf("web_fetch result = %+v, want content containing 'Hello world'", result)
	}
}

func TestProviderCallToolWebDiffReportsFirstFetchAsIdentical(t *testing.T) {
	server := newTestServer(t, `<html><body><p>v1</p></body></html>`)
	p := newTestProvider(t)

	result, err := p.CallTool(context.Background(), mcp.ToolCall{
		Name:      "web_diff",
		Arguments: map[string]interface{}{"url": server.URL},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if result == nil || !strings.Contains(result.Content[0].Text, `"identical":true`) {
		t.Errorf("web_diff first-fetch result = %+v, want identical:true", result)
	}
}

func TestProviderCallToolWebDiffReportsChanges(t *testing.T) {
	content := `<html><body><p>v1</p></body></html>`
	var mu strings.Builder
	mu.WriteString(content)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mu.String()))
	}))
	defer server.Close()

	p := newTestProvider(t)
	ctx := context.Background()

	if _, err := p.CallTool(ctx, mcp.ToolCall{Name: "web_fetch", Arguments: map[string]interface{}{"url": server.URL}}); err != nil {
		t.Fatalf("web_fetch CallTool() error = %v", err)
	}

	mu.Reset()
	mu.WriteString(`<html><body><p>v2</p></body></html>`)

	result, err := p.CallTool(ctx, mcp.ToolCall{Name: "web_diff", Arguments: map[string]interface{}{"url": server.URL}})
	if err != nil {
		t.Fatalf("web_diff CallTool() error = %v", err)
	}
	if result == nil || strings.Contains(result.Content[0].Text, `"identical":true`) {
		t.Errorf("web_diff result = %+v, want a reported change", result)
	}
}

func TestProviderCallToolUnknownNameSkipped(t *testing.T) {
	p := newTestProvider(t)
	result, err := p.CallTool(context.Background(), mcp.ToolCall{Name: "not_a_tool", Arguments: map[string]interface{}{"url": "x"}})
	if result != nil || err != nil {
		t.Fatalf("CallTool() = (%v, %v), want (nil, nil)", result, err)
	}
}

func TestProviderListToolsReturnsFixedSet(t *testing.T) {
	p := newTestProvider(t)
	tools, err := p.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(tools) != len(toolDefinitions) {
		t.Fatalf("ListTools() returned %d tools, want %d", len(tools), len(toolDefinitions))
	}
}

package filesystem

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samestrin/mcp-hub/internal/mcp"
	"github.com/samestrin/mcp-hub/pkg/pathvalidation"
)

var toolDefinitions = []mcp.Tool{
	{
		Name:        "read_file",
		Description: "Read a file's contents, optionally by line range.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"},"line_start":{"type":"integer"},"line_count":{"type":"integer"}},"required":["path"]}`),
	},
	{
		Name:        "write_file",
		Description: "Write content to a file, creating parent directories if requested.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"},"content":{"type":"string"},"create_dirs":{"type":"boolean"},"append":{"type":"boolean"}},"required":["path","content"]}`),
	},
	{
		Name:        "list_directory",
		Description: "List the entries of a directory.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"},"show_hidden":{"type":"boolean"},"pattern":{"type":"string"}},"required":["path"]}`),
	},
	{
		Name:        "create_directory",
		Description: "Create a directory, including any missing parents.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`),
	},
	{
		Name:        "get_file_info",
		Description: "Return size, mode and modification time for a path.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`),
	},
}

// ListTools returns the fixed set of filesystem tools this provider serves.
func (p *Provider) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	return toolDefinitions, nil
}

// CallTool dispatches by name. An unrecognised name returns (nil, nil) so
// the server hub tries the next registered tool provider (§9); once a name
// is recognised, any core error is returned to the caller and is fatal for
// the whole dispatch per the tools/call contract.
func (p *Provider) CallTool(ctx context.Context, call mcp.ToolCall) (*mcp.ToolResult, error) {
	switch call.Name {
	case "read_file":
		return p.callReadFile(call.Arguments)
	case "write_file":
		return p.callWriteFile(call.Arguments)
	case "list_directory":
		return p.callListDirectory(call.Arguments)
	case "create_directory":
		return p.callCreateDirectory(call.Arguments)
	case "get_file_info":
		return p.callGetFileInfo(call.Arguments)
	default:
		return nil, nil
	}
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

func intArg(args map[string]interface{}, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return int(f)
}

func boolArg(args map[string]interface{}, key string) bool {
	v, ok := args[key].(bool)
	return ok && v
}

func optionalStringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func textResult(s string) *mcp.ToolResult {
	return &mcp.ToolResult{Content: []mcp.ContentItem{{Type: mcp.ContentText, Text: s}}}
}

func jsonResult(v interface{}) (*mcp.ToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return textResult(string(data)), nil
}

func (p *Provider) callReadFile(args map[string]interface{}) (*mcp.ToolResult, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	result, err := readFile(path, intArg(args, "line_start", 0), intArg(args, "line_count", 0), p.allowedDirs)
	if err != nil {
		return nil, err
	}
	return jsonResult(result)
}

func (p *Provider) callWriteFile(args map[string]interface{}) (*mcp.ToolResult, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return nil, err
	}
	if err := pathvalidation.ValidatePathForCreation(path); err != nil {
		return nil, err
	}

	lock := p.lockFor(p.rootFor(path))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire write lock: %w", err)
	}
	defer lock.Unlock()

	result, err := writeFile(path, content, boolArg(args, "create_dirs"), boolArg(args, "append"), p.allowedDirs)
	if err != nil {
		return nil, err
	}
	return jsonResult(result)
}

func (p *Provider) callListDirectory(args map[string]interface{}) (*mcp.ToolResult, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	entries, err := listDirectory(path, boolArg(args, "show_hidden"), optionalStringArg(args, "pattern"), p.allowedDirs)
	if err != nil {
		return nil, err
	}
	return jsonResult(entries)
}

func (p *Provider) callCreateDirectory(args map[string]interface{}) (*mcp.ToolResult, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	if err := pathvalidation.ValidatePathForCreation(path); err != nil {
		return nil, err
	}
	confined, err := createDirectory(path, p.allowedDirs)
	if err != nil {
		return nil, err
	}
	return jsonResult(struct {
		Path    string `json:"path"`
		Created bool   `json:"created"`
	}{Path: confined, Created: true})
}

func (p *Provider) callGetFileInfo(args map[string]interface{}) (*mcp.ToolResult, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	result, err := statPath(path, p.allowedDirs)
	if err != nil {
		return nil, err
	}
	return jsonResult(result)
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// High-level client operations (§4.2.5): thin method -> params -> unwrap
// wrappers over sendRequest. Any error response surfaces as a failure
// carrying the server's error message verbatim (§7).

func (c *Client) ListResources(ctx context.Context, serverID string) ([]Resource, error) {
	resp, err := c.sendRequest(ctx, serverID, "resources/list", nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Resources []Resource `json:"resources"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("decode resources/list result: %w", err)
	}
	return result.Resources, nil
}

func (c *Client) GetResource(ctx context.Context, serverID, uri string) (*ResourceContent, error) {
	resp, err := c.sendRequest(ctx, serverID, "resources/read", map[string]string{"uri": uri})
	if err != nil {
		return nil, err
	}
	var result struct {
		Contents []ResourceContent `json:"contents"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("decode resources/read result: %w", err)
	}
	if len(result.Contents) == 0 {
		return nil, fmt.Errorf("resources/read: empty contents")
	}
	return &result.Contents[0], nil
}

func (c *Client) ListTools(ctx context.Context, serverID string) ([]Tool, error) {
	resp, err := c.sendRequest(ctx, serverID, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("decode tools/list result: %w", err)
	}
	return result.Tools, nil
}

func (c *Client) CallTool(ctx context.Context, serverID string, call ToolCall) (*ToolResult, error) {
	resp, err := c.sendRequest(ctx, serverID, "tools/call", call)
	if err != nil {
		return nil, err
	}
	var result ToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("decode tools/call result: %w", err)
	}
	return &result, nil
}

func (c *Client) ListPrompts(ctx context.Context, serverID string) ([]Prompt, error) {
	resp, err := c.sendRequest(ctx, serverID, "prompts/list", nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Prompts []Prompt `json:"prompts"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("decode prompts/list result: %w", err)
	}
	return result.Prompts, nil
}

func (c *Client) GetPrompt(ctx context.Context, serverID, name string, args map[string]string) ([]PromptMessage, error) {
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	resp, err := c.sendRequest(ctx, serverID, "prompts/get", params)
	if err != nil {
		return nil, err
	}
	var result struct {
		Messages []PromptMessage `json:"messages"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("decode prompts/get result: %w", err)
	}
	return result.Messages, nil
}

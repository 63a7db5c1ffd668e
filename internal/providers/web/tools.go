package web

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/samestrin/mcp-hub/internal/mcp"
)

var toolDefinitions = []mcp.Tool{
	{
		Name:        "web_fetch",
		Description: "Fetch a URL and return its main text content, stripped of HTML.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"url":{"type":"string"}},"required":["url"]}`),
	},
	{
		Name:        "web_diff",
		Description: "Fetch a URL and report what changed since the last web_fetch/web_diff call for the same URL.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"url":{"type":"string"}},"required":["url"]}`),
	},
}

// ListTools returns the fixed web_fetch/web_diff tool set.
func (p *Provider) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	return toolDefinitions, nil
}

// CallTool dispatches by name; an unrecognised name returns (nil, nil) so
// the server hub tries the next registered tool provider (§9).
func (p *Provider) CallTool(ctx context.Context, call mcp.ToolCall) (*mcp.ToolResult, error) {
	url, err := stringArg(call.Arguments, "url")
	switch call.Name {
	case "web_fetch":
		if err != nil {
			return nil, err
		}
		return p.callFetch(ctx, url)
	case "web_diff":
		if err != nil {
			return nil, err
		}
		return p.callDiff(ctx, url)
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

func (p *Provider) callFetch(ctx context.Context, url string) (*mcp.ToolResult, error) {
	content, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := p.storeContent(url, content); err != nil {
		return nil, err
	}
	return &mcp.ToolResult{Content: []mcp.ContentItem{{Type: mcp.ContentText, Text: content}}}, nil
}

// diffResult reports what changed between two fetches of the same URL.
type diffResult struct {
	Identical bool     `json:"identical"`
	URL       string   `json:"url"`
	Additions []string `json:"additions,omitempty"`
	Deletions []string `json:"deletions,omitempty"`
}

func (p *Provider) callDiff(ctx context.Context, url string) (*mcp.ToolResult, error) {
	previous, hadPrevious, err := p.cachedContent(url)
	if err != nil {
		return nil, err
	}

	current, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := p.storeContent(url, current); err != nil {
		return nil, err
	}

	if !hadPrevious || previous == current {
		data, err := json.Marshal(diffResult{Identical: true, URL: url})
		if err != nil {
			return nil, err
		}
		return &mcp.ToolResult{Content: []mcp.ContentItem{{Type: mcp.ContentText, Text: string(data)}}}, nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(previous, current, true)

	var additions, deletions []string
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range strings.Split(d.Text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					deletions = append(deletions, line)
				}
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range strings.Split(d.Text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					additions = append(additions, line)
				}
			}
		}
	}

	data, err := json.Marshal(diffResult{URL: url, Additions: additions, Deletions: deletions})
	if err != nil {
		return nil, err
	}
	return &mcp.ToolResult{Content: []mcp.ContentItem{{Type: mcp.ContentText, Text: string(data)}}}, nil
}

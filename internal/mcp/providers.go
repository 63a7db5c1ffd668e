package mcp

import "context"

// The three provider contracts consumed by the server hub (§6). Concrete
// providers (resource/tool/prompt backends) are external collaborators per
// §1; this package only defines the shape the dispatcher calls through.

// ResourceProvider exposes addressable content under one namespace.
type ResourceProvider interface {
	ListResources(ctx context.Context) ([]Resource, error)
	GetResource(ctx context.Context, uri string) (*ResourceContent, error)
}

// ToolProvider exposes callable, JSON-Schema-described operations.
//
// CallTool is tried against every registered tool provider in registration
// order for a given name (§4.3): returning (nil, nil) means "not my tool,
// try the next provider"; returning a non-nil result wins immediately; a
// non-nil error is fatal for the whole dispatch and becomes TOOL_ERROR
// without trying the remaining providers.
type ToolProvider interface {
	ListTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, call ToolCall) (*ToolResult, error)
}

// PromptProvider exposes named, parameterised message templates.
//
// GetPrompt is probed across providers like GetResource: a nil, nil return
// means "try the next provider", an error is swallowed and the search
// continues, and the first non-nil message list wins.
type PromptProvider interface {
	ListPrompts(ctx context.Context) ([]Prompt, error)
	GetPrompt(ctx context.Context, name string, args map[string]string) ([]PromptMessage, error)
}

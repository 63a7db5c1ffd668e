package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Resource, tool, and prompt handlers (§4.3, §6). List operations poll every
// registered provider concurrently via errgroup, since nothing about a list
// call depends on ordering beyond the final concatenation order, which is
// restored from the provider registry regardless of completion order. Read
// operations (resources/read, prompts/get) and tools/call are probed
// sequentially, in registration order, because the first-match rule and the
// error-swallowing asymmetry between them both depend on trying providers
// one at a time.

func (s *Server) handleResourcesList(ctx context.Context, req *Request) *Response {
	if gated := s.capabilityGate(req, s.config.Capabilities.Resources, "Resources"); gated != nil {
		return gated
	}
	providers := s.resourceProviders.values()
	lists := make([][]Resource, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			rs, err := p.ListResources(gctx)
			if err != nil {
				return err
			}
			lists[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(InternalError, err.Error(), nil)}
	}
	var all []Resource
	for _, rs := range lists {
		all = append(all, rs...)
	}
	raw, _ := json.Marshal(map[string]interface{}{"resources": all})
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: raw}
}

func (s *Server) handleResourcesRead(ctx context.Context, req *Request) *Response {
	if gated := s.capabilityGate(req, s.config.Capabilities.Resources, "Resources"); gated != nil {
		return gated
	}
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.URI == "" {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(InvalidParams, "Missing required parameter: uri", nil)}
	}

	for _, p := range s.resourceProviders.values() {
		content, err := p.GetResource(ctx, params.URI)
		if err != nil {
			// A provider error is swallowed; the next provider still gets a
			// chance to serve this URI (§9 traversal asymmetry).
			continue
		}
		if content == nil {
			continue
		}
		raw, _ := json.Marshal(map[string]interface{}{"contents": []ResourceContent{*content}})
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: raw}
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(ResourceNotFound, "Resource not found: "+params.URI, nil)}
}

func (s *Server) handleToolsList(ctx context.Context, req *Request) *Response {
	if gated := s.capabilityGate(req, s.config.Capabilities.Tools, "Tools"); gated != nil {
		return gated
	}
	providers := s.toolProviders.values()
	lists := make([][]Tool, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			ts, err := p.ListTools(gctx)
			if err != nil {
				return err
			}
			lists[i] = ts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(InternalError, err.Error(), nil)}
	}
	var all []Tool
	for _, ts := range lists {
		all = append(all, ts...)
	}
	raw, _ := json.Marshal(map[string]interface{}{"tools": all})
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: raw}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	if gated := s.capabilityGate(req, s.config.Capabilities.Tools, "Tools"); gated != nil {
		return gated
	}
	var call ToolCall
	if err := json.Unmarshal(req.Params, &call); err != nil || call.Name == "" {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(InvalidParams, "Missing required parameter: name", nil)}
	}

	for _, p := range s.toolProviders.values() {
		result, err := p.CallTool(ctx, call)
		if err != nil {
			// Unlike resources/read, a raised error here is fatal: the
			// provider that owns this tool name failed, so dispatch stops
			// rather than letting a later provider silently mask it.
			return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(ToolError, err.Error(), map[string]string{"tool": call.Name})}
		}
		if result == nil {
			continue
		}
		raw, _ := json.Marshal(result)
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: raw}
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(MethodNotFound, fmt.Sprintf("Tool not found: %s", call.Name), nil)}
}

func (s *Server) handlePromptsList(ctx context.Context, req *Request) *Response {
	if gated := s.capabilityGate(req, s.config.Capabilities.Prompts, "Prompts"); gated != nil {
		return gated
	}
	providers := s.promptProviders.values()
	lists := make([][]Prompt, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			ps, err := p.ListPrompts(gctx)
			if err != nil {
				return err
			}
			lists[i] = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(InternalError, err.Error(), nil)}
	}
	var all []Prompt
	for _, ps := range lists {
		all = append(all, ps...)
	}
	raw, _ := json.Marshal(map[string]interface{}{"prompts": all})
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: raw}
}

func (s *Server) handlePromptsGet(ctx context.Context, req *Request) *Response {
	if gated := s.capabilityGate(req, s.config.Capabilities.Prompts, "Prompts"); gated != nil {
		return gated
	}
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(InvalidParams, "Missing required parameter: name", nil)}
	}

	for _, p := range s.promptProviders.values() {
		messages, err := p.GetPrompt(ctx, params.Name, params.Arguments)
		if err != nil {
			continue
		}
		if messages == nil {
			continue
		}
		raw, _ := json.Marshal(map[string]interface{}{
			"description": "Prompt: " + params.Name,
			"messages":    messages,
		})
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: raw}
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Error: NewError(MethodNotFound, "Prompt not found: "+params.Name, nil)}
}

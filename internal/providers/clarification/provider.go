package clarification

import (
	"context"

	"github.com/samestrin/mcp-hub/internal/mcp"
)

// Provider adapts a Store into an mcp.PromptProvider: every stored entry is
// exposed as a prompt named by its id, resolving to a user/assistant message
// pair that replays the original question and its clarified answer.
type Provider struct {
	store *Store
}

// NewProvider wraps an already-open Store.
func NewProvider(store *Store) *Provider {
	return &Provider{store: store}
}

// ListPrompts lists every stored clarification as a prompt.
func (p *Provider) ListPrompts(ctx context.Context) ([]mcp.Prompt, error) {
	entries, err := p.store.List(ctx)
	if err != nil {
		return nil, err
	}
	prompts := make([]mcp.Prompt, 0, len(entries))
	for _, e := range entries {
		prompts = append(prompts, mcp.Prompt{
			Name:        e.ID,
			Description: e.Question,
		})
	}
	return prompts, nil
}

// GetPrompt resolves a stored entry into its message pair. A name this
// provider doesn't recognize returns (nil, nil) so the dispatcher's
// resources/read-style probe tries the next provider (§9).
func (p *Provider) GetPrompt(ctx context.Context, name string, args map[string]string) ([]mcp.PromptMessage, error) {
	entry, err := p.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return []mcp.PromptMessage{
		{Role: mcp.RoleUser, Content: mcp.ContentItem{Type: mcp.ContentText, Text: entry.Question}},
		{Role: mcp.RoleAssistant, Content: mcp.ContentItem{Type: mcp.ContentText, Text: entry.Answer}},
	}, nil
}

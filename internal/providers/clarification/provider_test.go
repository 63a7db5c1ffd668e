package clarification

import (
	"context"
	"testing"
)

func TestProviderListAndGetPrompt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	entry, err := store.Record(ctx, "what port?", "8080")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	p := NewProvider(store)

	prompts, err := p.ListPrompts(ctx)
	if err != nil {
		t.Fatalf("ListPrompts() error = %v", err)
	}
	if len(prompts) != 1 || prompts[0].Name != entry.ID {
		t.Fatalf("ListPrompts() = %+v, want one prompt named %s", prompts, entry.ID)
	}

	messages, err := p.GetPrompt(ctx, entry.ID, nil)
	if err != nil {
		t.Fatalf("GetPrompt() error = %v", err)
	}
	if len(messages) != 2 || messages[0].Content.Text != "what port?" || messages[1].Content.Text != "8080" {
		t.Errorf("GetPrompt() = %+v", messages)
	}
}

func TestProviderGetPromptUnknownNameSkipped(t *testing.T) {
	store := openTestStore(t)
	p := NewProvider(store)

	messages, err := p.GetPrompt(context.Background(), "does-not-exist", nil)
	if messages != nil || err != nil {
		t.Fatalf("GetPrompt() = (%v, %v), want (nil, nil) so the dispatcher tries the next provider", messages, err)
	}
}

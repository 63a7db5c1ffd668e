package semantic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/qdrant/go-client/qdrant"

	"github.com/samestrin/mcp-hub/internal/mcp"
)

var toolDefinitions = []mcp.Tool{
	{
		Name:        "semantic_search",
		Description: "Search a vector collection by embedding, optionally post-filtering hits with an expr expression over the hit's payload fields and score.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"vector":{"type":"array","items":{"type":"number"}},"top_k":{"type":"integer"},"filter":{"type":"string"}},"required":["vector"]}`),
	},
}

// searchHit is the shape handed to a filter expression's environment: its
// fields are addressable by name (score, payload["language"]).
type searchHit struct {
	ID      string            `json:"id" expr:"id"`
	Score   float32           `json:"score" expr:"score"`
	Payload map[string]string `json:"payload" expr:"payload"`
}

// ListTools returns the fixed semantic_search tool.
func (p *Provider) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	return toolDefinitions, nil
}

// CallTool dispatches semantic_search; any other name is (nil, nil) so the
// server tries the next registered tool provider.
func (p *Provider) CallTool(ctx context.Context, call mcp.ToolCall) (*mcp.ToolResult, error) {
	if call.Name != "semantic_search" {
		return nil, nil
	}
	return p.callSearch(ctx, call.Arguments)
}

func (p *Provider) callSearch(ctx context.Context, args map[string]interface{}) (*mcp.ToolResult, error) {
	rawVector, ok := args["vector"].([]interface{})
	if !ok || len(rawVector) == 0 {
		return nil, fmt.Errorf("argument %q must be a non-empty array of numbers", "vector")
	}
	vector := make([]float32, len(rawVector))
	for i, v := range rawVector {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("vector[%d] is not a number", i)
		}
		vector[i] = float32(f)
	}

	limit := uint64(10)
	if v, ok := args["top_k"].(float64); ok && v > 0 {
		limit = uint64(v)
	}

	var program *vm
	if filterExpr, ok := args["filter"].(string); ok && filterExpr != "" {
		compiled, err := expr.Compile(filterExpr, expr.Env(searchHit{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		program = &vm{program: compiled}
	}

	results, err := p.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: p.collectionName,
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
		Limit:          qdrant.PtrOf(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	hits := make([]searchHit, 0, len(results))
	for _, point := range results {
		hit := searchHit{Score: point.Score, Payload: map[string]string{}}
		if point.Id != nil {
			hit.ID = point.Id.GetUuid()
		}
		for k, v := range point.Payload {
			hit.Payload[k] = v.GetStringValue()
		}
		if program != nil {
			keep, err := program.matches(hit)
			if err != nil {
				return nil, fmt.Errorf("filter expression: %w", err)
			}
			if !keep {
				continue
			}
		}
		hits = append(hits, hit)
	}

	data, err := json.Marshal(map[string]interface{}{"hits": hits})
	if err != nil {
		return nil, err
	}
	return &mcp.ToolResult{Content: []mcp.ContentItem{{Type: mcp.ContentText, Text: string(data)}}}, nil
}

// vm wraps a compiled expr program so callSearch doesn't import expr's
// vm.Program type directly into its signature.
type vm struct {
	program *expr.Program
}

func (v *vm) matches(hit searchHit) (bool, error) {
	out, err := expr.Run(v.program, hit)
	if err != nil {
		return false, err
	}
	keep, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter expression did not evaluate to a boolean")
	}
	return keep, nil
}

// Package semantic mounts a vector-search tool over a Qdrant collection,
// with an optional post-filter expression evaluated against each hit's
// payload.
package semantic

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// Config describes the Qdrant collection a Provider searches.
type Config struct {
	Host           string
	Port           int
	APIKey         string
	UseTLS         bool
	CollectionName string
}

// Provider is an mcp.ToolProvider exposing a single semantic_search tool.
type Provider struct {
	client         *qdrant.Client
	collectionName string
}

// New dials Qdrant and returns a Provider searching cfg.CollectionName. It
// does not create the collection — that is a separate indexing step outside
// this provider's scope.
func New(cfg Config) (*Provider, error) {
	if cfg.CollectionName == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &Provider{client: client, collectionName: cfg.CollectionName}, nil
}

// Close releases the underlying Qdrant connection.
func (p *Provider) Close() error {
	return p.client.Close()
}

// pointID turns an arbitrary string into a stable UUID-shaped point id by
// hashing it, so the same logical id always upserts to the same point.
func pointID(s string) string {
	hash := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x-%x-%x-%x-%x", hash[0:4], hash[4:6], hash[6:8], hash[8:10], hash[10:16])
}

// Upsert stores a vector with an opaque id and an arbitrary string payload,
// used by tests and by offline indexing to populate a collection this
// provider can then search.
func (p *Provider) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	fields := make(map[string]*qdrant.Value, len(payload))
	for k, v := range payload {
		fields[k] = qdrant.NewValueString(v)
	}
	_, err := p.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: p.collectionName,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(pointID(id)),
			Vectors: qdrant.NewVectors(vector...),
			Payload: fields,
		}},
	})
	if err != nil {
		return fmt.Errorf("upsert point: %w", err)
	}
	return nil
}

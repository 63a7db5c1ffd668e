package mcp

import "sync"

// orderedRegistry is a namespace -> value map that also remembers
// insertion order, since provider traversal must be deterministic and
// first-match (§9 "Provider traversal order"): "the source iterates
// registries in insertion order and takes the first non-null/non-erroring
// result... add an explicit ordered key list" if the host map type does not
// preserve it. Grounded on the toolOrder slice in
// _examples/oisee-odata_mcp_go/internal/mcp/server.go, generalized from a
// single tool registry to any provider kind via a type parameter.
type orderedRegistry[T any] struct {
	mu      sync.RWMutex
	byName  map[string]T
	order   []string
}

func newOrderedRegistry[T any]() *orderedRegistry[T] {
	return &orderedRegistry[T]{byName: make(map[string]T)}
}

// set inserts or replaces the value for namespace, preserving its original
// position in iteration order if it already existed.
func (r *orderedRegistry[T]) set(namespace string, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[namespace]; !exists {
		r.order = append(r.order, namespace)
	}
	r.byName[namespace] = value
}

// remove deletes namespace from the registry.
func (r *orderedRegistry[T]) remove(namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[namespace]; !exists {
		return
	}
	delete(r.byName, namespace)
	for i, n := range r.order {
		if n == namespace {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// values returns every registered value in insertion order.
func (r *orderedRegistry[T]) values() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byName[n])
	}
	return out
}

func (r *orderedRegistry[T]) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

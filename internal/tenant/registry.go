// Package tenant holds the registry of known venues and the per-tenant lock
// table that serializes ingestion against queries.
package tenant

import (
	"sort"
	"sync"
)

// Registry is the enumerable set of known tenants. Seeded from configuration
// at startup; mutable at runtime.
type Registry struct {
	mu      sync.RWMutex
	tenants map[string]struct{}
}

// NewRegistry creates a registry seeded with the given tenant names.
func NewRegistry(seed []string) *Registry {
	r := &Registry{tenants: make(map[string]struct{}, len(seed))}
	for _, t := range seed {
		if t != "" {
			r.tenants[t] = struct{}{}
		}
	}
	return r
}

// Add registers a tenant. Adding an existing tenant is a no-op.
func (r *Registry) Add(name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[name] = struct{}{}
}

// Remove unregisters a tenant. Removing an unknown tenant is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tenants, name)
}

// Has reports whether a tenant is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tenants[name]
	return ok
}

// List returns all registered tenants in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tenants))
	for t := range r.tenants {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

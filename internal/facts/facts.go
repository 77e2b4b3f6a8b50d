// Package facts exposes values derived from a snapshot (package
// inventory, service state, config options, file presence) to the
// scenario engine through a provider registry. The engine resolves
// dotted fact names at evaluation time and never depends on concrete
// check types.
package facts

import (
	"strings"
	"sync"
)

// Provider answers fact lookups for one prefix. A missing fact is
// (nil, false), never an error: absence of optional data degrades a
// scenario to "not detected".
type Provider interface {
	// Fact resolves the part of a fact name after the provider prefix.
	Fact(name string) (any, bool)
}

// Registry maps fact-name prefixes to providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register binds a provider to a prefix, e.g. "packages". A later
// registration for the same prefix replaces the earlier one.
func (r *Registry) Register(prefix string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[prefix] = p
}

// Fact resolves a dotted fact name, e.g.
// "packages.neutron-common.version". Unknown prefixes and unknown facts
// both report absence.
func (r *Registry) Fact(name string) (any, bool) {
	prefix, rest, ok := strings.Cut(name, ".")
	if !ok {
		return nil, false
	}
	r.mu.RLock()
	p := r.providers[prefix]
	r.mu.RUnlock()
	if p == nil {
		return nil, false
	}
	return p.Fact(rest)
}

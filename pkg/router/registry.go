package router

import (
	"sync"

	"github.com/draftforge/airouter/pkg/provider"
)

// Registry holds providers in registration order. Both routers share it so
// add/remove/list behavior is implemented once.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	providers map[string]provider.Provider
}

// NewRegistry creates a registry seeded with the given providers.
func NewRegistry(providers []provider.Provider) *Registry {
	r := &Registry{providers: make(map[string]provider.Provider, len(providers))}
	for _, p := range providers {
		r.Add(p)
	}
	return r
}

// Add registers a provider. Re-adding a name replaces the provider but
// keeps its position.
func (r *Registry) Add(p provider.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := p.Name()
	if _, ok := r.providers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
}

// Remove drops a provider by name.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return
	}
	delete(r.providers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (provider.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// List returns all providers in registration order.
func (r *Registry) List() []provider.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	providers := make([]provider.Provider, 0, len(r.order))
	for _, name := range r.order {
		providers = append(providers, r.providers[name])
	}
	return providers
}

// Names returns all provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Available returns the names of providers currently able to serve
// requests, in registration order.
func (r *Registry) Available() []string {
	var names []string
	for _, p := range r.List() {
		if p.Available() {
			names = append(names, p.Name())
		}
	}
	return names
}

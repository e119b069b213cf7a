package metadata

import (
	"sort"
	"sync"
)

// Registry holds the loaded resources keyed by route path. It is filled once
// at startup and only read while serving.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]*ResourceDefinition
	ordered   []*ResourceDefinition
}

func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]*ResourceDefinition)}
}

// Load replaces all resources. Callers validate route path uniqueness first;
// a later duplicate would shadow an earlier one.
func (r *Registry) Load(resources []*ResourceDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resources = make(map[string]*ResourceDefinition, len(resources))
	r.ordered = make([]*ResourceDefinition, 0, len(resources))
	for _, res := range resources {
		r.resources[res.RoutePath] = res
		r.ordered = append(r.ordered, res)
	}
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].PluralName < r.ordered[j].PluralName
	})
}

// Get returns the resource mounted at a route path, or nil.
func (r *Registry) Get(routePath string) *ResourceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resources[routePath]
}

// All returns every resource, sorted by plural name.
func (r *Registry) All() []*ResourceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ResourceDefinition, len(r.ordered))
	copy(out, r.ordered)
	return out
}

package strategy

import (
	"sort"
	"sync"
)

// Registry provides named strategy lookup for the service and benchmark
// surfaces.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a strategy under its own name.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name.
func (r *Registry) Get(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	return s, ok
}

// List returns sorted names of all registered strategies.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewMinMin())
	r.Register(NewFirstFit())
	r.Register(NewGA())
	r.Register(NewPSO())
	r.Register(NewEnhancedPSO())
	r.Register(NewNSGA2())
	r.Register(NewHFCO())
	return r
}

package logger

import (
	"strings"
	"time"
)

// ComponentRegistry tracks components during service startup for summary display.
type ComponentRegistry struct {
	startTime      time.Time
	infrastructure []InfraComponent
	strategies     []StrategyComponent
	handlers       []HandlerComponent
	// apiPrefix holds the configured API prefix (eg: /api/v1)
	apiPrefix string
}

// InfraComponent represents an infrastructure dependency (server, worker pool, etc.).
type InfraComponent struct {
	Name    string
	Type    string // "server", "workers", "stream"
	Status  string // "active", "inactive", "error"
	Details string
}

// StrategyComponent represents a registered scheduling strategy.
type StrategyComponent struct {
	Name   string
	Kind   string // "greedy", "evolutionary", "swarm", "hybrid"
	Status string
}

// HandlerComponent represents an HTTP handler/route.
type HandlerComponent struct {
	Method  string // "GET", "POST", etc.
	Path    string
	Handler string
}

// ComponentRegistryInstance is the global component registry.
var ComponentRegistryInstance = NewComponentRegistry()

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		startTime:      time.Now(),
		infrastructure: make([]InfraComponent, 0),
		strategies:     make([]StrategyComponent, 0),
		handlers:       make([]HandlerComponent, 0),
	}
}

// SetAPIPrefix sets the API prefix (for example "/api/v1") so route grouping
// can be done using the configured prefix instead of hard-coded values.
func (r *ComponentRegistry) SetAPIPrefix(prefix string) {
	r.apiPrefix = strings.TrimRight(prefix, "/")
}

// APIPrefix returns the configured API prefix.
func (r *ComponentRegistry) APIPrefix() string {
	return r.apiPrefix
}

// StartTime returns the registry creation time (startup start).
func (r *ComponentRegistry) StartTime() time.Time {
	return r.startTime
}

// RegisterInfrastructure registers an infrastructure component.
func (r *ComponentRegistry) RegisterInfrastructure(name, componentType, status, details string) {
	r.infrastructure = append(r.infrastructure, InfraComponent{
		Name:    name,
		Type:    componentType,
		Status:  status,
		Details: details,
	})
}

// RegisterStrategy registers a scheduling strategy.
func (r *ComponentRegistry) RegisterStrategy(name, kind, status string) {
	r.strategies = append(r.strategies, StrategyComponent{
		Name:   name,
		Kind:   kind,
		Status: status,
	})
}

// RegisterHandler registers an HTTP handler.
func (r *ComponentRegistry) RegisterHandler(method, path, handler string) {
	r.handlers = append(r.handlers, HandlerComponent{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
}

// Infrastructure returns all registered infrastructure components.
func (r *ComponentRegistry) Infrastructure() []InfraComponent {
	return r.infrastructure
}

// Strategies returns all registered strategy components.
func (r *ComponentRegistry) Strategies() []StrategyComponent {
	return r.strategies
}

// Handlers returns all registered handler components.
func (r *ComponentRegistry) Handlers() []HandlerComponent {
	return r.handlers
}

// SetHandlers replaces the handler list (useful when collecting routes dynamically).
func (r *ComponentRegistry) SetHandlers(handlers []HandlerComponent) {
	r.handlers = handlers
}

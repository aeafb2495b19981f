package logger

import (
	"sort"
	"sync"
)

// Component names the scheduling binaries register at startup. Callers may
// register any other name they need.
const (
	ComponentServer    = "server"
	ComponentAPI       = "api"
	ComponentStrategy  = "strategy"
	ComponentBenchmark = "benchmark"
	ComponentStream    = "stream"
)

// registry is the global named-logger registry.
var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores a named logger in the registry.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get retrieves a named logger. Unregistered names fall back to the global
// logger tagged with the requested component name, so Get is always safe to
// call before Init.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Names returns the registered logger names in sorted order.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.loggers))
	for name := range registry.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterDefaults seeds the registry with component loggers derived from
// the global config. Call after Init.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = []string{ComponentServer, ComponentAPI, ComponentStrategy, ComponentBenchmark, ComponentStream}
	}
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}

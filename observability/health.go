package observability

import (
	"context"
	"strings"
)

// HealthStatus is the reported state of the service or one of its
// components.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth aggregates component health into one service report.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent records a component result. The worst component status wins:
// one down component takes the service down, degraded only degrades it.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// SchedulerHealth reports the strategy registry as a health component. An
// empty registry cannot serve runs and is reported down.
func SchedulerHealth(strategies []string) Health {
	h := Health{
		Name:   "scheduler",
		Status: HealthStatusUp,
		Details: map[string]string{
			"strategies": strings.Join(strategies, ","),
		},
	}
	if len(strategies) == 0 {
		h.Status = HealthStatusDown
		h.Message = "no strategies registered"
	}
	return h
}

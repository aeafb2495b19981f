package strategy

import (
	"context"
	"time"

	"fogsched/logger"
	"fogsched/node"
	"fogsched/observability"
	"fogsched/workflow"
)

// WithTracing wraps a Strategy with OpenTelemetry span creation.
// Each run creates a span named "{prefix}.{strategyName}".
func WithTracing(s Strategy, prefix string) Strategy {
	return &tracingStrategy{inner: s, prefix: prefix}
}

type tracingStrategy struct {
	inner  Strategy
	prefix string
}

func (t *tracingStrategy) Name() string { return t.inner.Name() }

func (t *tracingStrategy) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	spanName := t.prefix + "." + t.inner.Name()
	ctx, span := observability.StartSpan(ctx, spanName)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrStrategyName, t.inner.Name())
	if wf != nil {
		observability.SetSpanAttribute(ctx, "workflow.tasks", wf.Size())
	}

	result, err := t.inner.Schedule(ctx, wf, pool, cfg)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	observability.SetSpanAttribute(ctx, "schedule.cost", result.TotalCost)
	observability.SetSpanAttribute(ctx, "schedule.evaluations", result.Evaluations)
	return result, nil
}

// WithMetrics wraps a Strategy with metric recording.
// Records run count, duration, cost, decode count, and errors.
func WithMetrics(s Strategy, metrics *observability.Metrics) Strategy {
	return &metricsStrategy{inner: s, metrics: metrics}
}

type metricsStrategy struct {
	inner   Strategy
	metrics *observability.Metrics
}

func (m *metricsStrategy) Name() string { return m.inner.Name() }

func (m *metricsStrategy) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	start := time.Now()
	result, err := m.inner.Schedule(ctx, wf, pool, cfg)
	duration := time.Since(start)

	if err != nil {
		m.metrics.RecordError(ctx, "schedule", m.inner.Name())
		m.metrics.RecordSchedule(ctx, m.inner.Name(), "error", 0, duration)
		return nil, err
	}

	m.metrics.RecordSchedule(ctx, m.inner.Name(), "ok", result.TotalCost, duration)
	m.metrics.RecordDecodes(ctx, m.inner.Name(), int64(result.Evaluations))
	return result, nil
}

// WithLogging wraps a Strategy with run logging.
// Logs: strategy name, workflow size, duration, and success/error status.
func WithLogging(s Strategy, log *logger.Logger) Strategy {
	return &loggingStrategy{inner: s, log: log}
}

type loggingStrategy struct {
	inner Strategy
	log   *logger.Logger
}

func (l *loggingStrategy) Name() string { return l.inner.Name() }

func (l *loggingStrategy) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	start := time.Now()
	result, err := l.inner.Schedule(ctx, wf, pool, cfg)
	duration := time.Since(start)

	fields := map[string]interface{}{
		logger.FieldStrategy: l.inner.Name(),
		logger.FieldDuration: duration.Milliseconds(),
	}
	if wf != nil {
		fields[logger.FieldTasks] = wf.Size()
	}

	if err != nil {
		fields[logger.FieldError] = err.Error()
		l.log.Error("schedule failed", fields)
		return nil, err
	}

	fields[logger.FieldCost] = result.TotalCost
	fields["evaluations"] = result.Evaluations
	l.log.Debug("schedule completed", fields)

	return result, nil
}

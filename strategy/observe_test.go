package strategy

import (
	"context"
	"errors"
	"testing"

	"fogsched/logger"
	"fogsched/node"
	"fogsched/observability"
	"fogsched/workflow"
)

// --- instrumentation wrapper tests ---

type failingStrategy struct{ err error }

func (f *failingStrategy) Name() string { return "failing" }
func (f *failingStrategy) Schedule(ctx context.Context, wf *workflow.Workflow, pool *node.Pool, cfg Config) (*Result, error) {
	return nil, f.err
}

func TestWithTracing_WrapsStrategy(t *testing.T) {
	inner := NewMinMin()
	traced := WithTracing(inner, "bench")
	if traced.Name() != NameMinMin {
		t.Fatalf("expected %q, got %q", NameMinMin, traced.Name())
	}

	wf := chainWF(t, 3)
	pool := mustPool(t, fogNode(0, 1000, 0.01), fogNode(1, 2000, 0.02))

	result, err := traced.Schedule(context.Background(), wf, pool, Config{Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Assignments) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result.Assignments))
	}
}

func TestWithTracing_PropagatesError(t *testing.T) {
	runErr := errors.New("fail")
	traced := WithTracing(&failingStrategy{err: runErr}, "bench")

	_, err := traced.Schedule(context.Background(), nil, nil, Config{})
	if !errors.Is(err, runErr) {
		t.Fatalf("expected run error, got %v", err)
	}
}

func TestWithMetrics_Success(t *testing.T) {
	meter := observability.Meter("strategy-test")
	metrics, err := observability.NewMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	wrapped := WithMetrics(NewFirstFit(), metrics)
	if wrapped.Name() != NameFirstFit {
		t.Fatalf("expected %q, got %q", NameFirstFit, wrapped.Name())
	}

	wf := chainWF(t, 2)
	pool := mustPool(t, fogNode(0, 1000, 0.01))

	result, err := wrapped.Schedule(context.Background(), wf, pool, Config{Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCost <= 0 {
		t.Fatalf("expected positive cost, got %v", result.TotalCost)
	}
}

func TestWithMetrics_Error(t *testing.T) {
	meter := observability.Meter("strategy-test")
	metrics, err := observability.NewMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	runErr := errors.New("metrics-fail")
	wrapped := WithMetrics(&failingStrategy{err: runErr}, metrics)

	_, err = wrapped.Schedule(context.Background(), nil, nil, Config{})
	if !errors.Is(err, runErr) {
		t.Fatalf("expected run error, got %v", err)
	}
}

func TestWithLogging_Success(t *testing.T) {
	log := logger.NewDefault("strategy-test")
	logged := WithLogging(NewMinMin(), log)
	if logged.Name() != NameMinMin {
		t.Fatalf("expected %q, got %q", NameMinMin, logged.Name())
	}

	wf := chainWF(t, 2)
	pool := mustPool(t, fogNode(0, 1000, 0.01))

	result, err := logged.Schedule(context.Background(), wf, pool, Config{Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Strategy != NameMinMin {
		t.Fatalf("expected strategy %q, got %q", NameMinMin, result.Strategy)
	}
}

func TestWithLogging_Error(t *testing.T) {
	log := logger.NewDefault("strategy-test")
	runErr := errors.New("log-fail")
	logged := WithLogging(&failingStrategy{err: runErr}, log)

	_, err := logged.Schedule(context.Background(), nil, nil, Config{})
	if !errors.Is(err, runErr) {
		t.Fatalf("expected run error, got %v", err)
	}
}

func TestObserve_StackedWrappers(t *testing.T) {
	meter := observability.Meter("strategy-test")
	metrics, err := observability.NewMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	log := logger.NewDefault("strategy-test")

	s := WithLogging(WithMetrics(WithTracing(NewMinMin(), "bench"), metrics), log)
	if s.Name() != NameMinMin {
		t.Fatalf("expected inner name to survive stacking, got %q", s.Name())
	}

	wf := chainWF(t, 4)
	pool := mustPool(t, fogNode(0, 1000, 0.01), fogNode(1, 2000, 0.02))

	result, err := s.Schedule(context.Background(), wf, pool, Config{Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Assignments) != 4 {
		t.Fatalf("expected 4 assignments, got %d", len(result.Assignments))
	}

	// The same run without wrappers must produce identical numbers.
	bare, err := NewMinMin().Schedule(context.Background(), wf, pool, Config{Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bare.TotalCost != result.TotalCost {
		t.Fatalf("wrappers changed the result: %v vs %v", bare.TotalCost, result.TotalCost)
	}
}

// Package observability provides OpenTelemetry tracing and metrics integration
// for the scheduler service and benchmark tooling.
//
// Tracing:
//
//	cfg := observability.DefaultTracerConfig("fogsched")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanSchedule)
//	defer span.End()
//
// Metrics:
//
//	mcfg := observability.DefaultMeterConfig("fogsched")
//	mp, err := observability.InitMeter(ctx, &mcfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("fogsched"))
//	metrics.RecordSchedule(ctx, "ga", "ok", result.TotalCost, elapsed)
//
// Health Checks:
//
//	health := observability.NewServiceHealth("fogsched", "1.0.0")
//	health.AddComponent(checker.CheckHealth(ctx))
package observability

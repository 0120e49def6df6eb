// Package observability wires OpenTelemetry tracing and metrics into error
// dispatch.
//
// Tracing and metrics export:
//
//	cfg := observability.DefaultConfig("gameserver")
//	tp, err := observability.InitTracer(ctx, cfg)
//	defer tp.Shutdown(ctx)
//	mp, err := observability.InitMeter(ctx, cfg)
//	defer mp.Shutdown(ctx)
//
// Dispatch instrumentation:
//
//	metrics, err := observability.NewDispatchMetrics(observability.Meter("errdispatch"))
//	d := dispatch.NewDispatcher(
//		dispatch.WithObserver(metrics),
//		dispatch.WithReporter(observability.NewSpanReporter(dispatch.NewLogReporter(log))),
//	)
//
// Health checks:
//
//	health := observability.CheckAll(ctx, "gameserver", "1.0.0", checkers...)
package observability

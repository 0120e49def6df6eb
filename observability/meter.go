package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/errdispatch/dispatch"
	"github.com/kbukum/errdispatch/logger"
)

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The provider should be shut down on application exit.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names recorded by DispatchMetrics.
const (
	MetricDispatchTotal  = "errdispatch.dispatch.total"
	MetricUnhandledTotal = "errdispatch.unhandled.total"
)

// DispatchMetrics counts dispatches by outcome and error type. It implements
// dispatch.Observer.
type DispatchMetrics struct {
	dispatchTotal  metric.Int64Counter
	unhandledTotal metric.Int64Counter
}

var _ dispatch.Observer = (*DispatchMetrics)(nil)

// NewDispatchMetrics creates the dispatch instruments on meter.
func NewDispatchMetrics(meter metric.Meter) (*DispatchMetrics, error) {
	dispatchTotal, err := meter.Int64Counter(MetricDispatchTotal,
		metric.WithDescription("Errors dispatched, by outcome and error type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDispatchTotal, err)
	}

	unhandledTotal, err := meter.Int64Counter(MetricUnhandledTotal,
		metric.WithDescription("Errors that reached the fallback renderer"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricUnhandledTotal, err)
	}

	return &DispatchMetrics{dispatchTotal: dispatchTotal, unhandledTotal: unhandledTotal}, nil
}

// ObserveDispatch implements dispatch.Observer.
func (m *DispatchMetrics) ObserveDispatch(ctx context.Context, ev dispatch.Event) {
	typeAttr := attribute.String(AttrErrorType, ev.ErrorType)
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(
		typeAttr,
		attribute.String(AttrOutcome, ev.Outcome.String()),
		attribute.Int(AttrStatus, ev.Status),
	))
	if ev.Outcome == dispatch.OutcomeUnhandled {
		m.unhandledTotal.Add(ctx, 1, metric.WithAttributes(typeAttr))
	}
}

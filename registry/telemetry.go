package registry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/KOMKZ/go-yogan-boot/registry"

// Outcomes recorded on the init metrics
const (
	outcomeInitialized = "initialized"
	outcomeFailed      = "failed"
	outcomeSkipped     = "skipped"
)

// initMetrics instruments of the initializer; they resolve through the global
// providers, so a telemetry component installed mid-run takes effect immediately
type initMetrics struct {
	duration     metric.Float64Histogram
	components   metric.Int64Counter
	hookFailures metric.Int64Counter
}

func newInitMetrics(mp metric.MeterProvider) *initMetrics {
	meter := mp.Meter(instrumentationName)
	fallback := noop.NewMeterProvider().Meter(instrumentationName)

	duration, err := meter.Float64Histogram("bootstrap.component.init.duration",
		metric.WithDescription("Component factory duration"),
		metric.WithUnit("ms"))
	if err != nil {
		duration, _ = fallback.Float64Histogram("bootstrap.component.init.duration")
	}

	components, err := meter.Int64Counter("bootstrap.component.outcomes",
		metric.WithDescription("Components by initialization outcome"),
		metric.WithUnit("{component}"))
	if err != nil {
		components, _ = fallback.Int64Counter("bootstrap.component.outcomes")
	}

	hookFailures, err := meter.Int64Counter("bootstrap.hook.failures",
		metric.WithDescription("Failed lifecycle hooks"),
		metric.WithUnit("{hook}"))
	if err != nil {
		hookFailures, _ = fallback.Int64Counter("bootstrap.hook.failures")
	}

	return &initMetrics{duration: duration, components: components, hookFailures: hookFailures}
}

func (m *initMetrics) recordComponent(ctx context.Context, name, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("component", name),
		attribute.String("outcome", outcome),
	)
	m.components.Add(ctx, 1, attrs)
	if outcome != outcomeSkipped {
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}
}

func (m *initMetrics) recordHookFailure(ctx context.Context, phase string) {
	m.hookFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func defaultMetrics() *initMetrics {
	return newInitMetrics(otel.GetMeterProvider())
}

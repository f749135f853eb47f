// Package telemetry installs the OpenTelemetry tracer and meter providers.
// Once installed, spans and metrics recorded through the otel globals (the
// bootstrap initializer, database, redis) are exported.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/KOMKZ/go-yogan-boot/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Manager owns the tracer and meter providers
type Manager struct {
	config Config
	log    *logger.CtxZapLogger
	writer io.Writer

	mu             sync.Mutex
	installed      bool
	resource       *resource.Resource
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	reader         sdkmetric.Reader
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithWriter destination of the stdout exporters (default os.Stdout)
func WithWriter(w io.Writer) ManagerOption {
	return func(m *Manager) {
		m.writer = w
	}
}

// NewManager creates a telemetry manager
func NewManager(cfg Config, log *logger.CtxZapLogger, opts ...ManagerOption) *Manager {
	if log == nil {
		log = logger.GetLogger("telemetry")
	}
	m := &Manager{config: cfg, log: log, writer: os.Stdout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Install creates the providers and sets them as otel globals; a no-op when
// disabled or already installed
func (m *Manager) Install(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.config.Enabled {
		m.log.InfoCtx(ctx, "telemetry disabled, skipping initialization")
		return nil
	}
	if m.installed {
		return nil
	}

	tp, err := m.createTracerProvider(ctx)
	if err != nil {
		return err
	}

	if m.config.Metrics.Enabled {
		reader, err := m.createMetricReader()
		if err != nil {
			_ = tp.Shutdown(ctx)
			return err
		}
		m.reader = reader
		m.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(m.resource),
			sdkmetric.WithReader(reader),
		)
		otel.SetMeterProvider(m.meterProvider)
	}

	m.tracerProvider = tp
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	m.installed = true

	m.log.InfoCtx(ctx, "telemetry started",
		zap.String("service_name", m.config.ServiceName),
		zap.String("exporter", m.config.Exporter),
		zap.Bool("metrics", m.config.Metrics.Enabled))
	return nil
}

// Stop flushes and shuts down both providers (implements component.Stopper)
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.installed {
		return nil
	}
	m.installed = false

	var errs []error
	if m.tracerProvider != nil {
		if err := m.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if m.meterProvider != nil {
		if err := m.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}

	m.log.InfoCtx(ctx, "telemetry stopped")
	return errors.Join(errs...)
}

// ForceFlush exports pending spans
func (m *Manager) ForceFlush(ctx context.Context) error {
	m.mu.Lock()
	tp := m.tracerProvider
	m.mu.Unlock()
	if tp == nil {
		return nil
	}
	return tp.ForceFlush(ctx)
}

// Collect reads current metrics; only available with the none exporter
func (m *Manager) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics

	m.mu.Lock()
	reader, ok := m.reader.(*sdkmetric.ManualReader)
	m.mu.Unlock()
	if !ok {
		return rm, fmt.Errorf("metrics are not collectable with exporter %q", m.config.Exporter)
	}

	err := reader.Collect(ctx, &rm)
	return rm, err
}

// Tracer from the managed provider, or the global one when disabled
func (m *Manager) Tracer(name string) trace.Tracer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tracerProvider != nil {
		return m.tracerProvider.Tracer(name)
	}
	return otel.Tracer(name)
}

// Meter from the managed provider, or the global one when disabled
func (m *Manager) Meter(name string) metric.Meter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meterProvider != nil {
		return m.meterProvider.Meter(name)
	}
	return otel.Meter(name)
}

// Enabled reports whether telemetry is configured on
func (m *Manager) Enabled() bool {
	return m.config.Enabled
}

// Config effective configuration
func (m *Manager) Config() Config {
	return m.config
}

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// createSpanExporter nil for the none exporter
func (m *Manager) createSpanExporter() (sdktrace.SpanExporter, error) {
	switch m.config.Exporter {
	case ExporterStdout:
		opts := []stdouttrace.Option{stdouttrace.WithWriter(m.writer)}
		if m.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	case ExporterNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", m.config.Exporter)
	}
}

// createMetricReader periodic stdout reader, or a manual reader for the none
// exporter so that metrics stay collectable in-process
func (m *Manager) createMetricReader() (sdkmetric.Reader, error) {
	switch m.config.Exporter {
	case ExporterStdout:
		opts := []stdoutmetric.Option{stdoutmetric.WithWriter(m.writer)}
		if m.config.PrettyPrint {
			opts = append(opts, stdoutmetric.WithPrettyPrint())
		}
		exporter, err := stdoutmetric.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create stdout metrics exporter: %w", err)
		}
		readerOpts := []sdkmetric.PeriodicReaderOption{sdkmetric.WithInterval(m.config.Metrics.ExportInterval)}
		if m.config.Metrics.ExportTimeout > 0 {
			readerOpts = append(readerOpts, sdkmetric.WithTimeout(m.config.Metrics.ExportTimeout))
		}
		return sdkmetric.NewPeriodicReader(exporter, readerOpts...), nil
	case ExporterNone:
		return sdkmetric.NewManualReader(), nil
	default:
		return nil, fmt.Errorf("unsupported metrics exporter type: %s", m.config.Exporter)
	}
}

func (m *Manager) createTracerProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	res, err := m.createResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("create resource failed: %w", err)
	}
	m.resource = res

	exporter, err := m.createSpanExporter()
	if err != nil {
		return nil, fmt.Errorf("create exporter failed: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(m.createSampler()),
	}
	if exporter != nil {
		if m.config.Batch.Enabled {
			opts = append(opts, sdktrace.WithBatcher(exporter,
				sdktrace.WithMaxQueueSize(m.config.Batch.MaxQueueSize),
				sdktrace.WithMaxExportBatchSize(m.config.Batch.MaxExportBatchSize),
				sdktrace.WithBatchTimeout(m.config.Batch.ScheduleDelay),
				sdktrace.WithExportTimeout(m.config.Batch.ExportTimeout),
			))
		} else {
			opts = append(opts, sdktrace.WithSyncer(exporter))
		}
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func (m *Manager) createSampler() sdktrace.Sampler {
	switch m.config.Sampler.Type {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "trace_id_ratio":
		return sdktrace.TraceIDRatioBased(m.config.Sampler.Ratio)
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(m.config.Sampler.Ratio))
	}
}

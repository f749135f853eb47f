package telemetry

import (
	"fmt"
	"time"
)

// Exporter types
const (
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Config OpenTelemetry configuration (key: telemetry)
type Config struct {
	Enabled        bool           `mapstructure:"enabled"`
	ServiceName    string         `mapstructure:"service_name"`
	ServiceVersion string         `mapstructure:"service_version"`
	Exporter       string         `mapstructure:"exporter"`            // stdout or none
	PrettyPrint    bool           `mapstructure:"pretty_print"`        // stdout exporter only
	Sampler        SamplerConfig  `mapstructure:"sampler"`             // Sampling configuration
	ResourceAttrs  map[string]any `mapstructure:"resource_attributes"` // Resource attributes (support nesting)
	Batch          BatchConfig    `mapstructure:"batch"`
	Metrics        MetricsConfig  `mapstructure:"metrics"`
}

// SamplerConfig Sampling configuration
type SamplerConfig struct {
	Type  string  `mapstructure:"type"`  // always_on, always_off, trace_id_ratio, parent_based_trace_id_ratio
	Ratio float64 `mapstructure:"ratio"` // trace_id_ratio types only
}

// BatchConfig batch span processor; disabled means synchronous export
type BatchConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	MaxQueueSize       int           `mapstructure:"max_queue_size"`
	MaxExportBatchSize int           `mapstructure:"max_export_batch_size"`
	ScheduleDelay      time.Duration `mapstructure:"schedule_delay"`
	ExportTimeout      time.Duration `mapstructure:"export_timeout"`
}

// MetricsConfig metrics configuration
type MetricsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
	ExportTimeout  time.Duration `mapstructure:"export_timeout"`
}

// DefaultConfig disabled telemetry with stdout defaults
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "yogan-boot",
		ServiceVersion: "dev",
		Exporter:       ExporterStdout,
		Sampler: SamplerConfig{
			Type:  "parent_based_trace_id_ratio",
			Ratio: 1.0,
		},
		Batch: BatchConfig{
			Enabled:            true,
			MaxQueueSize:       2048,
			MaxExportBatchSize: 512,
			ScheduleDelay:      5 * time.Second,
			ExportTimeout:      30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:        true,
			ExportInterval: 30 * time.Second,
			ExportTimeout:  10 * time.Second,
		},
	}
}

// Validate implements config.Validator
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return fmt.Errorf("[Telemetry] service_name cannot be empty")
	}
	switch c.Exporter {
	case ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("[Telemetry] unsupported exporter: %s", c.Exporter)
	}
	switch c.Sampler.Type {
	case "always_on", "always_off":
	case "trace_id_ratio", "parent_based_trace_id_ratio":
		if c.Sampler.Ratio < 0 || c.Sampler.Ratio > 1 {
			return fmt.Errorf("[Telemetry] sampler ratio must be between 0 and 1, current: %v", c.Sampler.Ratio)
		}
	default:
		return fmt.Errorf("[Telemetry] unsupported sampler: %s", c.Sampler.Type)
	}
	if c.Metrics.Enabled && c.Metrics.ExportInterval <= 0 {
		return fmt.Errorf("[Telemetry] metrics export_interval must be positive")
	}
	return nil
}

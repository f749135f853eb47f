package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/KOMKZ/go-yogan-boot/redis"

// MetricsHook redis.Hook recording command counts and latency
type MetricsHook struct {
	instance string
	commands metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetricsHook uses the global meter provider when mp is nil
func NewMetricsHook(instance string, mp metric.MeterProvider) *MetricsHook {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	h := &MetricsHook{instance: instance}
	// instrument errors leave nil fields which record() skips
	h.commands, _ = meter.Int64Counter("redis.commands",
		metric.WithDescription("Redis commands executed"))
	h.errors, _ = meter.Int64Counter("redis.errors",
		metric.WithDescription("Redis commands failed, excluding cache misses"))
	h.duration, _ = meter.Float64Histogram("redis.command.duration",
		metric.WithDescription("Redis command latency"),
		metric.WithUnit("s"))
	return h
}

// DialHook implements redis.Hook
func (h *MetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

// ProcessHook implements redis.Hook
func (h *MetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.record(ctx, cmd.Name(), time.Since(start), err)
		return err
	}
}

// ProcessPipelineHook implements redis.Hook
func (h *MetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if len(cmds) == 0 {
			return err
		}
		each := time.Since(start) / time.Duration(len(cmds))
		for _, cmd := range cmds {
			h.record(ctx, cmd.Name(), each, cmd.Err())
		}
		return err
	}
}

func (h *MetricsHook) record(ctx context.Context, command string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("instance", h.instance),
		attribute.String("command", command),
	)
	if h.commands != nil {
		h.commands.Add(ctx, 1, attrs)
	}
	if h.duration != nil {
		h.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
	if err != nil && !errors.Is(err, redis.Nil) && h.errors != nil {
		h.errors.Add(ctx, 1, attrs)
	}
}

package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CtxZapLogger context-aware zap logger
// The module is bound at creation; callers only pass ctx.
//
//	log := logger.GetLogger("bootstrap")
//	log.InfoCtx(ctx, "component initialized", zap.String("component", "cache"))
type CtxZapLogger struct {
	base   *zap.Logger
	module string
	config *ManagerConfig
}

// NewCtxZapLogger wraps an existing zap logger (tests, third-party integration)
func NewCtxZapLogger(base *zap.Logger, module string) *CtxZapLogger {
	return &CtxZapLogger{
		base:   base.With(zap.String("module", module)),
		module: module,
	}
}

// Module bound module name
func (l *CtxZapLogger) Module() string {
	return l.module
}

// DebugCtx debug entry (trace id extracted from ctx)
func (l *CtxZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Debug(msg, l.enrichFields(ctx, fields)...)
}

// InfoCtx info entry
func (l *CtxZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Info(msg, l.enrichFields(ctx, fields)...)
}

// WarnCtx warn entry
func (l *CtxZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Warn(msg, l.enrichFields(ctx, fields)...)
}

// ErrorCtx error entry, with a depth-limited stack when configured
func (l *CtxZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	enriched := l.enrichFields(ctx, fields)

	if l.config != nil && shouldCaptureStacktrace("error", *l.config) {
		depth := l.config.StacktraceDepth
		if depth <= 0 {
			depth = 10
		}
		// skip=3: runtime.Callers -> CaptureStacktrace -> ErrorCtx
		if stack := CaptureStacktrace(3, depth); stack != "" {
			enriched = append(enriched, zap.String("stack", stack))
		}
	}

	l.base.Error(msg, enriched...)
}

// Debug is DebugCtx without a context
func (l *CtxZapLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

// Info is InfoCtx without a context
func (l *CtxZapLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

// Warn is WarnCtx without a context
func (l *CtxZapLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

// Error is ErrorCtx without a context
func (l *CtxZapLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// With returns a logger with preset fields
func (l *CtxZapLogger) With(fields ...zap.Field) *CtxZapLogger {
	return &CtxZapLogger{
		base:   l.base.With(fields...),
		module: l.module,
		config: l.config,
	}
}

// GetZapLogger underlying *zap.Logger
func (l *CtxZapLogger) GetZapLogger() *zap.Logger {
	return l.base
}

// enrichFields prepends app_name and trace id
func (l *CtxZapLogger) enrichFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if l.config == nil {
		if traceID := extractTraceID(ctx, nil); traceID != "" {
			return append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
		}
		return fields
	}

	enriched := make([]zap.Field, 0, len(fields)+2)
	enriched = append(enriched, zap.String("app_name", l.config.AppName))

	if l.config.EnableTraceID {
		if traceID := extractTraceID(ctx, l.config); traceID != "" {
			enriched = append(enriched, zap.String(l.config.TraceIDFieldName, traceID))
		}
	}

	return append(enriched, fields...)
}

// extractTraceID priority: OpenTelemetry span > configured context key > "trace_id"
func extractTraceID(ctx context.Context, cfg *ManagerConfig) string {
	if ctx == nil {
		return ""
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}

	key := "trace_id"
	if cfg != nil && cfg.TraceIDKey != "" {
		key = cfg.TraceIDKey
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestCtxLogger in-memory logger for unit tests
//
//	log := logger.NewTestCtxLogger()
//	init := registry.NewInitializer(reg, registry.WithLogger(log))
//	assert.True(t, log.HasLog("WARN", "component skipped: missing dependencies"))
type TestCtxLogger struct {
	store  *logStore
	fields []zap.Field
}

type logStore struct {
	mu   sync.RWMutex
	logs []LogEntry
}

// LogEntry recorded entry
type LogEntry struct {
	Level   string
	Message string
	TraceID string
	Fields  map[string]any
}

// NewTestCtxLogger creates an empty recorder
func NewTestCtxLogger() *TestCtxLogger {
	return &TestCtxLogger{store: &logStore{}}
}

// DebugCtx records a DEBUG entry
func (t *TestCtxLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "DEBUG", msg, fields)
}

// InfoCtx records an INFO entry
func (t *TestCtxLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "INFO", msg, fields)
}

// WarnCtx records a WARN entry
func (t *TestCtxLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "WARN", msg, fields)
}

// ErrorCtx records an ERROR entry
func (t *TestCtxLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "ERROR", msg, fields)
}

// With returns a logger with preset fields sharing the same store
func (t *TestCtxLogger) With(fields ...zap.Field) *TestCtxLogger {
	preset := make([]zap.Field, 0, len(t.fields)+len(fields))
	preset = append(preset, t.fields...)
	return &TestCtxLogger{store: t.store, fields: append(preset, fields...)}
}

func (t *TestCtxLogger) record(ctx context.Context, level, msg string, fields []zap.Field) {
	all := make([]zap.Field, 0, len(t.fields)+len(fields))
	all = append(all, t.fields...)
	all = append(all, fields...)

	entry := LogEntry{
		Level:   level,
		Message: msg,
		TraceID: extractTraceID(ctx, nil),
		Fields:  extractFieldsMap(all),
	}

	t.store.mu.Lock()
	t.store.logs = append(t.store.logs, entry)
	t.store.mu.Unlock()
}

// HasLog reports whether an entry with level and message exists
func (t *TestCtxLogger) HasLog(level, message string) bool {
	return t.find(func(e LogEntry) bool {
		return e.Level == level && e.Message == message
	})
}

// HasLogWithTraceID also matches the trace id
func (t *TestCtxLogger) HasLogWithTraceID(level, message, traceID string) bool {
	return t.find(func(e LogEntry) bool {
		return e.Level == level && e.Message == message && e.TraceID == traceID
	})
}

// HasLogWithField also matches one field value
func (t *TestCtxLogger) HasLogWithField(level, message, fieldKey string, fieldValue any) bool {
	return t.find(func(e LogEntry) bool {
		if e.Level != level || e.Message != message {
			return false
		}
		v, ok := e.Fields[fieldKey]
		return ok && v == fieldValue
	})
}

// CountLogs number of entries at level
func (t *TestCtxLogger) CountLogs(level string) int {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	count := 0
	for _, e := range t.store.logs {
		if e.Level == level {
			count++
		}
	}
	return count
}

// Logs copy of all entries
func (t *TestCtxLogger) Logs() []LogEntry {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	logs := make([]LogEntry, len(t.store.logs))
	copy(logs, t.store.logs)
	return logs
}

// Clear drops all entries
func (t *TestCtxLogger) Clear() {
	t.store.mu.Lock()
	t.store.logs = nil
	t.store.mu.Unlock()
}

func (t *TestCtxLogger) find(match func(LogEntry) bool) bool {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	for _, e := range t.store.logs {
		if match(e) {
			return true
		}
	}
	return false
}

// extractFieldsMap encodes zap fields into a map for assertions
func extractFieldsMap(fields []zap.Field) map[string]any {
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}
	return enc.Fields
}

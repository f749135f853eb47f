package logger

import (
	"context"
	"strings"
)

// GinLogWriter adapts gin's text output (io.Writer) to structured logs
type GinLogWriter struct {
	log *CtxZapLogger
}

// NewGinLogWriter creates a writer for gin.DefaultWriter / gin.DefaultErrorWriter
func NewGinLogWriter(log *CtxZapLogger) *GinLogWriter {
	return &GinLogWriter{log: log}
}

// Write implements io.Writer
func (w *GinLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	ctx := context.Background()
	switch {
	case strings.Contains(msg, "[GIN-debug]"):
		w.log.DebugCtx(ctx, msg)
	case strings.Contains(msg, "[Recovery]"), strings.Contains(msg, "panic recovered"):
		w.log.ErrorCtx(ctx, msg)
	default:
		w.log.InfoCtx(ctx, msg)
	}
	return len(p), nil
}

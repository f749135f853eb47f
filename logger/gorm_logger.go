package logger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

var (
	passwordPattern = regexp.MustCompile(`(?i)(password\s*=\s*['"])([^'"]+)(['"])`)
	idCardPattern   = regexp.MustCompile(`(\d{6})\d{8}(\d{4})`)
	phonePattern    = regexp.MustCompile(`(\d{3})\d{4}(\d{4})`)
)

// GormLogger routes GORM logs to a CtxZapLogger (implements gorm logger.Interface)
type GormLogger struct {
	log           *CtxZapLogger
	slowThreshold time.Duration
	logLevel      gormlogger.LogLevel
	enableAudit   bool
}

// GormLoggerConfig GORM logger configuration
type GormLoggerConfig struct {
	SlowThreshold time.Duration // default 200ms
	LogLevel      gormlogger.LogLevel
	EnableAudit   bool // log every statement at debug level
}

// DefaultGormLoggerConfig default configuration
func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormlogger.Warn,
		EnableAudit:   false,
	}
}

// NewGormLogger creates a GORM logger writing to log
func NewGormLogger(log *CtxZapLogger, cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{
		log:           log,
		slowThreshold: cfg.SlowThreshold,
		logLevel:      cfg.LogLevel,
		enableAudit:   cfg.EnableAudit,
	}
}

// LogMode implements gorm logger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

// Info implements gorm logger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Info {
		l.log.DebugCtx(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn implements gorm logger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Warn {
		l.log.WarnCtx(ctx, fmt.Sprintf(msg, data...))
	}
}

// Error implements gorm logger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Error {
		l.log.ErrorCtx(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs one executed statement
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sanitizeSQL(sql)),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}

	switch {
	case err != nil && l.logLevel >= gormlogger.Error:
		// RecordNotFound is ordinary business flow
		if !errors.Is(err, gormlogger.ErrRecordNotFound) {
			l.log.ErrorCtx(ctx, "sql execution failed", append(fields, zap.Error(err))...)
		} else if l.enableAudit {
			l.log.DebugCtx(ctx, "sql executed", fields...)
		}

	case l.slowThreshold != 0 && elapsed > l.slowThreshold && l.logLevel >= gormlogger.Warn:
		fields = append(fields, zap.Duration("threshold", l.slowThreshold))
		if elapsed > l.slowThreshold*2 {
			l.log.ErrorCtx(ctx, "severe slow query", fields...)
		} else {
			l.log.WarnCtx(ctx, "slow query", fields...)
		}

	case l.logLevel >= gormlogger.Info && l.enableAudit:
		l.log.DebugCtx(ctx, "sql executed", fields...)
	}
}

// sanitizeSQL masks passwords, ID numbers and phone numbers
func sanitizeSQL(sql string) string {
	sql = passwordPattern.ReplaceAllString(sql, `$1***$3`)
	sql = idCardPattern.ReplaceAllString(sql, `$1********$2`)
	return phonePattern.ReplaceAllString(sql, `$1****$2`)
}

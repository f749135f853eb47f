package database

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	instrumentationName = "github.com/KOMKZ/go-yogan-boot/database"
	spanKey             = "otel:span"
)

// OtelPlugin GORM plugin creating one client span per statement
type OtelPlugin struct {
	tracer    trace.Tracer
	traceSQL  bool
	sqlMaxLen int
}

// NewOtelPlugin uses the global provider when tp is nil
func NewOtelPlugin(tp trace.TracerProvider) *OtelPlugin {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OtelPlugin{
		tracer:    tp.Tracer(instrumentationName),
		sqlMaxLen: 1000,
	}
}

// WithTraceSQL records statements on spans
func (p *OtelPlugin) WithTraceSQL(enabled bool) *OtelPlugin {
	p.traceSQL = enabled
	return p
}

// WithSQLMaxLen truncation length of recorded statements
func (p *OtelPlugin) WithSQLMaxLen(maxLen int) *OtelPlugin {
	if maxLen > 0 {
		p.sqlMaxLen = maxLen
	}
	return p
}

// Name implements gorm.Plugin
func (p *OtelPlugin) Name() string {
	return "otel"
}

// Initialize implements gorm.Plugin
func (p *OtelPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("otel:before_create", p.before) },
		func() error { return cb.Create().After("gorm:create").Register("otel:after_create", p.after) },
		func() error { return cb.Query().Before("gorm:query").Register("otel:before_query", p.before) },
		func() error { return cb.Query().After("gorm:query").Register("otel:after_query", p.after) },
		func() error { return cb.Update().Before("gorm:update").Register("otel:before_update", p.before) },
		func() error { return cb.Update().After("gorm:update").Register("otel:after_update", p.after) },
		func() error { return cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before) },
		func() error { return cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after) },
		func() error { return cb.Row().Before("gorm:row").Register("otel:before_row", p.before) },
		func() error { return cb.Row().After("gorm:row").Register("otel:after_row", p.after) },
		func() error { return cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before) },
		func() error { return cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (p *OtelPlugin) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	spanName := "gorm.query"
	if db.Statement.Table != "" {
		spanName += " " + db.Statement.Table
	}
	ctx, span := p.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("db.system", db.Dialector.Name()))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.table", db.Statement.Table))
	}

	db.Statement.Context = ctx
	db.InstanceSet(spanKey, span)
}

func (p *OtelPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	statement := db.Statement.SQL.String()
	if op, _, found := strings.Cut(strings.TrimSpace(statement), " "); found {
		span.SetAttributes(attribute.String("db.operation", strings.ToUpper(op)))
	}
	if p.traceSQL && statement != "" {
		if len(statement) > p.sqlMaxLen {
			statement = statement[:p.sqlMaxLen] + "..."
		}
		span.SetAttributes(attribute.String("db.statement", statement))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}
}

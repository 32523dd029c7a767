package telemetry

import (
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	dbSystemKey    = "db.system"
	dbTableKey     = "db.table"
	dbOperationKey = "db.operation"
	dbStatementKey = "db.statement"

	spanKey      = "otel:span"
	startTimeKey = "otel:startTime"

	maxStatementLen = 500
)

// GORMTracingPlugin returns a GORM plugin that opens a span around every query
func GORMTracingPlugin() gorm.Plugin {
	return &tracingPlugin{tracer: otel.Tracer("gorm")}
}

type tracingPlugin struct {
	tracer trace.Tracer
}

func (p *tracingPlugin) Name() string {
	return "telemetry:tracing"
}

type registrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func (p *tracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op            string
		before, after registrar
	}{
		{"SELECT", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query")},
		{"INSERT", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create")},
		{"UPDATE", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update")},
		{"DELETE", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete")},
		{"RAW", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row")},
	}

	for _, h := range hooks {
		op := h.op
		name := strings.ToLower(op)
		if err := h.before.Register("telemetry:before_"+name, func(tx *gorm.DB) {
			p.startSpan(tx, op)
		}); err != nil {
			return fmt.Errorf("failed to register before_%s callback: %w", name, err)
		}
		if err := h.after.Register("telemetry:after_"+name, p.endSpan); err != nil {
			return fmt.Errorf("failed to register after_%s callback: %w", name, err)
		}
	}
	return nil
}

func (p *tracingPlugin) startSpan(db *gorm.DB, operation string) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	table := db.Statement.Table
	if table == "" {
		table = "unknown"
	}

	_, span := p.tracer.Start(ctx, "db."+strings.ToLower(operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(dbSystemKey, db.Dialector.Name()),
			attribute.String(dbTableKey, table),
			attribute.String(dbOperationKey, operation),
		),
	)

	db.InstanceSet(spanKey, span)
	db.InstanceSet(startTimeKey, time.Now())
}

func (p *tracingPlugin) endSpan(db *gorm.DB) {
	raw, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := raw.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if raw, ok := db.InstanceGet(startTimeKey); ok {
		if start, ok := raw.(time.Time); ok {
			span.SetAttributes(attribute.Int64("db.duration_ms", time.Since(start).Milliseconds()))
		}
	}

	if stmt := db.Statement.SQL.String(); stmt != "" {
		if len(stmt) > maxStatementLen {
			stmt = stmt[:maxStatementLen] + "... (truncated)"
		}
		span.SetAttributes(attribute.String(dbStatementKey, stmt))
	}

	if db.RowsAffected > 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	}

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
}

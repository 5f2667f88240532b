// Package telemetry provides OpenTelemetry integration for distributed tracing.
package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls query tracing on the GORM connection.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bind variables in spans; keep off outside dev
	SlowQueryThresh time.Duration
	DBSystem        string
	// WithoutVariables is the inverse of LogFullSQL kept for config
	// symmetry; RegisterOtelGorm honors LogFullSQL.
	WithoutVariables bool
}

// DBTracingPlugin wires otelgorm into a GORM DB and annotates query
// spans with row counts, table names and slow query events.
type DBTracingPlugin struct {
	cfg DBTracingConfig
	log *zap.Logger
}

// NewDBTracingPlugin creates the plugin; call RegisterOtelGorm to
// attach it to a connection.
func NewDBTracingPlugin(cfg DBTracingConfig, log *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{cfg: cfg, log: log}
}

type dbTracingKey struct{}

// RegisterOtelGorm installs otelgorm plus the timing callbacks on db.
// A disabled config is a no-op so callers never need to branch.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.cfg.Enabled {
		p.log.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.cfg.DBSystem)}
	if !p.cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := p.registerTimingCallbacks(db); err != nil {
		return err
	}

	p.log.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", p.cfg.SlowQueryThresh),
		zap.String("db_system", p.cfg.DBSystem),
	)
	return nil
}

// registerTimingCallbacks hooks every operation type with a
// start-time stamp before otelgorm and a span annotation after it.
func (p *DBTracingPlugin) registerTimingCallbacks(db *gorm.DB) error {
	stamp := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, dbTracingKey{}, time.Now())
		}
	}

	registrations := []func() error{
		func() error {
			return db.Callback().Create().Before("gorm:create").Register("rentora_trace:before_create", stamp)
		},
		func() error {
			return db.Callback().Query().Before("gorm:query").Register("rentora_trace:before_query", stamp)
		},
		func() error {
			return db.Callback().Update().Before("gorm:update").Register("rentora_trace:before_update", stamp)
		},
		func() error {
			return db.Callback().Delete().Before("gorm:delete").Register("rentora_trace:before_delete", stamp)
		},
		func() error {
			return db.Callback().Row().Before("gorm:row").Register("rentora_trace:before_row", stamp)
		},
		func() error {
			return db.Callback().Raw().Before("gorm:raw").Register("rentora_trace:before_raw", stamp)
		},
		func() error {
			return db.Callback().Create().After("gorm:create").Register("rentora_trace:after_create", p.annotateSpan)
		},
		func() error {
			return db.Callback().Query().After("gorm:query").Register("rentora_trace:after_query", p.annotateSpan)
		},
		func() error {
			return db.Callback().Update().After("gorm:update").Register("rentora_trace:after_update", p.annotateSpan)
		},
		func() error {
			return db.Callback().Delete().After("gorm:delete").Register("rentora_trace:after_delete", p.annotateSpan)
		},
		func() error {
			return db.Callback().Row().After("gorm:row").Register("rentora_trace:after_row", p.annotateSpan)
		},
		func() error {
			return db.Callback().Raw().After("gorm:raw").Register("rentora_trace:after_raw", p.annotateSpan)
		},
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// annotateSpan runs after each statement and enriches the otelgorm
// span. Not-found results stay unmarked since callers treat them as a
// normal outcome.
func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	startTime, ok := ctx.Value(dbTracingKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(startTime); elapsed > p.cfg.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.cfg.SlowQueryThresh.Milliseconds()),
		))
	}
}

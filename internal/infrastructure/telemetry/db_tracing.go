package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures query spans.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in db.statement
	SlowQueryThresh time.Duration
	DBName          string
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db plus callbacks that tag
// slow or failed statements on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	start := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	finish := func(tx *gorm.DB) { annotateStatement(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	steps := []struct {
		before func(string) error
		after  func(string) error
	}{
		{
			func(n string) error { return cb.Create().Before("gorm:create").Register(n, start) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, finish) },
		},
		{
			func(n string) error { return cb.Query().Before("gorm:query").Register(n, start) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, finish) },
		},
		{
			func(n string) error { return cb.Update().Before("gorm:update").Register(n, start) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, finish) },
		},
		{
			func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, start) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, finish) },
		},
		{
			func(n string) error { return cb.Row().Before("gorm:row").Register(n, start) },
			func(n string) error { return cb.Row().After("gorm:row").Register(n, finish) },
		},
		{
			func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, start) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, finish) },
		},
	}
	for i, step := range steps {
		suffix := string(rune('a' + i))
		if err := step.before("db_timing:before_" + suffix); err != nil {
			return err
		}
		if err := step.after("db_timing:after_" + suffix); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateStatement(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}

	started, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(started); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query")
	}
}

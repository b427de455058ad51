package telemetry

import (
	"errors"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing installs the otelgorm plugin on db so every store query
// becomes a child span of the request. Query variables are left out of spans.
func RegisterDBTracing(db *gorm.DB, dbSystem string, logger *zap.Logger) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbSystem),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	if err := db.Callback().Query().After("gorm:query").Register("storefront:rows", annotateRows); err != nil {
		return err
	}

	logger.Info("Database tracing enabled", zap.String("db_system", dbSystem))
	return nil
}

// annotateRows tags the active span with the row count and marks misses.
func annotateRows(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetAttributes(attribute.Bool("db.not_found", true))
	}
}

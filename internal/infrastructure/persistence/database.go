package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/storefront/internal/infrastructure/config"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the gorm connection backing the SQL key-value store
type Database struct {
	DB     *gorm.DB
	Driver string
}

// Options tune how the connection is opened.
type Options struct {
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
	Tracing       bool
}

// Open connects to sqlite or postgres depending on driver
func Open(driver string, store config.StoreConfig, db config.DatabaseConfig, log *zap.Logger, opts Options) (*Database, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(store.SQLitePath)
	case "postgres":
		dialector = postgres.Open(db.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(log, opts.LogLevel, opts.SlowThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if driver == "postgres" {
		sqlDB.SetMaxOpenConns(db.MaxOpenConns)
		sqlDB.SetMaxIdleConns(db.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(db.ConnMaxLifetime) * time.Minute)
	} else {
		// sqlite serializes writers
		sqlDB.SetMaxOpenConns(1)
	}

	if opts.Tracing {
		if err := telemetry.RegisterDBTracing(gdb, dbSystem(driver), log); err != nil {
			return nil, fmt.Errorf("failed to register database tracing: %w", err)
		}
	}

	d := &Database{DB: gdb, Driver: driver}
	if err := d.Ping(context.Background()); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return d, nil
}

func dbSystem(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

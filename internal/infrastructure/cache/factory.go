package cache

import (
	"fmt"
	"time"

	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/config"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

const slowQueryThreshold = 200 * time.Millisecond

// StoreFactory opens the key-value store selected by configuration
type StoreFactory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
	tracing               bool
}

// StoreFactoryOption configures the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory and the stores it opens
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unavailable driver degrades to the memory store
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithTracing enables otelgorm spans on SQL stores
func WithTracing(enabled bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.tracing = enabled
	}
}

// NewStoreFactory creates a factory. Fallback defaults to cfg.Store.Fallback.
func NewStoreFactory(cfg *config.Config, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.Store.Fallback,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore opens the configured driver, falling back to memory when allowed
func (f *StoreFactory) CreateStore() (shared.KVStore, error) {
	driver := f.cfg.Store.Driver

	store, err := f.open(driver)
	if err == nil {
		f.logger.Info("key-value store ready", zap.String("driver", driver))
		return store, nil
	}

	if !f.allowInMemoryFallback || driver == "memory" {
		return nil, fmt.Errorf("store driver %s unavailable: %w", driver, err)
	}

	f.logger.Warn("Store unavailable, falling back to in-memory store. "+
		"Carts and preferences will not survive restarts or be shared between instances.",
		zap.String("driver", driver),
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}

// CreateInMemoryStore creates a process-local store
func (f *StoreFactory) CreateInMemoryStore() *MemoryStore {
	return NewMemoryStore(f.cfg.Store.CleanupInterval)
}

func (f *StoreFactory) open(driver string) (shared.KVStore, error) {
	switch driver {
	case "memory":
		return f.CreateInMemoryStore(), nil
	case "redis":
		return NewRedisStore(f.cfg.Redis, f.cfg.Store.KeyPrefix)
	case "sqlite", "postgres":
		db, err := persistence.Open(driver, f.cfg.Store, f.cfg.Database, f.logger, persistence.Options{
			LogLevel:      logger.GormLevel(f.cfg.Log.Level),
			SlowThreshold: slowQueryThreshold,
			Tracing:       f.tracing,
		})
		if err != nil {
			return nil, err
		}
		store, err := persistence.NewKVStore(db, f.cfg.Store.KeyPrefix, f.cfg.Store.CleanupInterval, f.logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

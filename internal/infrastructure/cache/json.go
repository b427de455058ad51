package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// GetJSON reads key and decodes it into T.
// Missing keys return shared.ErrKeyNotFound.
func GetJSON[T any](ctx context.Context, s shared.KVStore, key string) (T, error) {
	var out T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s shared.KVStore, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}

// ReadThrough caches loader results under a named key space.
// Store failures never fail the request: they are logged and the loader result is returned.
type ReadThrough struct {
	store   shared.KVStore
	name    string
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewReadThrough creates a read-through cache. A non-positive ttl disables caching.
func NewReadThrough(store shared.KVStore, name string, ttl time.Duration, m *metrics.Metrics) *ReadThrough {
	return &ReadThrough{store: store, name: name, ttl: ttl, metrics: m}
}

// Enabled reports whether lookups consult the store
func (r *ReadThrough) Enabled() bool {
	return r != nil && r.store != nil && r.ttl > 0
}

func (r *ReadThrough) key(key string) string {
	return "cache:" + r.name + ":" + key
}

// Invalidate drops a cached entry
func (r *ReadThrough) Invalidate(ctx context.Context, key string) error {
	if !r.Enabled() {
		return nil
	}
	return r.store.Delete(ctx, r.key(key))
}

// Load returns the cached value for key or calls load and caches its result.
// Loader errors are returned as-is and never cached.
func Load[T any](ctx context.Context, r *ReadThrough, key string, load func(context.Context) (T, error)) (T, error) {
	if !r.Enabled() {
		return load(ctx)
	}

	storeKey := r.key(key)
	cached, err := GetJSON[T](ctx, r.store, storeKey)
	switch {
	case err == nil:
		r.metrics.CacheLookup(r.name, true)
		return cached, nil
	case !errors.Is(err, shared.ErrKeyNotFound):
		logger.L(ctx).Warn("cache read failed",
			zap.String("cache", r.name),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	r.metrics.CacheLookup(r.name, false)

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := SetJSON(ctx, r.store, storeKey, value, r.ttl); err != nil {
		logger.L(ctx).Warn("cache write failed",
			zap.String("cache", r.name),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return value, nil
}

package shared

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by KVStore.Get for missing or expired keys
var ErrKeyNotFound = errors.New("key not found")

// KVStore persists small serialized documents such as carts, preferences and
// cached backend responses.
// Implementations: Redis, in-memory, and the gorm-backed SQL store.
type KVStore interface {
	// Get returns the stored value or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl keeps the value until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

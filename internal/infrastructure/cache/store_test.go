package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, "sf:")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

// storeContract runs the behaviour every KVStore must share
func storeContract(t *testing.T, store shared.KVStore) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrKeyNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cart:1", []byte(`{"id":"1"}`), time.Hour))
		got, err := store.Get(ctx, "cart:1")
		require.NoError(t, err)
		assert.Equal(t, `{"id":"1"}`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cart:2", []byte("a"), 0))
		require.NoError(t, store.Set(ctx, "cart:2", []byte("b"), 0))
		got, err := store.Get(ctx, "cart:2")
		require.NoError(t, err)
		assert.Equal(t, "b", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cart:3", []byte("a"), 0))
		require.NoError(t, store.Delete(ctx, "cart:3"))
		_, err := store.Get(ctx, "cart:3")
		assert.ErrorIs(t, err, shared.ErrKeyNotFound)
		assert.NoError(t, store.Delete(ctx, "cart:3"))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestRedisStore(t *testing.T) {
	store, _ := newMiniRedisStore(t)
	storeContract(t, store)
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	store, mr := newMiniRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "prefs:u1", []byte("x"), time.Minute))
	assert.True(t, mr.Exists("sf:prefs:u1"))
	assert.Equal(t, time.Minute, mr.TTL("sf:prefs:u1"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "prefs:u1")
	assert.ErrorIs(t, err, shared.ErrKeyNotFound)
}

func TestRedisStore_Unreachable(t *testing.T) {
	store, mr := newMiniRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrKeyNotFound)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	storeContract(t, store)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, store.Set(ctx, "long", []byte("b"), 0))

	now = now.Add(2 * time.Second)
	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, shared.ErrKeyNotFound)
	assert.Equal(t, 2, store.Len())

	store.sweep()
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", buf, 0))
	buf[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

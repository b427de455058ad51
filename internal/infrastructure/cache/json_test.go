package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erp/storefront/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestGetSetJSON(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, store, "p", product{ID: "1", Name: "Mug"}, 0))
	got, err := GetJSON[product](ctx, store, "p")
	require.NoError(t, err)
	assert.Equal(t, product{ID: "1", Name: "Mug"}, got)

	require.NoError(t, store.Set(ctx, "bad", []byte("{"), 0))
	_, err = GetJSON[product](ctx, store, "bad")
	assert.Error(t, err)
}

func TestReadThrough_Load(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	m := metrics.New()
	rt := NewReadThrough(store, "catalog", time.Minute, m)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (product, error) {
		calls++
		return product{ID: "1", Name: "Mug"}, nil
	}

	first, err := Load(ctx, rt, "product:1", loader)
	require.NoError(t, err)
	second, err := Load(ctx, rt, "product:1", loader)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(`
# HELP storefront_cache_lookups_total Response cache lookups by cache name and result.
# TYPE storefront_cache_lookups_total counter
storefront_cache_lookups_total{cache="catalog",result="hit"} 1
storefront_cache_lookups_total{cache="catalog",result="miss"} 1
`), "storefront_cache_lookups_total"))

	require.NoError(t, rt.Invalidate(ctx, "product:1"))
	_, err = Load(ctx, rt, "product:1", loader)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestReadThrough_ErrorsAreNotCached(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	rt := NewReadThrough(store, "catalog", time.Minute, nil)
	ctx := context.Background()

	boom := errors.New("backend down")
	_, err := Load(ctx, rt, "k", func(context.Context) (product, error) { return product{}, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.Len())
}

func TestReadThrough_Disabled(t *testing.T) {
	calls := 0
	loader := func(context.Context) (int, error) { calls++; return calls, nil }

	var rt *ReadThrough
	_, _ = Load(context.Background(), rt, "k", loader)

	rt = NewReadThrough(NewMemoryStore(0), "me", 0, nil)
	_, _ = Load(context.Background(), rt, "k", loader)
	_, _ = Load(context.Background(), rt, "k", loader)

	assert.Equal(t, 3, calls)
	assert.NoError(t, rt.Invalidate(context.Background(), "k"))
}

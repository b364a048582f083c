package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, 1, "summary", "2024-03-05")
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return map[string]string{"net_sales": "142237.00"}, nil
	}

	var first map[string]string
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second map[string]string
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, 1, loads)
	assert.Equal(t, "142237.00", second["net_sales"])
}

func TestCacheBumpInvalidatesKeys(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, 1, "summary")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx, 1))
	after, err := cache.BuildKey(ctx, 1, "summary")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestCacheVersionsIndependentPerProfile(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	keyA, err := cache.BuildKey(ctx, 1, "summary")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx, 2))
	keyAAgain, err := cache.BuildKey(ctx, 1, "summary")
	require.NoError(t, err)

	// bumping another profile leaves this profile's keys stable
	assert.Equal(t, keyA, keyAAgain)
}

func TestNilCacheFallsThroughToLoader(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, 1, "summary")
	require.NoError(t, err)

	var out map[string]string
	err = cache.FetchJSON(ctx, key, &out, func(context.Context) (interface{}, error) {
		return map[string]string{"net_sales": "0.00"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", out["net_sales"])
}

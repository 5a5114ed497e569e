package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedLab struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestHelper(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheHelper(client, prefix), mr
}

func TestCacheHelper_SetGetRoundTrip(t *testing.T) {
	helper, _ := newTestHelper(t, "lab:")
	ctx := context.Background()

	original := cachedLab{ID: 42, Title: "SQL Injection Basics"}
	require.NoError(t, helper.Set(ctx, "id:42", original, time.Minute))

	var got cachedLab
	require.NoError(t, helper.Get(ctx, "id:42", &got))
	assert.Equal(t, original, got)
}

func TestCacheHelper_GetMissingKey(t *testing.T) {
	helper, _ := newTestHelper(t, "lab:")

	var got cachedLab
	err := helper.Get(context.Background(), "id:999", &got)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_StringHelpers(t *testing.T) {
	helper, _ := newTestHelper(t, "fast:")
	ctx := context.Background()

	require.NoError(t, helper.SetString(ctx, "slug:web-basics", "17", time.Minute))

	got, err := helper.GetString(ctx, "slug:web-basics")
	require.NoError(t, err)
	assert.Equal(t, "17", got)

	_, err = helper.GetString(ctx, "slug:unknown")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_DeleteAndExists(t *testing.T) {
	helper, _ := newTestHelper(t, "lab:")
	ctx := context.Background()

	require.NoError(t, helper.SetString(ctx, "id:1", "a", time.Minute))
	require.NoError(t, helper.SetString(ctx, "id:2", "b", time.Minute))

	exists, err := helper.Exists(ctx, "id:1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, helper.Delete(ctx, "id:1", "id:2"))

	exists, err = helper.Exists(ctx, "id:1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, mr := newTestHelper(t, "lab:")
	ctx := context.Background()

	require.NoError(t, helper.SetString(ctx, "list:page1", "x", time.Minute))
	require.NoError(t, helper.SetString(ctx, "list:page2", "y", time.Minute))
	require.NoError(t, helper.SetString(ctx, "id:7", "z", time.Minute))

	require.NoError(t, helper.InvalidatePattern(ctx, "list:*"))

	assert.False(t, mr.Exists("lab:list:page1"))
	assert.False(t, mr.Exists("lab:list:page2"))
	assert.True(t, mr.Exists("lab:id:7"))
}

func TestCacheHelper_TTLExpiry(t *testing.T) {
	helper, mr := newTestHelper(t, "stats:")
	ctx := context.Background()

	require.NoError(t, helper.SetString(ctx, "lab:3", "cached", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := helper.GetString(ctx, "lab:3")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "lab:")
	ctx := context.Background()

	assert.NoError(t, helper.Set(ctx, "id:1", cachedLab{ID: 1}, time.Minute))
	assert.NoError(t, helper.Delete(ctx, "id:1"))
	assert.NoError(t, helper.InvalidatePattern(ctx, "list:*"))

	var got cachedLab
	assert.ErrorIs(t, helper.Get(ctx, "id:1", &got), ErrCacheNotAvailable)

	_, err := helper.Exists(ctx, "id:1")
	assert.ErrorIs(t, err, ErrCacheNotAvailable)
}

func TestCacheOrExecute_FetchesOnMissThenServesFromCache(t *testing.T) {
	helper, _ := newTestHelper(t, "lab:")
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedLab{ID: 5, Title: "Buffer Overflows"}, nil
	}

	var first cachedLab
	require.NoError(t, helper.CacheOrExecute(ctx, "id:5", &first, time.Minute, fetch))
	assert.Equal(t, uint(5), first.ID)
	assert.Equal(t, 1, calls)

	// The write-back happens off the request path, so give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for {
		exists, err := helper.Exists(ctx, "id:5")
		require.NoError(t, err)
		if exists || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	var second cachedLab
	require.NoError(t, helper.CacheOrExecute(ctx, "id:5", &second, time.Minute, fetch))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCacheManager_InvalidateLab(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cm := NewCacheManager(client)
	ctx := context.Background()

	require.NoError(t, cm.Lab.SetString(ctx, "id:9", "lab", time.Minute))
	require.NoError(t, cm.Lab.SetString(ctx, "list:all", "labs", time.Minute))
	require.NoError(t, cm.Stats.SetString(ctx, "lab:9", "stats", time.Minute))
	require.NoError(t, cm.Lab.SetString(ctx, "id:10", "other", time.Minute))

	require.NoError(t, cm.InvalidateLab(ctx, 9))

	assert.False(t, mr.Exists("lab:id:9"))
	assert.False(t, mr.Exists("lab:list:all"))
	assert.False(t, mr.Exists("stats:lab:9"))
	assert.True(t, mr.Exists("lab:id:10"))
}

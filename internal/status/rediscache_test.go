package status_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/craftlist/craftlist/internal/status"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCacheTest(t *testing.T, ttl time.Duration) (status.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return status.NewRedisCache(client, ttl, zap.NewNop()), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache, _ := setupCacheTest(t, time.Minute)

	result := status.Result{
		Online:        true,
		PlayersOnline: 8,
		PlayersMax:    64,
		Version:       "1.21",
		MOTD:          []string{"Welcome"},
	}
	cache.Set("mc.example.com:25565:java", result)

	got, ok := cache.Get("mc.example.com:25565:java")
	require.True(t, ok)
	assert.Equal(t, result, got)
}

func TestRedisCacheMiss(t *testing.T) {
	t.Parallel()

	cache, _ := setupCacheTest(t, time.Minute)

	_, ok := cache.Get("mc.example.com:25565:java")
	assert.False(t, ok)
}

func TestRedisCacheExpiry(t *testing.T) {
	t.Parallel()

	cache, mr := setupCacheTest(t, time.Minute)

	cache.Set("mc.example.com:25565:java", status.Result{Online: true})

	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get("mc.example.com:25565:java")
	assert.False(t, ok)
}

func TestRedisCacheCachesOfflineResults(t *testing.T) {
	t.Parallel()

	cache, _ := setupCacheTest(t, time.Minute)

	cache.Set("down.example.com:25565:java", status.Result{})

	got, ok := cache.Get("down.example.com:25565:java")
	require.True(t, ok)
	assert.False(t, got.Online)
}

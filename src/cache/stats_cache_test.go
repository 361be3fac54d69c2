package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

type cachedStats struct {
	WinRate float64 `json:"win_rate"`
	Total   int     `json:"total"`
}

func TestStatsCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	c := NewStatsCache(store, time.Minute)

	var got cachedStats
	version, ok, err := c.Load(ctx, 3, "stats", "month", &got)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, int64(0), version)

	require.NoError(t, c.Save(ctx, 3, version, "stats", "month", cachedStats{WinRate: 50, Total: 4}))
	require.Equal(t, time.Minute, store.ttls["journal:3:v0:stats:month"])

	_, ok, err = c.Load(ctx, 3, "stats", "month", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cachedStats{WinRate: 50, Total: 4}, got)
}

func TestStatsCacheInvalidateBumpsVersion(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	c := NewStatsCache(store, time.Minute)

	require.NoError(t, c.Save(ctx, 3, 0, "equity", "all", []int{1, 2}))
	require.NoError(t, c.Save(ctx, 4, 0, "equity", "all", []int{9}))
	require.NoError(t, c.Invalidate(ctx, 3))

	var got []int
	version, ok, err := c.Load(ctx, 3, "equity", "all", &got)
	require.NoError(t, err)
	require.False(t, ok, "account 3 entry should be unreachable after invalidate")
	require.Equal(t, int64(1), version)

	_, ok, err = c.Load(ctx, 4, "equity", "all", &got)
	require.NoError(t, err)
	require.True(t, ok, "other accounts keep their entries")

	require.NoError(t, c.Save(ctx, 3, version, "equity", "all", []int{5}))
	_, exists := store.data["journal:3:v1:equity:all"]
	require.True(t, exists)
}

func TestStatsCacheSaveAfterInvalidateStaysUnreachable(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	c := NewStatsCache(store, time.Minute)

	var got cachedStats
	version, ok, err := c.Load(ctx, 3, "stats", "all", &got)
	require.NoError(t, err)
	require.False(t, ok)

	// a trade write invalidates while the miss is being recomputed
	require.NoError(t, c.Invalidate(ctx, 3))
	require.NoError(t, c.Save(ctx, 3, version, "stats", "all", cachedStats{Total: 4}))

	_, ok, err = c.Load(ctx, 3, "stats", "all", &got)
	require.NoError(t, err)
	require.False(t, ok, "value computed before the invalidate must not be served")
}

func TestStatsCacheStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	c := NewStatsCache(store, time.Minute)

	var got cachedStats
	_, ok, err := c.Load(context.Background(), 1, "stats", "all", &got)
	require.Error(t, err)
	require.False(t, ok)
}

func TestNopCache(t *testing.T) {
	var c Journal = NopCache{}
	_, ok, err := c.Load(context.Background(), 1, "stats", "all", &cachedStats{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Save(context.Background(), 1, 0, "stats", "all", cachedStats{}))
	require.NoError(t, c.Invalidate(context.Background(), 1))
}

func TestNewFromConfigWithoutRedis(t *testing.T) {
	c, closeFn, err := NewFromConfig(context.Background(), Config{})
	require.NoError(t, err)
	require.IsType(t, NopCache{}, c)
	require.NoError(t, closeFn())
}

func TestNewFromConfigRejectsBadURL(t *testing.T) {
	_, _, err := NewFromConfig(context.Background(), Config{RedisURL: "not-a-url://"})
	require.Error(t, err)
}

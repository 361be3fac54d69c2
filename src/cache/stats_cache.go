// Package cache keeps computed journal views (stats, equity, calendar) per
// account. Writes never delete keys: a trade change bumps the account's
// version counter so every older entry stops being addressed and expires.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/metrics"
)

// Store is the byte-level backend. RedisStore implements it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

type StatsCache struct {
	store Store
	ttl   time.Duration
}

func NewStatsCache(store Store, ttl time.Duration) *StatsCache {
	return &StatsCache{store: store, ttl: ttl}
}

func versionKey(accountID uint) string {
	return fmt.Sprintf("journal:%d:version", accountID)
}

func entryKey(accountID uint, version int64, kind, disc string) string {
	return fmt.Sprintf("journal:%d:v%d:%s:%s", accountID, version, kind, disc)
}

func (c *StatsCache) version(ctx context.Context, accountID uint) (int64, error) {
	raw, ok, err := c.store.Get(ctx, versionKey(accountID))
	if err != nil || !ok {
		return 0, err
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt cache version for account %d: %w", accountID, err)
	}
	return v, nil
}

// Load decodes the cached value into dest and reports false on a miss. The
// returned version is the one the lookup ran against; pass it to Save so a
// value computed before an Invalidate lands under the old, unreachable key.
func (c *StatsCache) Load(ctx context.Context, accountID uint, kind, disc string, dest interface{}) (int64, bool, error) {
	v, err := c.version(ctx, accountID)
	if err != nil {
		metrics.StatsCacheLookups.WithLabelValues(kind, "error").Inc()
		return 0, false, err
	}

	raw, ok, err := c.store.Get(ctx, entryKey(accountID, v, kind, disc))
	if err != nil {
		metrics.StatsCacheLookups.WithLabelValues(kind, "error").Inc()
		return v, false, err
	}
	if !ok {
		metrics.StatsCacheLookups.WithLabelValues(kind, "miss").Inc()
		return v, false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.StatsCacheLookups.WithLabelValues(kind, "error").Inc()
		return v, false, fmt.Errorf("decode cached %s: %w", kind, err)
	}
	metrics.StatsCacheLookups.WithLabelValues(kind, "hit").Inc()
	return v, true, nil
}

// Save stores value under the given version, normally the one Load returned.
func (c *StatsCache) Save(ctx context.Context, accountID uint, version int64, kind, disc string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", kind, err)
	}
	return c.store.Set(ctx, entryKey(accountID, version, kind, disc), raw, c.ttl)
}

// Invalidate drops every cached view of the account.
func (c *StatsCache) Invalidate(ctx context.Context, accountID uint) error {
	_, err := c.store.Incr(ctx, versionKey(accountID))
	return err
}

// NopCache never hits. It is used when REDIS_URL is unset.
type NopCache struct{}

func (NopCache) Load(context.Context, uint, string, string, interface{}) (int64, bool, error) {
	return 0, false, nil
}

func (NopCache) Save(context.Context, uint, int64, string, string, interface{}) error { return nil }

func (NopCache) Invalidate(context.Context, uint) error { return nil }

// Journal is what the service layer depends on.
type Journal interface {
	Load(ctx context.Context, accountID uint, kind, disc string, dest interface{}) (int64, bool, error)
	Save(ctx context.Context, accountID uint, version int64, kind, disc string, value interface{}) error
	Invalidate(ctx context.Context, accountID uint) error
}

// NewFromConfig connects to Redis when configured and falls back to NopCache
// otherwise. The returned close func is always safe to call.
func NewFromConfig(ctx context.Context, cfg Config) (Journal, func() error, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, stats cache disabled")
		return NopCache{}, func() error { return nil }, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	store := NewRedisStore(opt)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.WithField("ttl", cfg.TTL.String()).Info("Stats cache backed by Redis")
	return NewStatsCache(store, cfg.TTL), store.Close, nil
}

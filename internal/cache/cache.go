// Package cache implements explicit cache-aside reads for the catalog on top
// of Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL applies when neither the call site nor the Cache sets one.
const DefaultTTL = 5 * time.Minute

// Store is the key-value surface the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// Cache wraps a Store. A nil *Cache is valid and caches nothing.
type Cache struct {
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

// New creates a Cache over store.
func New(store Store, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{store: store, ttl: ttl, log: log}
}

// Aside returns the cached value for key, or calls load and caches its
// result. Cache failures are logged and fall through to load.
func Aside[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.log.Warn("cache entry undecodable, reloading", zap.String("key", key))
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if err := c.store.Set(ctx, key, encoded, ttl); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// ListVersion is the current generation of food list keys. Zero means the
// version could not be read; callers should treat lists as uncacheable.
func (c *Cache) ListVersion(ctx context.Context) int64 {
	if c == nil {
		return 0
	}
	v, err := c.store.GetInt(ctx, foodListVersionKey)
	if err != nil {
		c.log.Warn("cache version read failed", zap.Error(err))
		return 0
	}
	if v == 0 {
		// First use: start at generation 1.
		if v, err = c.store.Incr(ctx, foodListVersionKey); err != nil {
			c.log.Warn("cache version init failed", zap.Error(err))
			return 0
		}
	}
	return v
}

// InvalidateFoods drops the detail keys for ids and retires every cached
// food list by bumping the list version.
func (c *Cache) InvalidateFoods(ctx context.Context, ids ...uuid.UUID) error {
	if c == nil {
		return nil
	}
	var errs []error
	if len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, Keys.Food(id))
		}
		if err := c.store.Del(ctx, keys...); err != nil {
			errs = append(errs, fmt.Errorf("delete food keys: %w", err))
		}
	}
	if _, err := c.store.Incr(ctx, foodListVersionKey); err != nil {
		errs = append(errs, fmt.Errorf("bump food list version: %w", err))
	}
	return errors.Join(errs...)
}

// --- Redis ---

// RedisStore adapts a go-redis client to Store.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.rdb.Incr(ctx, key).Result()
}

func (s *RedisStore) GetInt(ctx context.Context, key string) (int64, error) {
	v, err := s.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-storefront/cache"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the shared Redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Namespace is prepended to every key so several deployments can share
	// one Redis database.
	Namespace string

	// ScanCount is the COUNT hint passed to SCAN while deleting by prefix.
	ScanCount int64
}

// DefaultRedisConfig returns the local development settings.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      "localhost:6379",
		ScanCount: 100,
	}
}

// Validate checks if the configuration values are valid.
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Redis.Addr", Message: "is required"}
	}
	if c.DB < 0 {
		return &ConfigError{Field: "Redis.DB", Message: "must be non-negative"}
	}
	if c.ScanCount < 0 {
		return &ConfigError{Field: "Redis.ScanCount", Message: "must be non-negative"}
	}
	return nil
}

// RedisStore is a cache.Backend on top of go-redis.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	scanCount int64
}

var _ cache.Backend = (*RedisStore)(nil)

// NewRedisStore opens a client for cfg. The connection is established lazily;
// call Ping to verify it.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg), nil
}

// NewRedisStoreWithClient wraps an existing client. The store owns the client
// and closes it on Close.
func NewRedisStoreWithClient(client redis.UniversalClient, cfg RedisConfig) *RedisStore {
	count := cfg.ScanCount
	if count <= 0 {
		count = 100
	}
	return &RedisStore{client: client, namespace: cfg.Namespace, scanCount: count}
}

func (s *RedisStore) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("redis get", err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return unavailable("redis set", err)
	}
	return nil
}

// DeleteByPrefix walks the keyspace with SCAN MATCH and deletes each batch.
// Keys written concurrently with the walk may survive it.
func (s *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	pattern := escapeGlob(s.key(prefix)) + "*"

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, s.scanCount).Result()
		if err != nil {
			return deleted, unavailable("redis scan", err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, unavailable("redis del", err)
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("redis ping", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, cache.ErrCacheUnavailable, err)
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob makes prefix match literally inside a SCAN pattern.
func escapeGlob(prefix string) string {
	return globReplacer.Replace(prefix)
}

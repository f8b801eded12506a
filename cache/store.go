package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheUnavailable marks transport failures against the cache backend.
	// Callers may bypass the cache when they see it instead of failing the request.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrInvalidResultType is returned when a shared in-flight result cannot be
	// converted to the type the caller asked for.
	ErrInvalidResultType = errors.New("cache: invalid result type")
)

// Store is the key/value contract the cache-aside layer is built on.
//
// Get on an absent or expired key reports ok=false with a nil error. A non-nil
// error always means the backend could not answer.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// Backend is a Store with an explicit lifecycle.
type Backend interface {
	Store
	Ping(ctx context.Context) error
	Close() error
}

// FetchFn loads a value from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

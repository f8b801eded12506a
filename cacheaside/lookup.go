package cacheaside

import (
	"context"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-storefront/cache"
)

// Lookup serves tag:discriminator from the cache, or runs fetch and stores its
// result. Errors from fetch are returned as is and never cached.
//
// Freshness is judged only by presence: an entry is served until it expires or
// its tag is invalidated. A read that misses before a concurrent write and
// populates after that write's invalidation stores the pre-write value; the
// stale entry lives at most one TTL.
func Lookup[T any](ctx context.Context, l *Layer, tag cache.Tag, discriminator string, fetch cache.FetchFn[T]) (T, error) {
	if l == nil {
		return fetch(ctx)
	}

	var zero T
	key := tag.Key(discriminator)

	raw, ok, err := l.get(ctx, tag, key)
	if err != nil && l.strict {
		return zero, err
	}
	if ok {
		var v T
		derr := l.codec.Decode(raw, &v)
		if derr == nil {
			l.metrics.hit(tag.String())
			return v, nil
		}
		l.logger.Warn().Err(derr).Str("tag", tag.String()).Str("key", key).Msg("discarding undecodable cache entry")
	}
	l.metrics.miss(tag.String())

	if l.coalesce {
		return coalesced[T](ctx, l, tag, key, fetch)
	}
	return populate[T](ctx, l, tag, key, fetch)
}

// PointLookup resolves one record by id through the cache, falling back to
// fetch. fetch reports found=false for records that do not exist or are
// hidden; those fail with "<resource> not found" and are not cached.
func PointLookup[T any](ctx context.Context, l *Layer, tag cache.Tag, id, resource string, fetch func(context.Context) (T, bool, error)) (T, error) {
	return Lookup[T](ctx, l, tag, id, func(ctx context.Context) (T, error) {
		v, found, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		if !found {
			var zero T
			return zero, NotFound(resource)
		}
		return v, nil
	})
}

// MutateAndInvalidate runs mutate and, only when it succeeds, wipes tags.
// Invalidation failures are logged and never change the result.
func MutateAndInvalidate[T any](ctx context.Context, l *Layer, tags []cache.Tag, mutate cache.FetchFn[T]) (T, error) {
	v, err := mutate(ctx)
	if err != nil {
		return v, err
	}
	_ = l.Invalidate(ctx, tags...)
	return v, nil
}

// NotFound is the error returned for absent or hidden records.
func NotFound(resource string) error {
	return goerrors.New(resource+" not found", goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode("NOT_FOUND")
}

func populate[T any](ctx context.Context, l *Layer, tag cache.Tag, key string, fetch cache.FetchFn[T]) (T, error) {
	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if err := l.set(ctx, tag, key, v); err != nil && l.strict {
		var zero T
		return zero, err
	}
	return v, nil
}

type flight struct {
	done chan struct{}
	val  any
	err  error
}

// coalesced lets the first miss on key fetch while concurrent misses wait for
// its result.
func coalesced[T any](ctx context.Context, l *Layer, tag cache.Tag, key string, fetch cache.FetchFn[T]) (T, error) {
	var zero T
	f := &flight{done: make(chan struct{})}

	if leader, loaded := l.inflight.LoadOrStore(key, f); loaded {
		select {
		case <-leader.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		if leader.err != nil {
			return zero, leader.err
		}
		v, ok := leader.val.(T)
		if !ok {
			return zero, cache.ErrInvalidResultType
		}
		return v, nil
	}

	defer func() {
		l.inflight.Delete(key)
		close(f.done)
	}()

	v, err := populate[T](ctx, l, tag, key, fetch)
	f.val, f.err = v, err
	return v, err
}

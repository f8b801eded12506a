package cacheaside

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-storefront/cache"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// Layer binds a cache.Store to the policy used by every cached read and
// invalidating write. Build one at startup and share it.
type Layer struct {
	store     cache.Store
	codec     cache.Codec
	ttl       time.Duration
	opTimeout time.Duration
	strict    bool
	coalesce  bool
	inflight  *xsync.MapOf[string, *flight]
	logger    zerolog.Logger
	metrics   *Metrics
}

// Option customizes a Layer.
type Option func(*Layer)

// WithLogger sets the logger used for degraded cache operations.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Layer) { l.logger = logger }
}

// WithMetrics attaches prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(l *Layer) { l.metrics = m }
}

// WithCodec overrides the codec selected by the config.
func WithCodec(c cache.Codec) Option {
	return func(l *Layer) { l.codec = c }
}

// New creates a Layer over store. cfg is expected to be valid; a zero
// DefaultTTL falls back to cache.DefaultConfig.
func New(store cache.Store, cfg cache.Config, opts ...Option) *Layer {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = cache.DefaultConfig().DefaultTTL
	}
	l := &Layer{
		store:     store,
		codec:     cache.CodecByName(cfg.Codec),
		ttl:       cfg.DefaultTTL,
		opTimeout: cfg.OpTimeout,
		strict:    cfg.Strict,
		coalesce:  cfg.Coalesce,
		inflight:  xsync.NewMapOf[string, *flight](),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TTL is the expiry applied to populated entries.
func (l *Layer) TTL() time.Duration { return l.ttl }

func (l *Layer) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.opTimeout)
}

func (l *Layer) get(ctx context.Context, tag cache.Tag, key string) ([]byte, bool, error) {
	ctx, cancel := l.opContext(ctx)
	defer cancel()

	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		l.metrics.failure(tag.String(), "get")
		l.logger.Warn().Err(err).Str("tag", tag.String()).Str("key", key).Msg("cache get failed")
		return nil, false, asUnavailable(err)
	}
	return raw, ok, nil
}

func (l *Layer) set(ctx context.Context, tag cache.Tag, key string, value any) error {
	raw, err := l.codec.Encode(value)
	if err != nil {
		l.metrics.failure(tag.String(), "encode")
		l.logger.Warn().Err(err).Str("tag", tag.String()).Str("key", key).Msg("cache encode failed")
		return nil
	}

	ctx, cancel := l.opContext(ctx)
	defer cancel()

	if err := l.store.Set(ctx, key, raw, l.ttl); err != nil {
		l.metrics.failure(tag.String(), "set")
		l.logger.Warn().Err(err).Str("tag", tag.String()).Str("key", key).Msg("cache set failed")
		return asUnavailable(err)
	}
	return nil
}

// Invalidate removes every entry under each tag. Failures are logged and
// joined into the returned error; callers on the write path ignore it.
// The request context's cancellation is dropped so a client hanging up after
// a successful write does not leave the tag populated.
func (l *Layer) Invalidate(ctx context.Context, tags ...cache.Tag) error {
	if l == nil {
		return nil
	}
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, tag := range dedupeTags(tags) {
		opCtx, cancel := l.opContext(ctx)
		n, err := l.store.DeleteByPrefix(opCtx, tag.Prefix())
		cancel()
		if err != nil {
			l.metrics.failure(tag.String(), "invalidate")
			l.logger.Warn().Err(err).Str("tag", tag.String()).Msg("cache invalidation failed")
			errs = append(errs, fmt.Errorf("invalidate %s: %w", tag, err))
			continue
		}
		l.metrics.invalidated(tag.String())
		l.logger.Debug().Str("tag", tag.String()).Int("deleted", n).Msg("cache invalidated")
	}
	return errors.Join(errs...)
}

func asUnavailable(err error) error {
	if errors.Is(err, cache.ErrCacheUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", cache.ErrCacheUnavailable, err)
}

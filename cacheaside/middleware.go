package cacheaside

import (
	"context"

	"github.com/goliatone/go-storefront/cache"
)

// Handler is an endpoint body: a request in, a response or an error out.
type Handler[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Middleware wraps a Handler.
type Middleware[Req, Res any] func(next Handler[Req, Res]) Handler[Req, Res]

// Chain applies mws around h. The first middleware is the outermost.
func Chain[Req, Res any](h Handler[Req, Res], mws ...Middleware[Req, Res]) Handler[Req, Res] {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// Cached serves the wrapped read from the cache under tag. keyFn derives the
// discriminator from the request. On a hit next is not called at all.
func Cached[Req, Res any](l *Layer, tag cache.Tag, keyFn func(Req) string) Middleware[Req, Res] {
	return func(next Handler[Req, Res]) Handler[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			return Lookup[Res](ctx, l, tag, keyFn(req), func(ctx context.Context) (Res, error) {
				return next(ctx, req)
			})
		}
	}
}

// Invalidates wipes tags after the wrapped write succeeds.
func Invalidates[Req, Res any](l *Layer, tags ...cache.Tag) Middleware[Req, Res] {
	tags = dedupeTags(tags)
	return func(next Handler[Req, Res]) Handler[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			return MutateAndInvalidate[Res](ctx, l, tags, func(ctx context.Context) (Res, error) {
				return next(ctx, req)
			})
		}
	}
}

// SerializedKey builds a keyFn that renders the whole request with s.
func SerializedKey[Req any](s cache.KeySerializer) func(Req) string {
	return func(req Req) string {
		return s.SerializeKey(req)
	}
}

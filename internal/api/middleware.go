package api

import (
	"context"

	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/auth"
	"github.com/goliatone/go-storefront/internal/domain"
)

// authorize rejects callers without an identity, or without one of roles when
// roles is not empty.
func authorize[Req, Res any](roles ...domain.Role) cacheaside.Middleware[Req, Res] {
	return func(next cacheaside.Handler[Req, Res]) cacheaside.Handler[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			id, _ := auth.FromContext(ctx)
			if err := auth.Authorize(id, roles...); err != nil {
				var zero Res
				return zero, err
			}
			return next(ctx, req)
		}
	}
}

// validate runs the request's own checks before anything touches the cache.
func validate[Req, Res any]() cacheaside.Middleware[Req, Res] {
	return func(next cacheaside.Handler[Req, Res]) cacheaside.Handler[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			if err := check(req); err != nil {
				var zero Res
				return zero, err
			}
			return next(ctx, req)
		}
	}
}

func check(req any) error {
	switch r := req.(type) {
	case checker:
		return r.Check()
	case validatable:
		return domain.Check(r)
	}
	return nil
}

// normalize rewrites the request so that equivalent queries share one cache
// key.
func normalize[Req, Res any](fn func(Req) Req) cacheaside.Middleware[Req, Res] {
	return func(next cacheaside.Handler[Req, Res]) cacheaside.Handler[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			return next(ctx, fn(req))
		}
	}
}

func caller(ctx context.Context) string {
	id, _ := auth.FromContext(ctx)
	return id.UserID
}

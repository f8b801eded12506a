package api

import (
	"context"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/catalog"
	"github.com/goliatone/go-storefront/internal/cachekeys"
	"github.com/goliatone/go-storefront/internal/domain"
)

// userWrites are the tags every change to an existing account makes stale.
var userWrites = []cache.Tag{cachekeys.GetUser, cachekeys.ListUsers}

func (a *API) userEndpoints(users *catalog.Users, layer *cacheaside.Layer, keys cache.KeySerializer, cfg Config) {
	a.CreateUser = cacheaside.Chain(
		func(ctx context.Context, in domain.UserInput) (*domain.User, error) {
			return users.Create(ctx, in)
		},
		validate[domain.UserInput, *domain.User](),
		cacheaside.Invalidates[domain.UserInput, *domain.User](layer, cachekeys.ListUsers),
	)

	a.ListUsers = cacheaside.Chain(
		func(ctx context.Context, q domain.UserQuery) ([]*domain.User, error) {
			return users.List(ctx, q)
		},
		authorize[domain.UserQuery, []*domain.User](domain.AdminRoles...),
		validate[domain.UserQuery, []*domain.User](),
		normalize[domain.UserQuery, []*domain.User](func(q domain.UserQuery) domain.UserQuery {
			return q.Normalize(cfg.PageLimit)
		}),
		cacheaside.Cached[domain.UserQuery, []*domain.User](layer, cachekeys.ListUsers, cacheaside.SerializedKey[domain.UserQuery](keys)),
	)

	a.GetUser = cacheaside.Chain(
		func(ctx context.Context, r ByID) (*domain.User, error) {
			return users.FindByID(ctx, r.ID)
		},
		authorize[ByID, *domain.User](),
		validate[ByID, *domain.User](),
	)

	a.Profile = cacheaside.Chain(
		func(ctx context.Context, _ Empty) (*domain.User, error) {
			return users.FindByID(ctx, caller(ctx))
		},
		authorize[Empty, *domain.User](),
	)

	a.UpdateProfile = cacheaside.Chain(
		func(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
			return users.Update(ctx, caller(ctx), patch)
		},
		authorize[domain.UserPatch, *domain.User](),
		validate[domain.UserPatch, *domain.User](),
		cacheaside.Invalidates[domain.UserPatch, *domain.User](layer, userWrites...),
	)

	a.RemoveProfile = cacheaside.Chain(
		func(ctx context.Context, _ Empty) (Empty, error) {
			return Empty{}, users.Remove(ctx, caller(ctx))
		},
		authorize[Empty, Empty](),
		cacheaside.Invalidates[Empty, Empty](layer, userWrites...),
	)

	a.UploadImage = cacheaside.Chain(
		func(ctx context.Context, r ProfileImage) (string, error) {
			return users.UploadImage(ctx, caller(ctx), *r.Upload)
		},
		authorize[ProfileImage, string](),
		validate[ProfileImage, string](),
		cacheaside.Invalidates[ProfileImage, string](layer, userWrites...),
	)

	a.GetCart = cacheaside.Chain(
		func(ctx context.Context, _ Empty) ([]string, error) {
			return users.GetCart(ctx, caller(ctx))
		},
		authorize[Empty, []string](),
	)

	a.AddToCart = cacheaside.Chain(
		func(ctx context.Context, in domain.CartInput) ([]string, error) {
			return users.AddToCart(ctx, caller(ctx), in.Items)
		},
		authorize[domain.CartInput, []string](),
		validate[domain.CartInput, []string](),
		cacheaside.Invalidates[domain.CartInput, []string](layer, userWrites...),
	)

	a.RemoveFromCart = cacheaside.Chain(
		func(ctx context.Context, in domain.CartInput) ([]string, error) {
			return users.RemoveFromCart(ctx, caller(ctx), in.Items)
		},
		authorize[domain.CartInput, []string](),
		validate[domain.CartInput, []string](),
		cacheaside.Invalidates[domain.CartInput, []string](layer, userWrites...),
	)
}

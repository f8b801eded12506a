package api

import (
	"context"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/catalog"
	"github.com/goliatone/go-storefront/internal/cachekeys"
	"github.com/goliatone/go-storefront/internal/domain"
)

// itemWrites are the tags every change to an existing item makes stale.
var itemWrites = []cache.Tag{cachekeys.ListItems, cachekeys.GetItem}

func (a *API) itemEndpoints(items *catalog.Items, layer *cacheaside.Layer, keys cache.KeySerializer, cfg Config) {
	a.CreateItem = cacheaside.Chain(
		func(ctx context.Context, in domain.ItemInput) (*domain.Item, error) {
			return items.Create(ctx, in)
		},
		authorize[domain.ItemInput, *domain.Item](domain.AdminRoles...),
		validate[domain.ItemInput, *domain.Item](),
		cacheaside.Invalidates[domain.ItemInput, *domain.Item](layer, cachekeys.ListItems),
	)

	a.ListItems = cacheaside.Chain(
		func(ctx context.Context, q domain.ItemQuery) ([]*domain.Item, error) {
			return items.List(ctx, q)
		},
		validate[domain.ItemQuery, []*domain.Item](),
		normalize[domain.ItemQuery, []*domain.Item](func(q domain.ItemQuery) domain.ItemQuery {
			return q.Normalize(cfg.PageLimit)
		}),
		cacheaside.Cached[domain.ItemQuery, []*domain.Item](layer, cachekeys.ListItems, cacheaside.SerializedKey[domain.ItemQuery](keys)),
	)

	a.GetItem = cacheaside.Chain(
		func(ctx context.Context, r ByID) (*domain.Item, error) {
			return items.Get(ctx, r.ID)
		},
		validate[ByID, *domain.Item](),
	)

	a.UpdateItem = cacheaside.Chain(
		func(ctx context.Context, r ItemUpdate) (*domain.Item, error) {
			return items.Update(ctx, r.ID, r.Patch)
		},
		authorize[ItemUpdate, *domain.Item](domain.AdminRoles...),
		validate[ItemUpdate, *domain.Item](),
		cacheaside.Invalidates[ItemUpdate, *domain.Item](layer, itemWrites...),
	)

	a.DeleteItem = cacheaside.Chain(
		func(ctx context.Context, r ByID) (Empty, error) {
			return Empty{}, items.Delete(ctx, r.ID)
		},
		authorize[ByID, Empty](domain.AdminRoles...),
		validate[ByID, Empty](),
		cacheaside.Invalidates[ByID, Empty](layer, itemWrites...),
	)

	a.AddToWishlist = cacheaside.Chain(
		func(ctx context.Context, r ByID) (*domain.Item, error) {
			return items.AddToWishlist(ctx, r.ID, caller(ctx))
		},
		authorize[ByID, *domain.Item](),
		validate[ByID, *domain.Item](),
		cacheaside.Invalidates[ByID, *domain.Item](layer, itemWrites...),
	)

	a.RemoveFromWishlist = cacheaside.Chain(
		func(ctx context.Context, r ByID) (*domain.Item, error) {
			return items.RemoveFromWishlist(ctx, r.ID, caller(ctx))
		},
		authorize[ByID, *domain.Item](),
		validate[ByID, *domain.Item](),
		cacheaside.Invalidates[ByID, *domain.Item](layer, itemWrites...),
	)

	a.AddItemImages = cacheaside.Chain(
		func(ctx context.Context, r ImageUpload) ([]string, error) {
			return items.AddImages(ctx, r.ID, r.Uploads)
		},
		authorize[ImageUpload, []string](domain.AdminRoles...),
		validate[ImageUpload, []string](),
		cacheaside.Invalidates[ImageUpload, []string](layer, itemWrites...),
	)

	a.RemoveItemImages = cacheaside.Chain(
		func(ctx context.Context, r ImageRemoval) ([]string, error) {
			return items.RemoveImages(ctx, r.ID, r.Body.Files)
		},
		authorize[ImageRemoval, []string](domain.AdminRoles...),
		validate[ImageRemoval, []string](),
		cacheaside.Invalidates[ImageRemoval, []string](layer, itemWrites...),
	)
}

package api

import (
	"context"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/catalog"
	"github.com/goliatone/go-storefront/internal/cachekeys"
	"github.com/goliatone/go-storefront/internal/domain"
)

func (a *API) orderEndpoints(orders *catalog.Orders, layer *cacheaside.Layer, keys cache.KeySerializer, cfg Config) {
	a.CreateOrder = cacheaside.Chain(
		func(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
			return orders.Create(ctx, caller(ctx), in)
		},
		authorize[domain.OrderInput, *domain.Order](),
		validate[domain.OrderInput, *domain.Order](),
		cacheaside.Invalidates[domain.OrderInput, *domain.Order](layer, cachekeys.ListOrders),
	)

	a.ListOrders = cacheaside.Chain(
		func(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, error) {
			return orders.List(ctx, q)
		},
		authorize[domain.OrderQuery, []*domain.Order](),
		validate[domain.OrderQuery, []*domain.Order](),
		normalize[domain.OrderQuery, []*domain.Order](func(q domain.OrderQuery) domain.OrderQuery {
			return q.Normalize(cfg.PageLimit)
		}),
		cacheaside.Cached[domain.OrderQuery, []*domain.Order](layer, cachekeys.ListOrders, cacheaside.SerializedKey[domain.OrderQuery](keys)),
	)

	a.GetOrder = cacheaside.Chain(
		func(ctx context.Context, r ByID) (*domain.Order, error) {
			return orders.Get(ctx, r.ID)
		},
		authorize[ByID, *domain.Order](),
		validate[ByID, *domain.Order](),
	)

	a.UpdateOrder = cacheaside.Chain(
		func(ctx context.Context, r OrderUpdate) (*domain.Order, error) {
			return orders.Update(ctx, r.ID, r.Patch)
		},
		authorize[OrderUpdate, *domain.Order](domain.AdminRoles...),
		validate[OrderUpdate, *domain.Order](),
		cacheaside.Invalidates[OrderUpdate, *domain.Order](layer, cachekeys.ListOrders, cachekeys.GetOrder),
	)
}

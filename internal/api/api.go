// Package api composes the storefront endpoints.
//
// Every endpoint is a catalog call wrapped by the same chain: authorize, then
// validate, then either a cached read keyed by the normalized request or a
// write that invalidates the tags it made stale. Transports decode requests,
// attach the caller identity to the context and call the handlers.
package api

import (
	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/catalog"
	"github.com/goliatone/go-storefront/internal/domain"
)

// API holds one handler per endpoint.
type API struct {
	CreateItem         cacheaside.Handler[domain.ItemInput, *domain.Item]
	ListItems          cacheaside.Handler[domain.ItemQuery, []*domain.Item]
	GetItem            cacheaside.Handler[ByID, *domain.Item]
	UpdateItem         cacheaside.Handler[ItemUpdate, *domain.Item]
	DeleteItem         cacheaside.Handler[ByID, Empty]
	AddToWishlist      cacheaside.Handler[ByID, *domain.Item]
	RemoveFromWishlist cacheaside.Handler[ByID, *domain.Item]
	AddItemImages      cacheaside.Handler[ImageUpload, []string]
	RemoveItemImages   cacheaside.Handler[ImageRemoval, []string]

	CreateOrder cacheaside.Handler[domain.OrderInput, *domain.Order]
	ListOrders  cacheaside.Handler[domain.OrderQuery, []*domain.Order]
	GetOrder    cacheaside.Handler[ByID, *domain.Order]
	UpdateOrder cacheaside.Handler[OrderUpdate, *domain.Order]

	CreateUser cacheaside.Handler[domain.UserInput, *domain.User]
	ListUsers  cacheaside.Handler[domain.UserQuery, []*domain.User]
	GetUser    cacheaside.Handler[ByID, *domain.User]

	Profile        cacheaside.Handler[Empty, *domain.User]
	UpdateProfile  cacheaside.Handler[domain.UserPatch, *domain.User]
	RemoveProfile  cacheaside.Handler[Empty, Empty]
	UploadImage    cacheaside.Handler[ProfileImage, string]
	GetCart        cacheaside.Handler[Empty, []string]
	AddToCart      cacheaside.Handler[domain.CartInput, []string]
	RemoveFromCart cacheaside.Handler[domain.CartInput, []string]
}

// Services are the catalog services the endpoints call.
type Services struct {
	Items  *catalog.Items
	Orders *catalog.Orders
	Users  *catalog.Users
}

// Config tunes list endpoints.
type Config struct {
	PageLimit int
}

// New wires every endpoint against layer. A nil serializer falls back to the
// default one.
func New(svc Services, layer *cacheaside.Layer, keys cache.KeySerializer, cfg Config) *API {
	if keys == nil {
		keys = cache.NewDefaultKeySerializer()
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = domain.DefaultPageLimit
	}

	a := &API{}
	a.itemEndpoints(svc.Items, layer, keys, cfg)
	a.orderEndpoints(svc.Orders, layer, keys, cfg)
	a.userEndpoints(svc.Users, layer, keys, cfg)
	return a
}

// Package cachekeys enumerates the cache tags used by the storefront.
package cachekeys

import "github.com/goliatone/go-storefront/cache"

const (
	ListItems  cache.Tag = "list-items"
	GetItem    cache.Tag = "get-item"
	ListOrders cache.Tag = "list-orders"
	GetOrder   cache.Tag = "get-order"
	ListUsers  cache.Tag = "list-users"
	GetUser    cache.Tag = "get-user"
)

// Tags returns every registered tag.
func Tags() []cache.Tag {
	return []cache.Tag{ListItems, GetItem, ListOrders, GetOrder, ListUsers, GetUser}
}

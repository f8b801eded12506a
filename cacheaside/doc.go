// Package cacheaside implements the cache-aside read path and tag-wide
// invalidation used by every storefront endpoint.
//
// # Overview
//
// A Layer owns the cache policy: the cache.Store, the value codec, the default
// TTL, per-call timeouts and what to do when the cache is down. Reads and
// writes go through generic helpers:
//
//   - Lookup: hit returns the cached value, miss runs the fetcher and
//     populates on success; list endpoints key it by the serialized query
//   - PointLookup: Lookup for a single record with "<Resource> not found"
//     semantics for absent records
//   - MutateAndInvalidate: run a write, then delete every key under each tag
//
// # Route composition
//
// The same helpers are available as middleware values so that an endpoint's
// cache behaviour is plain data chosen at registration time:
//
//	list := cacheaside.Chain(items.List,
//		cacheaside.Cached[ItemQuery, Page](layer, cachekeys.ListItems, cacheaside.SerializedKey[ItemQuery](serializer)),
//	)
//	create := cacheaside.Chain(items.Create,
//		cacheaside.Invalidates[ItemInput, *Item](layer, cachekeys.ListItems),
//	)
//
// # Degradation
//
// By default a failing cache is bypassed: a Get error is treated as a miss and
// a Set error is logged. With cache.Config.Strict the error is returned
// instead, wrapped around cache.ErrCacheUnavailable. Invalidation is always
// best effort.
//
// # Consistency
//
// Invalidation and population are not ordered against each other. A read that
// misses before a concurrent write and populates after the write's
// invalidation leaves a stale entry that lives until the next invalidation of
// its tag or until its TTL runs out.
package cacheaside

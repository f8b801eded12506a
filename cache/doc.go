// Package cache defines the key/value contract behind the storefront's
// cache-aside layer.
//
// # Overview
//
//   - Store / Backend: get, set with per-entry TTL, delete-by-prefix, plus Ping/Close
//   - Tag: a named group of entries; keys are tag + ":" + discriminator
//   - KeySerializer: renders request identity (ids, query structs) into a discriminator
//   - Codec: msgpack (default) or JSON encoding of cached values
//
// # Keys
//
// A list query is cached under its tag with the canonical form of the query as
// discriminator:
//
//	serializer := cache.NewDefaultKeySerializer()
//	key := cachekeys.ListItems.Key(serializer.SerializeKey(query))
//	// list-items:{limit=20&offset=0&query="lamp"&sort="desc"}
//
// Invalidation always goes through Tag.Prefix so that every key under the tag
// is removed regardless of its discriminator.
//
// # Failure semantics
//
// A Get on a missing or expired key is not an error. Transport failures wrap
// ErrCacheUnavailable so callers can choose to bypass the cache.
//
// Implementations live in internal/cacheinfra; the read and write wrappers live
// in the cacheaside package.
package cache

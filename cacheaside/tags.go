package cacheaside

import "github.com/goliatone/go-storefront/cache"

// dedupeTags drops empty and repeated tags, keeping first-seen order.
func dedupeTags(tags []cache.Tag) []cache.Tag {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[cache.Tag]struct{}, len(tags))
	out := make([]cache.Tag, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

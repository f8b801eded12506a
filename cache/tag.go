package cache

// KeySeparator joins a tag and a discriminator.
const KeySeparator = ":"

// Tag names a class of cached entries that are invalidated together.
type Tag string

// Key returns the cache key for discriminator d under the tag.
func (t Tag) Key(d string) string {
	return string(t) + KeySeparator + d
}

// Prefix returns the prefix shared by every key under the tag. The trailing
// separator keeps "list-items" from matching "list-items-archive".
func (t Tag) Prefix() string {
	return string(t) + KeySeparator
}

func (t Tag) String() string { return string(t) }

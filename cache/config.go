package cache

import "time"

// Config controls how the cache-aside layer talks to its Store.
type Config struct {
	// DefaultTTL applies to every entry populated on a miss.
	DefaultTTL time.Duration

	// OpTimeout bounds each Get/Set/DeleteByPrefix call. Zero disables it.
	OpTimeout time.Duration

	// Strict propagates ErrCacheUnavailable instead of bypassing the cache.
	Strict bool

	// Coalesce shares one fetch between concurrent misses on the same key.
	Coalesce bool

	// Codec is "msgpack" (default) or "json".
	Codec string
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 5 * time.Minute,
		OpTimeout:  250 * time.Millisecond,
		Codec:      "msgpack",
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.DefaultTTL <= 0 {
		return &ConfigError{Field: "DefaultTTL", Message: "must be greater than 0"}
	}
	if c.OpTimeout < 0 {
		return &ConfigError{Field: "OpTimeout", Message: "must be non-negative"}
	}
	switch c.Codec {
	case "", "msgpack", "json":
	default:
		return &ConfigError{Field: "Codec", Message: "must be one of msgpack, json"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

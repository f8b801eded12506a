package cacheinfra

import (
	"github.com/goliatone/go-storefront/cache"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	Driver string
	Memory MemoryConfig
	Redis  RedisConfig
}

// DefaultConfig returns an in-memory setup.
func DefaultConfig() Config {
	return Config{
		Driver: DriverMemory,
		Memory: DefaultMemoryConfig(),
		Redis:  DefaultRedisConfig(),
	}
}

// Validate checks the section selected by Driver.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return c.Memory.Validate()
	case DriverRedis:
		return c.Redis.Validate()
	default:
		return &ConfigError{Field: "Driver", Message: "must be one of memory, redis"}
	}
}

// New builds the backend selected by cfg.Driver.
func New(cfg Config) (cache.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Driver == DriverRedis {
		store, err := NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := NewMemoryStore(cfg.Memory)
	if err != nil {
		return nil, err
	}
	return store, nil
}

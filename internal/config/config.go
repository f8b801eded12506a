// Package config loads the storefront configuration from defaults, an
// optional file, an optional .env file and STOREFRONT_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/internal/auth"
	"github.com/goliatone/go-storefront/internal/blob"
	"github.com/goliatone/go-storefront/internal/cacheinfra"
	"github.com/goliatone/go-storefront/internal/catalog"
	"github.com/goliatone/go-storefront/internal/httpapi"
	"github.com/goliatone/go-storefront/internal/notify"
	"github.com/goliatone/go-storefront/internal/store"
	"github.com/goliatone/go-storefront/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "STOREFRONT"

const (
	BlobMemory = "memory"
	BlobMinio  = "minio"

	MailLog  = "log"
	MailSMTP = "smtp"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Blob    BlobConfig    `mapstructure:"blob"`
	Mail    MailConfig    `mapstructure:"mail"`
	Log     LogConfig     `mapstructure:"log"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type StoreConfig struct {
	Driver       string        `mapstructure:"driver"`
	DSN          string        `mapstructure:"dsn"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	AutoMigrate  bool          `mapstructure:"auto_migrate"`
}

type CacheConfig struct {
	Driver     string        `mapstructure:"driver"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	OpTimeout  time.Duration `mapstructure:"op_timeout"`
	Strict     bool          `mapstructure:"strict"`
	Coalesce   bool          `mapstructure:"coalesce"`
	Codec      string        `mapstructure:"codec"`
	Memory     MemoryConfig  `mapstructure:"memory"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

type MemoryConfig struct {
	Capacity           int           `mapstructure:"capacity"`
	NumShards          int           `mapstructure:"num_shards"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Namespace string `mapstructure:"namespace"`
}

type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type BlobConfig struct {
	Driver     string `mapstructure:"driver"`
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	Bucket     string `mapstructure:"bucket"`
	Region     string `mapstructure:"region"`
	Secure     bool   `mapstructure:"secure"`
	TempPrefix string `mapstructure:"temp_prefix"`
}

type MailConfig struct {
	Driver    string        `mapstructure:"driver"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	From      string        `mapstructure:"from"`
	VerifyURL string        `mapstructure:"verify_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	QueueSize int           `mapstructure:"queue_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type CatalogConfig struct {
	PageLimit int `mapstructure:"page_limit"`
}

// DefaultConfig runs everything in process: sqlite in memory, the sturdyc
// cache, in-memory blobs and logged mail. Only the token secret has no default.
func DefaultConfig() Config {
	st := store.DefaultConfig()
	ca := cache.DefaultConfig()
	mem := cacheinfra.DefaultMemoryConfig()
	rd := cacheinfra.DefaultRedisConfig()
	srv := httpapi.DefaultConfig()

	return Config{
		HTTP: HTTPConfig{
			Addr:            srv.Addr,
			ReadTimeout:     srv.ReadTimeout,
			WriteTimeout:    srv.WriteTimeout,
			ShutdownTimeout: srv.ShutdownTimeout,
			MaxUploadBytes:  srv.MaxUploadBytes,
		},
		Store: StoreConfig{Driver: st.Driver, DSN: st.DSN, QueryTimeout: st.QueryTimeout, AutoMigrate: st.AutoMigrate},
		Cache: CacheConfig{
			Driver:     cacheinfra.DriverMemory,
			DefaultTTL: ca.DefaultTTL,
			OpTimeout:  ca.OpTimeout,
			Codec:      ca.Codec,
			Memory: MemoryConfig{
				Capacity:           mem.Capacity,
				NumShards:          mem.NumShards,
				EvictionPercentage: mem.EvictionPercentage,
				EvictionInterval:   mem.EvictionInterval,
			},
			Redis: RedisConfig{Addr: rd.Addr, Namespace: "storefront"},
		},
		Auth:    AuthConfig{Issuer: "storefront", TokenTTL: 24 * time.Hour},
		Blob:    BlobConfig{Driver: BlobMemory, Bucket: "storefront", TempPrefix: "tmp"},
		Mail:    MailConfig{Driver: MailLog, Port: 587, From: "no-reply@storefront.local", Timeout: 10 * time.Second, QueueSize: 64},
		Log:     LogConfig{Level: "info"},
		Catalog: CatalogConfig{PageLimit: catalog.DefaultConfig().PageLimit},
	}
}

// Load reads the configuration. file may be empty.
func Load(file string) (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, fmt.Errorf("config: load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"http.addr":             d.HTTP.Addr,
		"http.read_timeout":     d.HTTP.ReadTimeout,
		"http.write_timeout":    d.HTTP.WriteTimeout,
		"http.shutdown_timeout": d.HTTP.ShutdownTimeout,
		"http.max_upload_bytes": d.HTTP.MaxUploadBytes,

		"store.driver":        d.Store.Driver,
		"store.dsn":           d.Store.DSN,
		"store.query_timeout": d.Store.QueryTimeout,
		"store.auto_migrate":  d.Store.AutoMigrate,

		"cache.driver":                     d.Cache.Driver,
		"cache.default_ttl":                d.Cache.DefaultTTL,
		"cache.op_timeout":                 d.Cache.OpTimeout,
		"cache.strict":                     d.Cache.Strict,
		"cache.coalesce":                   d.Cache.Coalesce,
		"cache.codec":                      d.Cache.Codec,
		"cache.memory.capacity":            d.Cache.Memory.Capacity,
		"cache.memory.num_shards":          d.Cache.Memory.NumShards,
		"cache.memory.eviction_percentage": d.Cache.Memory.EvictionPercentage,
		"cache.memory.eviction_interval":   d.Cache.Memory.EvictionInterval,
		"cache.redis.addr":                 d.Cache.Redis.Addr,
		"cache.redis.password":             d.Cache.Redis.Password,
		"cache.redis.db":                   d.Cache.Redis.DB,
		"cache.redis.namespace":            d.Cache.Redis.Namespace,

		"auth.secret":    d.Auth.Secret,
		"auth.issuer":    d.Auth.Issuer,
		"auth.token_ttl": d.Auth.TokenTTL,

		"blob.driver":      d.Blob.Driver,
		"blob.endpoint":    d.Blob.Endpoint,
		"blob.access_key":  d.Blob.AccessKey,
		"blob.secret_key":  d.Blob.SecretKey,
		"blob.bucket":      d.Blob.Bucket,
		"blob.region":      d.Blob.Region,
		"blob.secure":      d.Blob.Secure,
		"blob.temp_prefix": d.Blob.TempPrefix,

		"mail.driver":     d.Mail.Driver,
		"mail.host":       d.Mail.Host,
		"mail.port":       d.Mail.Port,
		"mail.username":   d.Mail.Username,
		"mail.password":   d.Mail.Password,
		"mail.from":       d.Mail.From,
		"mail.verify_url": d.Mail.VerifyURL,
		"mail.timeout":    d.Mail.Timeout,
		"mail.queue_size": d.Mail.QueueSize,

		"log.level":  d.Log.Level,
		"log.pretty": d.Log.Pretty,

		"catalog.page_limit": d.Catalog.PageLimit,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Validate checks every section and reports the first problem.
func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return &ConfigError{Field: "http.addr", Message: "is required"}
	}
	if err := c.StoreConfig().Validate(); err != nil {
		return section("store", err)
	}
	if err := c.CacheConfig().Validate(); err != nil {
		return section("cache", err)
	}
	if err := c.BackendConfig().Validate(); err != nil {
		return section("cache", err)
	}
	if c.Auth.Secret == "" {
		return &ConfigError{Field: "auth.secret", Message: "is required"}
	}
	switch c.Blob.Driver {
	case BlobMemory:
	case BlobMinio:
		if c.Blob.Endpoint == "" || c.Blob.Bucket == "" {
			return &ConfigError{Field: "blob.endpoint", Message: "endpoint and bucket are required for minio"}
		}
	default:
		return &ConfigError{Field: "blob.driver", Message: "must be one of memory, minio"}
	}
	switch c.Mail.Driver {
	case MailLog:
	case MailSMTP:
		if c.Mail.Host == "" {
			return &ConfigError{Field: "mail.host", Message: "is required for smtp"}
		}
	default:
		return &ConfigError{Field: "mail.driver", Message: "must be one of log, smtp"}
	}
	if c.Catalog.PageLimit <= 0 {
		return &ConfigError{Field: "catalog.page_limit", Message: "must be greater than 0"}
	}
	return nil
}

func (c Config) StoreConfig() store.Config {
	return store.Config{
		Driver:       c.Store.Driver,
		DSN:          c.Store.DSN,
		QueryTimeout: c.Store.QueryTimeout,
		AutoMigrate:  c.Store.AutoMigrate,
	}
}

// CacheConfig is the cache-aside layer section.
func (c Config) CacheConfig() cache.Config {
	return cache.Config{
		DefaultTTL: c.Cache.DefaultTTL,
		OpTimeout:  c.Cache.OpTimeout,
		Strict:     c.Cache.Strict,
		Coalesce:   c.Cache.Coalesce,
		Codec:      c.Cache.Codec,
	}
}

// BackendConfig is the cache backend section. The memory store keeps entries
// no longer than the layer's TTL.
func (c Config) BackendConfig() cacheinfra.Config {
	mem := cacheinfra.DefaultMemoryConfig()
	mem.Capacity = c.Cache.Memory.Capacity
	mem.NumShards = c.Cache.Memory.NumShards
	mem.EvictionPercentage = c.Cache.Memory.EvictionPercentage
	mem.EvictionInterval = c.Cache.Memory.EvictionInterval
	if c.Cache.DefaultTTL > 0 {
		mem.TTL = c.Cache.DefaultTTL
	}

	rd := cacheinfra.DefaultRedisConfig()
	rd.Addr = c.Cache.Redis.Addr
	rd.Password = c.Cache.Redis.Password
	rd.DB = c.Cache.Redis.DB
	rd.Namespace = c.Cache.Redis.Namespace

	return cacheinfra.Config{Driver: c.Cache.Driver, Memory: mem, Redis: rd}
}

func (c Config) AuthConfig() auth.Config {
	return auth.Config{Secret: c.Auth.Secret, Issuer: c.Auth.Issuer, TokenTTL: c.Auth.TokenTTL}
}

func (c Config) MinioConfig() blob.MinioConfig {
	return blob.MinioConfig{
		Endpoint:   c.Blob.Endpoint,
		AccessKey:  c.Blob.AccessKey,
		SecretKey:  c.Blob.SecretKey,
		Bucket:     c.Blob.Bucket,
		Region:     c.Blob.Region,
		Secure:     c.Blob.Secure,
		TempPrefix: c.Blob.TempPrefix,
	}
}

func (c Config) SMTPConfig() notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     c.Mail.Host,
		Port:     c.Mail.Port,
		Username: c.Mail.Username,
		Password: c.Mail.Password,
		From:     c.Mail.From,
	}
}

func (c Config) ServerConfig() httpapi.Config {
	srv := httpapi.DefaultConfig()
	srv.Addr = c.HTTP.Addr
	srv.ReadTimeout = c.HTTP.ReadTimeout
	srv.WriteTimeout = c.HTTP.WriteTimeout
	srv.ShutdownTimeout = c.HTTP.ShutdownTimeout
	srv.MaxUploadBytes = c.HTTP.MaxUploadBytes
	return srv
}

func (c Config) LogConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Pretty = c.Log.Pretty
	return cfg
}

func (c Config) CatalogConfig() catalog.Config {
	return catalog.Config{PageLimit: c.Catalog.PageLimit}
}

// ConfigError names the offending key.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// section prefixes the field of a component ConfigError with its section.
func section(name string, err error) error {
	var (
		st *store.ConfigError
		ca *cache.ConfigError
		ci *cacheinfra.ConfigError
	)
	switch {
	case errors.As(err, &st):
		return &ConfigError{Field: name + "." + st.Field, Message: st.Message}
	case errors.As(err, &ca):
		return &ConfigError{Field: name + "." + ca.Field, Message: ca.Message}
	case errors.As(err, &ci):
		return &ConfigError{Field: name + "." + ci.Field, Message: ci.Message}
	}
	return fmt.Errorf("config: %s: %w", name, err)
}

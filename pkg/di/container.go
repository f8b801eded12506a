package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/api"
	"github.com/goliatone/go-storefront/internal/auth"
	"github.com/goliatone/go-storefront/internal/blob"
	"github.com/goliatone/go-storefront/internal/cacheinfra"
	"github.com/goliatone/go-storefront/internal/catalog"
	"github.com/goliatone/go-storefront/internal/config"
	"github.com/goliatone/go-storefront/internal/httpapi"
	"github.com/goliatone/go-storefront/internal/notify"
	"github.com/goliatone/go-storefront/internal/store"
	"github.com/goliatone/go-storefront/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// Container owns every long-lived component of the storefront. Components
// receive their dependencies at construction; nothing reads a global cache
// client or database handle.
type Container struct {
	cfg      config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry

	db       *store.DB
	backend  cache.Backend
	layer    *cacheaside.Layer
	keys     cache.KeySerializer
	blobs    blob.Store
	mailer   *notify.Dispatcher
	tokens   *auth.Tokens
	services api.Services
	api      *api.API
	handler  http.Handler
}

// Option overrides a component the container would otherwise build from
// configuration.
type Option func(*options)

type options struct {
	logger   *zerolog.Logger
	registry *prometheus.Registry
	backend  cache.Backend
	blobs    blob.Store
	sender   notify.Sender
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithCacheBackend injects a backend, for example a Redis store over a test
// server. The container closes it.
func WithCacheBackend(b cache.Backend) Option {
	return func(o *options) { o.backend = b }
}

func WithBlobStore(s blob.Store) Option {
	return func(o *options) { o.blobs = s }
}

func WithMailSender(s notify.Sender) Option {
	return func(o *options) { o.sender = s }
}

// NewContainer builds the components in dependency order: logger, store, cache
// backend, cache-aside layer, blob store, notifier, services, endpoints and
// HTTP handler. On failure everything already built is closed.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{cfg: cfg, keys: cache.NewDefaultKeySerializer()}

	if o.logger != nil {
		c.logger = *o.logger
	} else {
		c.logger = logging.Setup(cfg.LogConfig())
	}

	c.registry = o.registry
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if err := c.build(ctx, o); err != nil {
		_ = c.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	c.logger.Info().
		Str("store", cfg.Store.Driver).
		Str("cache", cfg.Cache.Driver).
		Str("blob", cfg.Blob.Driver).
		Str("mail", cfg.Mail.Driver).
		Msg("container ready")
	return c, nil
}

// NewContainerWithDefaults builds an in-process container with secret as the
// token key.
func NewContainerWithDefaults(ctx context.Context, secret string, opts ...Option) (*Container, error) {
	cfg := config.DefaultConfig()
	cfg.Auth.Secret = secret
	return NewContainer(ctx, cfg, opts...)
}

func (c *Container) build(ctx context.Context, o options) error {
	var err error
	cfg := c.cfg

	c.db, err = store.Open(ctx, cfg.StoreConfig(), c.component("store"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	if err := c.buildCache(ctx, o); err != nil {
		return err
	}

	if err := c.buildBlobs(ctx, o); err != nil {
		return err
	}

	sender := o.sender
	if sender == nil {
		sender = c.mailSender()
	}
	c.mailer = notify.NewDispatcher(sender, cfg.Mail.QueueSize, cfg.Mail.Timeout, c.component("notify"))

	c.tokens, err = auth.NewTokens(cfg.AuthConfig())
	if err != nil {
		return err
	}

	catalogCfg := cfg.CatalogConfig()
	items := catalog.NewItems(c.db, c.layer, c.blobs, catalogCfg, c.component("items"))
	c.services = api.Services{
		Items:  items,
		Orders: catalog.NewOrders(c.db, c.layer, catalogCfg, c.component("orders")),
		Users:  catalog.NewUsers(c.db, c.layer, items, c.blobs, c.mailer, cfg.Mail.VerifyURL, catalogCfg, c.component("users")),
	}
	c.api = api.New(c.services, c.layer, c.keys, api.Config{PageLimit: catalogCfg.PageLimit})

	c.handler = httpapi.NewRouter(httpapi.Deps{
		API:    c.api,
		Tokens: c.tokens,
		Health: map[string]httpapi.Pinger{
			"store": c.db,
			"cache": c.backend,
			"blob":  c.blobs,
		},
		Metrics:        httpapi.NewMetrics(c.registry),
		Gatherer:       c.registry,
		Logger:         c.component("http"),
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	})
	return nil
}

// buildCache connects the backend and wraps it in the cache-aside layer. An
// unreachable backend only fails construction in strict mode; otherwise reads
// bypass it until it recovers.
func (c *Container) buildCache(ctx context.Context, o options) error {
	c.backend = o.backend
	if c.backend == nil {
		backend, err := cacheinfra.New(c.cfg.BackendConfig())
		if err != nil {
			return fmt.Errorf("cache backend: %w", err)
		}
		c.backend = backend
	}

	if err := c.backend.Ping(ctx); err != nil {
		if c.cfg.Cache.Strict {
			return fmt.Errorf("cache backend: %w", err)
		}
		c.logger.Warn().Err(err).Str("driver", c.cfg.Cache.Driver).Msg("cache backend unreachable, reads will bypass it")
	}

	c.layer = cacheaside.New(c.backend, c.cfg.CacheConfig(),
		cacheaside.WithLogger(c.component("cache")),
		cacheaside.WithMetrics(cacheaside.NewMetrics(c.registry)),
	)
	return nil
}

func (c *Container) buildBlobs(ctx context.Context, o options) error {
	if o.blobs != nil {
		c.blobs = o.blobs
		return nil
	}
	if c.cfg.Blob.Driver != config.BlobMinio {
		c.blobs = blob.NewMemoryStore()
		return nil
	}
	ms, err := blob.NewMinioStore(c.cfg.MinioConfig())
	if err != nil {
		return err
	}
	if err := ms.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("blob bucket: %w", err)
	}
	c.blobs = ms
	return nil
}

func (c *Container) mailSender() notify.Sender {
	if c.cfg.Mail.Driver == config.MailSMTP {
		return notify.NewSMTPSender(c.cfg.SMTPConfig())
	}
	return notify.NewLogSender(c.component("mail"))
}

func (c *Container) component(name string) zerolog.Logger {
	return c.logger.With().Str("component", name).Logger()
}

func (c *Container) Config() config.Config          { return c.cfg }
func (c *Container) Logger() zerolog.Logger         { return c.logger }
func (c *Container) Registry() *prometheus.Registry { return c.registry }
func (c *Container) DB() *store.DB                  { return c.db }
func (c *Container) CacheBackend() cache.Backend    { return c.backend }
func (c *Container) Layer() *cacheaside.Layer       { return c.layer }
func (c *Container) Blobs() blob.Store              { return c.blobs }
func (c *Container) Tokens() *auth.Tokens           { return c.tokens }
func (c *Container) Services() api.Services         { return c.services }
func (c *Container) API() *api.API                  { return c.api }
func (c *Container) Handler() http.Handler          { return c.handler }

// Server wraps the handler in a listener configured from the HTTP section.
func (c *Container) Server() *httpapi.Server {
	return httpapi.NewServer(c.cfg.ServerConfig(), c.handler, c.component("server"))
}

// Ping checks the store, the cache backend and the blob store.
func (c *Container) Ping(ctx context.Context) error {
	var errs []error
	if err := c.db.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := c.backend.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := c.blobs.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("blob: %w", err))
	}
	return errors.Join(errs...)
}

// Close drains queued mail, then closes the cache backend and the store. It
// is safe on a partially built container.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.mailer != nil {
		if err := c.mailer.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}
	if c.backend != nil {
		if err := c.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	return errors.Join(errs...)
}

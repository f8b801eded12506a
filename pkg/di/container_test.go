package di

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/internal/auth"
	"github.com/goliatone/go-storefront/internal/blob"
	"github.com/goliatone/go-storefront/internal/config"
	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/goliatone/go-storefront/internal/notify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// mockBackend is an empty cache backend whose health is controlled by the test.
type mockBackend struct {
	mu      sync.Mutex
	pingErr error
	closed  int
	values  map[string][]byte
}

func newMockBackend(pingErr error) *mockBackend {
	return &mockBackend{pingErr: pingErr, values: make(map[string][]byte)}
}

func (m *mockBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pingErr != nil {
		return nil, false, m.pingErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockBackend) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pingErr != nil {
		return m.pingErr
	}
	m.values[key] = value
	return nil
}

func (m *mockBackend) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pingErr != nil {
		return 0, m.pingErr
	}
	n := 0
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			delete(m.values, k)
			n++
		}
	}
	return n, nil
}

func (m *mockBackend) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func (m *mockBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *mockBackend) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ cache.Backend = (*mockBackend)(nil)

// mockSender records delivered mail.
type mockSender struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *mockSender) Send(ctx context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockSender) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}

// testConfig is the default in-process configuration on a private database.
func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Auth.Secret = "test-secret"
	cfg.Store.DSN = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	return cfg
}

func newTestContainer(t *testing.T, cfg config.Config, opts ...Option) *Container {
	t.Helper()
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	c, err := NewContainer(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig()
	c := newTestContainer(t, cfg)

	if c.Handler() == nil || c.API() == nil || c.Layer() == nil || c.Tokens() == nil {
		t.Fatal("expected every component to be built")
	}
	if c.DB() == nil || c.CacheBackend() == nil || c.Blobs() == nil || c.Registry() == nil {
		t.Fatal("expected every infrastructure component to be built")
	}
	svc := c.Services()
	if svc.Items == nil || svc.Orders == nil || svc.Users == nil {
		t.Errorf("expected all catalog services but got: %+v", svc)
	}
	if _, ok := c.Blobs().(*blob.MemoryStore); !ok {
		t.Errorf("expected in-memory blobs by default but got: %T", c.Blobs())
	}
	if got := c.Config().Cache.DefaultTTL; got != cfg.Cache.DefaultTTL {
		t.Errorf("expected ttl %v but got: %v", cfg.Cache.DefaultTTL, got)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("expected healthy container but got: %v", err)
	}
	if c.Server() == nil {
		t.Error("expected a server")
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	c, err := NewContainerWithDefaults(context.Background(), "secret", WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer c.Close(context.Background())

	if c.Config().Auth.Secret != "secret" {
		t.Errorf("expected secret to be applied but got: %q", c.Config().Auth.Secret)
	}
	if c.Config().Catalog.PageLimit != config.DefaultConfig().Catalog.PageLimit {
		t.Errorf("expected default page limit but got: %d", c.Config().Catalog.PageLimit)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"missing secret", func(c *config.Config) { c.Auth.Secret = "" }, "auth.secret"},
		{"bad store driver", func(c *config.Config) { c.Store.Driver = "mongo" }, "store.Driver"},
		{"bad cache codec", func(c *config.Config) { c.Cache.Codec = "gob" }, "cache.Codec"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			_, err := NewContainer(context.Background(), cfg, WithLogger(zerolog.Nop()))
			var cerr *config.ConfigError
			if !errors.As(err, &cerr) || cerr.Field != tt.field {
				t.Errorf("expected config error on %s but got: %v", tt.field, err)
			}
		})
	}
}

func TestNewContainer_CacheUnreachable(t *testing.T) {
	down := errors.New("connection refused")

	t.Run("strict fails and releases the backend", func(t *testing.T) {
		cfg := testConfig()
		cfg.Cache.Strict = true
		backend := newMockBackend(down)

		_, err := NewContainer(context.Background(), cfg, WithLogger(zerolog.Nop()), WithCacheBackend(backend))
		if !errors.Is(err, down) {
			t.Errorf("expected ping error but got: %v", err)
		}
		if backend.closeCount() != 1 {
			t.Errorf("expected backend to be closed once but got: %d", backend.closeCount())
		}
	})

	t.Run("default degrades to the store", func(t *testing.T) {
		backend := newMockBackend(down)
		c := newTestContainer(t, testConfig(), WithCacheBackend(backend))

		ctx := context.Background()
		created, err := c.API().CreateItem(adminContext(), domain.ItemInput{Title: "Lamp", Price: ptr(10.0)})
		if err != nil {
			t.Fatalf("expected write to succeed without cache but got: %v", err)
		}
		list, err := c.API().ListItems(ctx, domain.ItemQuery{})
		if err != nil || len(list) != 1 || list[0].ID != created.ID {
			t.Errorf("expected list served from the store but got: %v %v", list, err)
		}
		if err := c.Ping(ctx); !errors.Is(err, down) {
			t.Errorf("expected ping to report the cache but got: %v", err)
		}
	})
}

func TestContainer_CloseDrainsMail(t *testing.T) {
	sender := &mockSender{}
	cfg := testConfig()
	cfg.Mail.VerifyURL = "https://shop.example.com/verify"

	c, err := NewContainer(context.Background(), cfg, WithLogger(zerolog.Nop()), WithMailSender(sender))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if _, err := c.API().CreateUser(context.Background(), domain.UserInput{Email: "ada@example.com", Firstname: "Ada", Lastname: "Lovelace"}); err != nil {
		t.Fatalf("unexpected error creating user: %v", err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	sent := sender.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one mail after close but got: %d", len(sent))
	}
	if sent[0].Template != notify.TemplateVerify || sent[0].Context["url"] != cfg.Mail.VerifyURL {
		t.Errorf("unexpected mail %+v", sent[0])
	}
}

func TestContainer_InjectedBlobStore(t *testing.T) {
	blobs := blob.NewMemoryStore()
	c := newTestContainer(t, testConfig(), WithBlobStore(blobs))

	if c.Blobs() != blob.Store(blobs) {
		t.Errorf("expected injected blob store to be used")
	}
}

func adminContext() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: uuid.NewString(), Role: domain.RoleAdmin})
}

func ptr[T any](v T) *T { return &v }

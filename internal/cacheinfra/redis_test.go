package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-storefront/cache"
	"github.com/redis/go-redis/v9"
)

func newMiniredisStore(t *testing.T, namespace string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	cfg.Namespace = namespace
	cfg.ScanCount = 2
	store, err := NewRedisStore(cfg)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newMiniredisStore(t, "")
	runStoreContract(t, store)
}

func TestRedisStore_Namespace(t *testing.T) {
	store, mr := newMiniredisStore(t, "shop")
	ctx := context.Background()

	if err := store.Set(ctx, "get-item:1", []byte("v"), time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if !mr.Exists("shop:get-item:1") {
		t.Errorf("expected namespaced key in redis, keys: %v", mr.Keys())
	}

	mr.Set("other:get-item:2", "x")
	n, err := store.DeleteByPrefix(ctx, "get-item:")
	if err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if n != 1 || !mr.Exists("other:get-item:2") {
		t.Errorf("expected only namespaced keys to be deleted, n=%d keys=%v", n, mr.Keys())
	}
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newMiniredisStore(t, "")
	ctx := context.Background()

	_ = store.Set(ctx, "get-order:1", []byte("v"), 30*time.Second)
	mr.FastForward(31 * time.Second)

	if _, ok, err := store.Get(ctx, "get-order:1"); ok || err != nil {
		t.Errorf("expected expired key to be absent, got ok=%v err=%v", ok, err)
	}
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("unexpected error starting miniredis: %v", err)
	}
	store, err := NewRedisStore(RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	defer store.Close()
	mr.Close()
	ctx := context.Background()

	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, cache.ErrCacheUnavailable) {
		t.Errorf("expected ErrCacheUnavailable on get but got: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v"), time.Minute); !errors.Is(err, cache.ErrCacheUnavailable) {
		t.Errorf("expected ErrCacheUnavailable on set but got: %v", err)
	}
	if _, err := store.DeleteByPrefix(ctx, "k"); !errors.Is(err, cache.ErrCacheUnavailable) {
		t.Errorf("expected ErrCacheUnavailable on delete but got: %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, cache.ErrCacheUnavailable) {
		t.Errorf("expected ErrCacheUnavailable on ping but got: %v", err)
	}
}

func TestRedisStore_WithClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, RedisConfig{})
	defer store.Close()

	if store.scanCount != 100 {
		t.Errorf("expected default scan count 100 but got: %d", store.scanCount)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}
}

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "list-items:", want: "list-items:"},
		{in: "a*b", want: `a\*b`},
		{in: "q?[x]", want: `q\?\[x\]`},
		{in: `back\slash`, want: `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeGlob(tt.in); got != tt.want {
			t.Errorf("escapeGlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

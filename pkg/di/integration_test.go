package di

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-storefront/internal/auth"
	"github.com/goliatone/go-storefront/internal/cacheinfra"
	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/goliatone/go-storefront/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type envelope struct {
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
}

type integration struct {
	container *Container
	redis     *miniredis.Miniredis
}

// newIntegration runs the full container over sqlite and a miniredis backed
// cache, the same wiring production uses with a real Redis.
func newIntegration(t *testing.T) *integration {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Cache.Driver = cacheinfra.DriverRedis
	cfg.Cache.Redis.Addr = mr.Addr()

	rcfg := cfg.BackendConfig().Redis
	backend := cacheinfra.NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), rcfg)

	return &integration{
		container: newTestContainer(t, cfg, WithCacheBackend(backend)),
		redis:     mr,
	}
}

func (it *integration) token(t *testing.T, userID string, role domain.Role) string {
	t.Helper()
	raw, err := it.container.Tokens().Issue(auth.Identity{UserID: userID, Role: role})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return raw
}

func (it *integration) do(t *testing.T, method, target, token string, body []byte) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	it.container.Handler().ServeHTTP(rec, req)

	var res envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode %s %s response %q: %v", method, target, rec.Body.String(), err)
	}
	return rec.Code, res
}

func (it *integration) cachedKeys(prefix string) []string {
	var keys []string
	for _, k := range it.redis.Keys() {
		if strings.Contains(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("failed to decode payload %s: %v", raw, err)
	}
	return v
}

func TestIntegration_ItemListInvalidation(t *testing.T) {
	it := newIntegration(t)
	admin := it.token(t, uuid.NewString(), domain.RoleAdmin)
	item := testsupport.LoadFixture(t, testsupport.FixturePath("item.json"))

	status, res := it.do(t, http.MethodGet, "/items", "", nil)
	if status != http.StatusOK || string(res.Payload) != "[]" {
		t.Fatalf("expected empty list but got: %d %s", status, res.Payload)
	}
	if keys := it.cachedKeys("list-items:"); len(keys) != 1 {
		t.Fatalf("expected the list to be cached in redis but got: %v", it.redis.Keys())
	}

	status, res = it.do(t, http.MethodPost, "/items", admin, item)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 but got: %d %s", status, res.Message)
	}
	created := decode[domain.Item](t, res.Payload)
	if keys := it.cachedKeys("list-items:"); len(keys) != 0 {
		t.Errorf("expected create to invalidate cached lists but got: %v", keys)
	}

	status, res = it.do(t, http.MethodGet, "/items", "", nil)
	list := decode[[]domain.Item](t, res.Payload)
	if status != http.StatusOK || len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("expected the new item to be listed but got: %d %s", status, res.Payload)
	}

	status, res = it.do(t, http.MethodGet, "/items/"+created.ID.String(), "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected item but got: %d %s", status, res.Message)
	}
	if keys := it.cachedKeys("get-item:"); len(keys) != 1 {
		t.Errorf("expected the point lookup to be cached but got: %v", it.redis.Keys())
	}

	status, res = it.do(t, http.MethodPatch, "/items/"+created.ID.String(), admin, []byte(`{"price":1500}`))
	if status != http.StatusOK || decode[domain.Item](t, res.Payload).Price != 1500 {
		t.Fatalf("expected updated price but got: %d %s", status, res.Payload)
	}
	if keys := it.cachedKeys("get-item:"); len(keys) != 0 {
		t.Errorf("expected update to invalidate point lookups but got: %v", keys)
	}

	status, res = it.do(t, http.MethodGet, "/items/"+created.ID.String(), "", nil)
	if status != http.StatusOK || decode[domain.Item](t, res.Payload).Price != 1500 {
		t.Errorf("expected fresh item after update but got: %d %s", status, res.Payload)
	}
}

func TestIntegration_CacheOutageDegrades(t *testing.T) {
	it := newIntegration(t)
	admin := it.token(t, uuid.NewString(), domain.RoleAdmin)

	it.redis.SetError("LOADING")
	status, res := it.do(t, http.MethodPost, "/items", admin, testsupport.LoadFixture(t, testsupport.FixturePath("item.json")))
	if status != http.StatusCreated {
		t.Fatalf("expected create to succeed while the cache fails but got: %d %s", status, res.Message)
	}
	status, res = it.do(t, http.MethodGet, "/items", "", nil)
	if status != http.StatusOK || len(decode[[]domain.Item](t, res.Payload)) != 1 {
		t.Errorf("expected list from the store but got: %d %s", status, res.Payload)
	}

	it.redis.SetError("")
	status, _ = it.do(t, http.MethodGet, "/items", "", nil)
	if status != http.StatusOK || len(it.cachedKeys("list-items:")) != 1 {
		t.Errorf("expected caching to resume but got: %d %v", status, it.redis.Keys())
	}
}

func TestIntegration_AccountCartAndOrders(t *testing.T) {
	it := newIntegration(t)
	admin := it.token(t, uuid.NewString(), domain.RoleAdmin)

	status, res := it.do(t, http.MethodPost, "/users", "", testsupport.LoadFixture(t, testsupport.FixturePath("user.json")))
	if status != http.StatusCreated {
		t.Fatalf("expected 201 but got: %d %s", status, res.Message)
	}
	user := decode[domain.User](t, res.Payload)
	token := it.token(t, user.ID.String(), domain.RoleUser)

	_, res = it.do(t, http.MethodPost, "/items", admin, testsupport.LoadFixture(t, testsupport.FixturePath("item.json")))
	item := decode[domain.Item](t, res.Payload)

	status, res = it.do(t, http.MethodGet, "/profile", token, nil)
	if status != http.StatusOK || decode[domain.User](t, res.Payload).Email != "ada@example.com" {
		t.Fatalf("expected own profile but got: %d %s", status, res.Payload)
	}

	cart := []byte(`{"items":["` + item.ID.String() + `"]}`)
	status, res = it.do(t, http.MethodPut, "/profile/cart", token, cart)
	if status != http.StatusOK || len(decode[[]string](t, res.Payload)) != 1 {
		t.Fatalf("expected one cart entry but got: %d %s", status, res.Payload)
	}
	status, res = it.do(t, http.MethodGet, "/profile", token, nil)
	if got := decode[domain.User](t, res.Payload).Cart; status != http.StatusOK || len(got) != 1 {
		t.Errorf("expected profile to reflect the cart but got: %v", got)
	}

	status, res = it.do(t, http.MethodPost, "/orders", token, testsupport.LoadFixture(t, testsupport.FixturePath("order.json")))
	if status != http.StatusCreated {
		t.Fatalf("expected 201 but got: %d %s", status, res.Message)
	}
	order := decode[domain.Order](t, res.Payload)
	if order.TotalCost != 4000 || order.UserID != user.ID.String() || order.Status != domain.OrderOrdered {
		t.Errorf("unexpected order %+v", order)
	}

	path := "/orders/" + order.ID.String()
	status, res = it.do(t, http.MethodPatch, path, token, []byte(`{"status":"SHIPPED"}`))
	if status != http.StatusForbidden {
		t.Errorf("expected users not to update orders but got: %d %s", status, res.Message)
	}
	status, res = it.do(t, http.MethodPatch, path, admin, []byte(`{"status":"SHIPPED"}`))
	if status != http.StatusOK || decode[domain.Order](t, res.Payload).Status != domain.OrderShipped {
		t.Fatalf("expected shipped order but got: %d %s", status, res.Payload)
	}
	status, res = it.do(t, http.MethodGet, path, token, nil)
	if status != http.StatusOK || decode[domain.Order](t, res.Payload).Status != domain.OrderShipped {
		t.Errorf("expected fresh order after update but got: %d %s", status, res.Payload)
	}
}

func TestIntegration_Healthz(t *testing.T) {
	it := newIntegration(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	it.container.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 but got: %d %s", rec.Code, rec.Body.String())
	}
	testsupport.CompareJSONWithGolden(t, testsupport.GoldenPath("healthz.json"), rec.Body.Bytes())

	it.redis.SetError("connection reset")
	rec = httptest.NewRecorder()
	it.container.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 while redis fails but got: %d", rec.Code)
	}
	if err := it.container.Ping(context.Background()); err == nil {
		t.Error("expected container ping to fail")
	}
}

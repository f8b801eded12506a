// Package httpapi exposes the storefront endpoints over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/api"
	"github.com/goliatone/go-storefront/internal/auth"
	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	maxJSONBytes       = 1 << 20
	defaultUploadBytes = 32 << 20
)

// Pinger is a dependency reported by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the router needs.
type Deps struct {
	API            *api.API
	Tokens         *auth.Tokens
	Health         map[string]Pinger
	Metrics        *Metrics
	Gatherer       prometheus.Gatherer
	Logger         zerolog.Logger
	MaxUploadBytes int64
	HealthTimeout  time.Duration
}

// NewRouter builds the handler tree.
func NewRouter(d Deps) http.Handler {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = defaultUploadBytes
	}
	if d.HealthTimeout <= 0 {
		d.HealthTimeout = 2 * time.Second
	}
	a := d.API
	mux := http.NewServeMux()

	mux.Handle("POST /items", serve(a.CreateItem, http.StatusCreated, body[domain.ItemInput]))
	mux.Handle("GET /items", serve(a.ListItems, http.StatusOK, itemQuery))
	mux.Handle("GET /items/{id}", serve(a.GetItem, http.StatusOK, pathID))
	mux.Handle("PATCH /items/{id}", serve(a.UpdateItem, http.StatusOK, func(r *http.Request) (api.ItemUpdate, error) {
		req := api.ItemUpdate{ID: r.PathValue("id")}
		return req, decodeJSON(r, &req.Patch)
	}))
	mux.Handle("DELETE /items/{id}", serve(a.DeleteItem, http.StatusOK, pathID))
	mux.Handle("PUT /items/{id}/wishlist", serve(a.AddToWishlist, http.StatusOK, pathID))
	mux.Handle("DELETE /items/{id}/wishlist", serve(a.RemoveFromWishlist, http.StatusOK, pathID))
	mux.Handle("PUT /items/{id}/images", limit(d.MaxUploadBytes, itemImages(a.AddItemImages, d.MaxUploadBytes)))
	mux.Handle("DELETE /items/{id}/images", serve(a.RemoveItemImages, http.StatusOK, func(r *http.Request) (api.ImageRemoval, error) {
		req := api.ImageRemoval{ID: r.PathValue("id")}
		return req, decodeJSON(r, &req.Body)
	}))

	mux.Handle("POST /orders", serve(a.CreateOrder, http.StatusCreated, body[domain.OrderInput]))
	mux.Handle("GET /orders", serve(a.ListOrders, http.StatusOK, orderQuery))
	mux.Handle("GET /orders/{id}", serve(a.GetOrder, http.StatusOK, pathID))
	mux.Handle("PATCH /orders/{id}", serve(a.UpdateOrder, http.StatusOK, func(r *http.Request) (api.OrderUpdate, error) {
		req := api.OrderUpdate{ID: r.PathValue("id")}
		return req, decodeJSON(r, &req.Patch)
	}))

	mux.Handle("POST /users", serve(a.CreateUser, http.StatusCreated, body[domain.UserInput]))
	mux.Handle("GET /users", serve(a.ListUsers, http.StatusOK, userQuery))
	mux.Handle("GET /users/{id}", serve(a.GetUser, http.StatusOK, pathID))

	mux.Handle("GET /profile", serve(a.Profile, http.StatusOK, none))
	mux.Handle("PATCH /profile", serve(a.UpdateProfile, http.StatusOK, body[domain.UserPatch]))
	mux.Handle("DELETE /profile", serve(a.RemoveProfile, http.StatusOK, none))
	mux.Handle("PUT /profile/image", limit(d.MaxUploadBytes, profileImage(a.UploadImage, d.MaxUploadBytes)))
	mux.Handle("GET /profile/cart", serve(a.GetCart, http.StatusOK, none))
	mux.Handle("PUT /profile/cart", serve(a.AddToCart, http.StatusOK, body[domain.CartInput]))
	mux.Handle("DELETE /profile/cart", serve(a.RemoveFromCart, http.StatusOK, body[domain.CartInput]))

	mux.Handle("GET /healthz", health(d.Health, d.HealthTimeout))
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	var h http.Handler = mux
	h = d.Metrics.instrument(h)
	h = withIdentity(d.Tokens, h)
	return withRequestLogger(d.Logger, h)
}

// serve adapts an endpoint: decode, call, write the envelope.
func serve[Req, Res any](h cacheaside.Handler[Req, Res], status int, decode func(*http.Request) (Req, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
		req, err := decode(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		res, err := h(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, status, res)
	})
}

func body[T any](r *http.Request) (T, error) {
	var v T
	err := decodeJSON(r, &v)
	return v, err
}

func pathID(r *http.Request) (api.ByID, error) { return api.ByID{ID: r.PathValue("id")}, nil }
func none(*http.Request) (api.Empty, error)    { return api.Empty{}, nil }

func itemQuery(r *http.Request) (domain.ItemQuery, error) {
	p, err := queryPage(r)
	return domain.ItemQuery{Limit: p.limit, Offset: p.offset, Sort: p.sort, Query: r.URL.Query().Get("query")}, err
}

func orderQuery(r *http.Request) (domain.OrderQuery, error) {
	p, err := queryPage(r)
	return domain.OrderQuery{Limit: p.limit, Offset: p.offset, Sort: p.sort, User: r.URL.Query().Get("user")}, err
}

func userQuery(r *http.Request) (domain.UserQuery, error) {
	p, err := queryPage(r)
	return domain.UserQuery{Limit: p.limit, Offset: p.offset, Sort: p.sort, Query: r.URL.Query().Get("query")}, err
}

func itemImages(h cacheaside.Handler[api.ImageUpload, []string], maxMemory int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads, closeAll, err := formUploads(r, "images", maxMemory)
		defer closeAll()
		if err != nil {
			writeError(w, r, err)
			return
		}
		paths, err := h(r.Context(), api.ImageUpload{ID: r.PathValue("id"), Uploads: uploads})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, http.StatusOK, paths)
	})
}

func profileImage(h cacheaside.Handler[api.ProfileImage, string], maxMemory int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads, closeAll, err := formUploads(r, "image", maxMemory)
		defer closeAll()
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req api.ProfileImage
		if len(uploads) > 0 {
			req.Upload = &uploads[0]
		}
		image, err := h(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, http.StatusOK, map[string]string{"image": image})
	})
}

func limit(n int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		next.ServeHTTP(w, r)
	})
}

func health(deps map[string]Pinger, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		report := make(map[string]string, len(deps))
		status := http.StatusOK
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				report[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(envelope{Success: status == http.StatusOK, Payload: report})
	})
}

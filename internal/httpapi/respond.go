package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/internal/api"
	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/rs/zerolog"
)

type envelope struct {
	Success bool `json:"success"`
	Payload any  `json:"payload"`
}

type bareEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// writeOK encodes payload in the success envelope. GET responses carry a weak
// ETag over the body and short-circuit to 304 when the client already has it.
func writeOK(w http.ResponseWriter, r *http.Request, status int, payload any) {
	var env any = envelope{Success: true, Payload: emptyIfNil(payload)}
	if _, empty := payload.(api.Empty); empty {
		env = bareEnvelope{Success: true}
	}
	body, err := json.Marshal(env)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.Method == http.MethodGet && status == http.StatusOK {
		etag := `W/"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(bareEnvelope{Success: false, Message: message})
}

// emptyIfNil renders nil slices as [] so list payloads are always arrays.
func emptyIfNil(payload any) any {
	v := reflect.ValueOf(payload)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return []any{}
	}
	return payload
}

// mapError picks the status and client message for err. Unknown failures are
// reported without their details.
func mapError(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, domain.Message(err)
	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized, domain.Message(err)
	case domain.IsForbidden(err):
		return http.StatusForbidden, domain.Message(err)
	case domain.IsNotFound(err):
		return http.StatusNotFound, domain.Message(err)
	case domain.IsConflict(err):
		return http.StatusConflict, domain.Message(err)
	case domain.IsStoreUnavailable(err), errors.Is(err, cache.ErrCacheUnavailable):
		return http.StatusServiceUnavailable, "Service unavailable"
	}
	return http.StatusInternalServerError, "Internal server error"
}

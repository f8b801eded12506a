// Package catalog holds the resource services for items, orders and users.
//
// Single-record reads go through cacheaside.PointLookup and every mutation
// checks existence through that same lookup first, so "<Resource> not found"
// has a single source. Services do not invalidate: the routes that call them
// declare which tags a successful write wipes.
package catalog

import (
	"errors"
	"time"

	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/google/uuid"
)

// Config tunes listings.
type Config struct {
	PageLimit int
}

func DefaultConfig() Config {
	return Config{PageLimit: domain.DefaultPageLimit}
}

func now() time.Time { return time.Now().UTC() }

// parseID resolves a path id. Malformed ids cannot match a record and are
// reported as not found for resource.
func parseID(id, resource string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, cacheaside.NotFound(resource)
	}
	return uid, nil
}

// conflictOn converts a duplicate key into a Conflict on field.
func conflictOn(err error, field string) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.Conflict(field)
	}
	return err
}

// mutation finishes an UpdateOne call: a record that vanished between the
// existence check and the write is reported as not found.
func mutation[T any](record T, found bool, err error, resource string) (T, error) {
	if err != nil {
		return record, err
	}
	if !found {
		var zero T
		return zero, cacheaside.NotFound(resource)
	}
	return record, nil
}

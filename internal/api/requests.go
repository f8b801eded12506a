package api

import (
	"github.com/goliatone/go-storefront/internal/blob"
	"github.com/goliatone/go-storefront/internal/domain"
)

// Empty is the request of endpoints that only need the caller's identity and
// the response of endpoints that report success without a payload.
type Empty struct{}

// ByID addresses one record by its path id.
type ByID struct {
	ID string `json:"id"`
}

func (r ByID) Check() error { return domain.CheckID(r.ID) }

type ItemUpdate struct {
	ID    string           `json:"id"`
	Patch domain.ItemPatch `json:"patch"`
}

func (r ItemUpdate) Check() error { return checkBoth(r.ID, r.Patch) }

// ImageUpload carries the multipart files of one request.
type ImageUpload struct {
	ID      string        `json:"id"`
	Uploads []blob.Upload `json:"-"`
}

func (r ImageUpload) Check() error { return domain.CheckID(r.ID) }

type ImageRemoval struct {
	ID   string              `json:"id"`
	Body domain.ImageRemoval `json:"body"`
}

func (r ImageRemoval) Check() error { return checkBoth(r.ID, r.Body) }

type OrderUpdate struct {
	ID    string            `json:"id"`
	Patch domain.OrderPatch `json:"patch"`
}

func (r OrderUpdate) Check() error { return checkBoth(r.ID, r.Patch) }

// ProfileImage is a single picture upload for the caller.
type ProfileImage struct {
	Upload *blob.Upload `json:"-"`
}

func (r ProfileImage) Check() error {
	if r.Upload == nil {
		return domain.Validation("image", "is required")
	}
	return nil
}

// checker is implemented by requests that combine a path id with a body.
type checker interface {
	Check() error
}

type validatable interface {
	Validate() error
}

func checkBoth(id string, body validatable) error {
	if err := domain.CheckID(id); err != nil {
		return err
	}
	return domain.Check(body)
}

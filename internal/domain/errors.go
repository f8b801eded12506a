package domain

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const textCodeStoreUnavailable = "STORE_UNAVAILABLE"

// ErrDuplicate is returned by the store when a unique column collides.
var ErrDuplicate = errors.New("duplicate key")

// Validation reports the first failing field of an input.
func Validation(field, message string) error {
	return goerrors.NewValidation(
		fmt.Sprintf("%q %s", field, message),
		goerrors.FieldError{Field: field, Message: message},
	).WithCode(http.StatusBadRequest).WithTextCode("VALIDATION_ERROR")
}

// Conflict reports a uniqueness violation on field.
func Conflict(field string) error {
	return goerrors.New(fmt.Sprintf("%q is already in use", field), goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode("CONFLICT")
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode("UNAUTHORIZED")
}

// Forbidden reports an identity without the required role.
func Forbidden(message string) error {
	return goerrors.New(message, goerrors.CategoryAuthz).
		WithCode(http.StatusForbidden).
		WithTextCode("FORBIDDEN")
}

// StoreUnavailable wraps a transport failure of the backing store.
func StoreUnavailable(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "store unavailable").
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(textCodeStoreUnavailable)
}

func IsValidation(err error) bool   { return hasCategory(err, goerrors.CategoryValidation) }
func IsNotFound(err error) bool     { return hasCategory(err, goerrors.CategoryNotFound) }
func IsConflict(err error) bool     { return hasCategory(err, goerrors.CategoryConflict) }
func IsUnauthorized(err error) bool { return hasCategory(err, goerrors.CategoryAuth) }
func IsForbidden(err error) bool    { return hasCategory(err, goerrors.CategoryAuthz) }

func IsStoreUnavailable(err error) bool {
	var e *goerrors.Error
	return errors.As(err, &e) && e.TextCode == textCodeStoreUnavailable
}

func hasCategory(err error, category goerrors.Category) bool {
	var e *goerrors.Error
	return errors.As(err, &e) && e.Category == category
}

// Message is the client-facing text of err: the envelope message for domain
// errors, err.Error() otherwise.
func Message(err error) string {
	var e *goerrors.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// FieldOf returns the failing field of a validation error, if any.
func FieldOf(err error) string {
	var e *goerrors.Error
	if errors.As(err, &e) && len(e.ValidationErrors) > 0 {
		return e.ValidationErrors[0].Field
	}
	return ""
}

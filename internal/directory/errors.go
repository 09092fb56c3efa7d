package directory

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrUnauthorized signals an authenticated caller without the required role.
var ErrUnauthorized = errors.New("admin access required")

// ErrNoIdentity signals a request that carried no usable identity.
var ErrNoIdentity = errors.New("no identity")

// ErrCategoryInUse refuses deletion of a category still referenced by links.
var ErrCategoryInUse = errors.New("category is referenced by existing links")

// ValidationError reports bad or missing client input. Field names the first
// offending field so the caller can surface it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// MissingField builds a ValidationError for an absent required field.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field}
}

// InvalidField builds a ValidationError for a malformed field value.
func InvalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// FetchError collapses network-level and HTTP-status-level extraction
// failures into one caller-facing message. The cause survives only for
// diagnostic logging via Unwrap.
type FetchError struct {
	cause error
}

// NewFetchError wraps the underlying fetch failure.
func NewFetchError(cause error) *FetchError {
	return &FetchError{cause: cause}
}

func (e *FetchError) Error() string {
	return "failed to fetch website metadata"
}

func (e *FetchError) Unwrap() error {
	return e.cause
}

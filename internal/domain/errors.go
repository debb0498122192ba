package domain

import (
	"errors"
	"fmt"
)

// Every error returned by the services wraps exactly one of these.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	// ErrNotFound also covers resources owned by somebody else.
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrReferentialConflict = errors.New("referential conflict")
)

var (
	ErrOrderNotFound        = fmt.Errorf("order %w", ErrNotFound)
	ErrReturnNotFound       = fmt.Errorf("return request %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrProductNotFound      = fmt.Errorf("product %w", ErrNotFound)

	ErrProductUnavailable = fmt.Errorf("%w: product is no longer available", ErrValidation)

	ErrStatusChanged      = fmt.Errorf("%w: status was changed by another request", ErrConflict)
	ErrActiveReturnExists = fmt.Errorf("%w: order already has an active return request", ErrInvalidState)
	ErrProductReferenced  = fmt.Errorf("%w: product is referenced by existing orders", ErrReferentialConflict)
)

var errorClasses = []struct {
	err   error
	class string
}{
	{ErrInvalidTransition, "invalid_transition"},
	{ErrForbidden, "forbidden"},
	{ErrValidation, "validation"},
	{ErrConflict, "conflict"},
	{ErrNotFound, "not_found"},
	{ErrInvalidState, "invalid_state"},
	{ErrReferentialConflict, "referential_conflict"},
}

// ErrorClass names the sentinel err wraps, or "internal" when it wraps none.
func ErrorClass(err error) string {
	if err == nil {
		return "ok"
	}
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.class
		}
	}
	return "internal"
}

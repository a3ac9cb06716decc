// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the handlers map to HTTP status codes.
var (
	// ErrDuplicateActiveApplication: the applicant already has an
	// application in pending_review.
	ErrDuplicateActiveApplication = errors.New("an application is already under review for this account")

	// ErrInvalidStateTransition: the application is not in a status that
	// permits the requested action.
	ErrInvalidStateTransition = errors.New("application is not in a state that permits this action")

	ErrApplicationNotFound = errors.New("application not found")
	ErrArtisanNotFound     = errors.New("artisan not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrUserNotFound        = errors.New("user not found")

	ErrNotAuthorized      = errors.New("not authorized to perform this action")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrAccountSuspended   = errors.New("account is suspended")
)

// ValidationError carries the field-keyed messages the intake API returns.
// Keys are dotted wire paths ("businessInfo.contact.phone").
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// DocumentStorageError wraps an upstream document store failure so handlers
// can report it as a bad-gateway condition rather than a client error.
type DocumentStorageError struct {
	Ref string
	Err error
}

func (e *DocumentStorageError) Error() string {
	return fmt.Sprintf("document storage failed for %s: %v", e.Ref, e.Err)
}

func (e *DocumentStorageError) Unwrap() error {
	return e.Err
}

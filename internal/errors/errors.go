// Package errors holds the sentinel errors the HTTP boundary maps to status codes.
// Auth and identity errors wrap one of them.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized covers every token and credential failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is a route policy denial for an authenticated principal.
	ErrForbidden = errors.New("forbidden")
	// ErrMisconfigured is fatal at startup.
	ErrMisconfigured = errors.New("misconfigured")
)

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is is errors.Is, re-exported so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinels across repo/service layers.
var (
	// ErrValidation indicates a malformed or incomplete payload or filter value.
	ErrValidation = errors.New("validation")

	// ErrNotFound indicates the requested entity does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the entity exists but belongs to another owner (update paths only).
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a uniqueness violation (project name per owner, username).
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrDataIntegrity indicates a stored record that does not match its declared shape.
	ErrDataIntegrity = errors.New("data integrity")
)

// Validationf returns an error wrapping ErrValidation with a human readable reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Reason strips the sentinel prefix from err and returns the message meant for callers.
func Reason(err error, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

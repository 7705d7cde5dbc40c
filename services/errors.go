// Package services holds the account service and the authorization-scoped
// post/comment engine. Every operation receives the acting identity as an
// explicit argument; nothing is read from ambient request state.
package services

import (
	"errors"
	"fmt"
)

// Failure classes. Callers test with errors.Is; the wrapped message carries detail.
var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
)

// ErrWrongPassword is the login-time flavour of ErrInvalidCredential.
var ErrWrongPassword = fmt.Errorf("%w: wrong password", ErrInvalidCredential)

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbidden(action string) error {
	return fmt.Errorf("%w: only the author may %s", ErrForbidden, action)
}

// Package apperr holds the closed set of failures the service reports and the
// single mapping from those failures to HTTP status codes and public messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidationConflict is returned when a username or email is already taken.
	ErrValidationConflict = errors.New("username or email already exists")
	// ErrInvalidInput covers malformed bodies and policy violations the caller can fix.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated means no session token was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidToken means a session token was presented but failed verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidCredentials is a login failure; it never says which half was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	// ErrNotFoundOrForbidden merges "missing" and "not yours" for owned resources.
	ErrNotFoundOrForbidden = errors.New("not found or not owned")
	ErrNotFound            = errors.New("not found")
	// ErrInvalidOrExpiredToken is the reset flow's only failure.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	// ErrTransient wraps store, hashing, signing and mail failures.
	ErrTransient = errors.New("transient failure")
)

// Transient tags err as an internal failure while keeping it inspectable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Invalid wraps ErrInvalidInput with a caller-facing reason.
func Invalid(reason string) error {
	return &invalidInput{reason: reason}
}

type invalidInput struct {
	reason string
}

func (e *invalidInput) Error() string { return e.reason }

func (e *invalidInput) Unwrap() error { return ErrInvalidInput }

// Status maps an error to the HTTP status code reported to the client.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrTransient):
		return http.StatusInternalServerError
	case errors.Is(err, ErrValidationConflict),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidOrExpiredToken):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFoundOrForbidden), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show a client. Internal detail never
// leaves the server.
func PublicMessage(err error) string {
	var inv *invalidInput
	switch {
	case errors.Is(err, ErrTransient):
		return "Server error"
	case errors.As(err, &inv):
		return inv.reason
	case errors.Is(err, ErrValidationConflict):
		return "Username or email already exists"
	case errors.Is(err, ErrInvalidInput):
		return "Invalid request"
	case errors.Is(err, ErrUnauthenticated):
		return "Access denied, no token provided"
	case errors.Is(err, ErrInvalidToken):
		return "Invalid or expired token"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, ErrForbidden):
		return "Access denied"
	case errors.Is(err, ErrNotFoundOrForbidden):
		return "Not found or not authorized"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return "Password reset token is invalid or has expired"
	default:
		return "Server error"
	}
}

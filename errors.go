package vaultkit

import (
	"github.com/vaultkit/client-go/internal/apierrors"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAddress is returned when no server address is configured.
	ErrMissingAddress = apierrors.ErrMissingAddress

	// ErrNotFound matches an APIError with status 404.
	ErrNotFound = apierrors.ErrNotFound

	// ErrPermissionDenied matches an APIError with status 403.
	ErrPermissionDenied = apierrors.ErrPermissionDenied

	// ErrInvalidRequest matches an APIError with status 400.
	ErrInvalidRequest = apierrors.ErrInvalidRequest

	// ErrRateLimited matches an APIError with status 429.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrSealed matches an APIError with status 503.
	ErrSealed = apierrors.ErrSealed

	// ErrValidation matches every ValidationError.
	ErrValidation = apierrors.ErrValidation
)

// VaultKitError is implemented by all SDK errors.
type VaultKitError interface {
	error
	VaultKitError() // marker method
}

// APIError represents a non-2xx response. StatusCode is the literal HTTP
// status and Errors the server's message list (possibly empty).
type APIError = apierrors.APIError

// TransportError represents a connection, TLS, timeout, cancellation or
// serialization failure. It never carries a status code.
type TransportError = apierrors.TransportError

// ValidationError represents a usage failure, such as a builder missing a
// required field. It is always returned before any I/O.
type ValidationError = apierrors.ValidationError

// StatusCode returns the HTTP status of an APIError in err's chain, or 0.
func StatusCode(err error) int {
	return apierrors.StatusCode(err)
}

// Package apierrors provides shared error types for the vaultkit client.
package apierrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAddress is returned when no server address is configured.
	ErrMissingAddress = errors.New("server address is required")

	// ErrNotFound is returned when the requested path does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the token lacks a capability (403).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidRequest is returned when the server rejects the request payload (400).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRateLimited is returned when the server rate limit is exceeded (429).
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrSealed is returned when the server is sealed or in standby (503).
	ErrSealed = errors.New("server is sealed or unavailable")

	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("request validation failed")
)

// Transport operations reported in TransportError.Op.
const (
	OpEncode = "encode"
	OpSend   = "send"
	OpRead   = "read"
	OpDecode = "decode"
)

// APIError represents a non-2xx response from the server.
type APIError struct {
	StatusCode int
	// Errors is the server-supplied message list; it may be empty.
	Errors []string
	Method string
	Path   string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "API error %d", e.StatusCode)
	if e.Method != "" && e.Path != "" {
		fmt.Fprintf(&b, " (%s %s)", e.Method, e.Path)
	}
	if len(e.Errors) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Errors, "; "))
	}
	return b.String()
}

// VaultKitError implements the VaultKitError interface.
func (e *APIError) VaultKitError() {}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return target == ErrInvalidRequest
	case http.StatusForbidden:
		return target == ErrPermissionDenied
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusTooManyRequests:
		return target == ErrRateLimited
	case http.StatusServiceUnavailable:
		return target == ErrSealed
	}
	return false
}

// TransportError represents a failure that produced no usable HTTP response:
// connection, TLS, timeout, or (de)serialization of the payload.
type TransportError struct {
	Op     string
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("transport error: %s %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// VaultKitError implements the VaultKitError interface.
func (e *TransportError) VaultKitError() {}

// Timeout reports whether the failure was caused by a deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// ValidationError is a usage failure detected before any I/O, such as a
// builder missing a required field.
type ValidationError struct {
	// Request names the request type being built, e.g. "token lookup".
	Request string
	// Fields lists the offending fields by their wire name.
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "missing required fields"
	}
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s [%s]", msg, strings.Join(e.Fields, ", "))
	}
	if e.Request != "" {
		return fmt.Sprintf("invalid %s request: %s", e.Request, msg)
	}
	return "invalid request: " + msg
}

// VaultKitError implements the VaultKitError interface.
func (e *ValidationError) VaultKitError() {}

// Is implements errors.Is for sentinel error matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not
// (and does not wrap) an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

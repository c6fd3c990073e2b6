package apierrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "status code only",
			err:      &APIError{StatusCode: 500},
			expected: "API error 500",
		},
		{
			name:     "with one message",
			err:      &APIError{StatusCode: 403, Errors: []string{"permission denied"}},
			expected: "API error 403: permission denied",
		},
		{
			name:     "with several messages",
			err:      &APIError{StatusCode: 400, Errors: []string{"missing type", "bad path"}},
			expected: "API error 400: missing type; bad path",
		},
		{
			name:     "with method and path",
			err:      &APIError{StatusCode: 404, Method: "GET", Path: "/v1/kv/foo"},
			expected: "API error 404 (GET /v1/kv/foo)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		target     error
		expected   bool
	}{
		{"400 matches ErrInvalidRequest", 400, ErrInvalidRequest, true},
		{"403 matches ErrPermissionDenied", 403, ErrPermissionDenied, true},
		{"404 matches ErrNotFound", 404, ErrNotFound, true},
		{"429 matches ErrRateLimited", 429, ErrRateLimited, true},
		{"503 matches ErrSealed", 503, ErrSealed, true},
		{"404 does not match ErrPermissionDenied", 404, ErrPermissionDenied, false},
		{"500 does not match ErrNotFound", 500, ErrNotFound, false},
		{"500 does not match ErrValidation", 500, ErrValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &APIError{StatusCode: tt.statusCode}
			if got := errors.Is(err, tt.target); got != tt.expected {
				t.Errorf("errors.Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAPIError_WrappedMatches(t *testing.T) {
	err := fmt.Errorf("read secret: %w", &APIError{StatusCode: 404})

	if !errors.Is(err, ErrNotFound) {
		t.Error("wrapped 404 should match ErrNotFound")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("errors.As should find *APIError")
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Op: OpSend, Method: "GET", URL: "http://127.0.0.1:8200/v1/sys/health", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("TransportError should unwrap to its cause")
	}
	want := "transport error: send GET http://127.0.0.1:8200/v1/sys/health: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Timeout() {
		t.Error("Timeout() = true for a refused connection")
	}

	decodeErr := &TransportError{Op: OpDecode, Err: errors.New("unexpected EOF")}
	if decodeErr.Error() != "transport error: decode: unexpected EOF" {
		t.Errorf("Error() = %q", decodeErr.Error())
	}
}

func TestTransportError_Timeout(t *testing.T) {
	err := &TransportError{Op: OpSend, Err: fmt.Errorf("do request: %w", context.DeadlineExceeded)}
	if !err.Timeout() {
		t.Error("Timeout() = false for a deadline")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is(context.DeadlineExceeded) = false")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name:     "fields and request",
			err:      &ValidationError{Request: "token lookup", Fields: []string{"token"}},
			expected: "invalid token lookup request: missing required fields [token]",
		},
		{
			name:     "custom message",
			err:      &ValidationError{Message: "wrong decode mode"},
			expected: "invalid request: wrong decode mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
			if !errors.Is(tt.err, ErrValidation) {
				t.Error("ValidationError should match ErrValidation")
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(fmt.Errorf("wrap: %w", &APIError{StatusCode: 403})); got != 403 {
		t.Errorf("StatusCode() = %d, want 403", got)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode() = %d, want 0", got)
	}
	if got := StatusCode(nil); got != 0 {
		t.Errorf("StatusCode(nil) = %d, want 0", got)
	}
}

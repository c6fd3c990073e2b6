// Package retry wraps vaultkit operations with exponential backoff. The
// operations themselves never retry; callers that want resilience opt in:
//
//	secret, err := retry.Value(ctx, retry.DefaultConfig(), func(ctx context.Context) (map[string]string, error) {
//		return kv1.Get[map[string]string](ctx, client, "secret", "app/db")
//	})
//
// Only transient failures are retried: connection-level transport errors and
// the status codes accepted by Config.RetryableOn. Validation errors, decode
// errors and other API errors are returned immediately.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/vaultkit/client-go/internal/apierrors"
)

// Config configures retry behavior for failed operations.
type Config struct {
	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int
	// BaseDelay is the initial delay between retry attempts.
	BaseDelay time.Duration
	// MaxDelay is the maximum delay between retry attempts.
	MaxDelay time.Duration
	// Multiplier is the factor by which the delay increases after each attempt.
	Multiplier float64
	// Jitter is the randomization factor (0.0 to 1.0) added to delays.
	Jitter float64
	// RetryableOn determines if an API status code should trigger a retry.
	RetryableOn func(statusCode int) bool
	// RetryTransport retries connection and read failures.
	RetryTransport bool
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.2,
		RetryTransport: true,
		RetryableOn: func(statusCode int) bool {
			switch statusCode {
			case 412, 429, 500, 502, 503, 504:
				return true
			default:
				return false
			}
		},
	}
}

// ShouldRetry reports whether err, returned by the given attempt, is worth
// another try.
func (r *Config) ShouldRetry(attempt int, err error) bool {
	if err == nil || attempt >= r.MaxRetries {
		return false
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return r.RetryableOn != nil && r.RetryableOn(apiErr.StatusCode)
	}

	var transportErr *apierrors.TransportError
	if errors.As(err, &transportErr) {
		if !r.RetryTransport {
			return false
		}
		if errors.Is(err, context.Canceled) {
			return false
		}
		return transportErr.Op == apierrors.OpSend || transportErr.Op == apierrors.OpRead
	}

	return false
}

// Delay calculates the delay before the next retry attempt with optional jitter.
func (r *Config) Delay(attempt int) time.Duration {
	delay := float64(r.BaseDelay) * math.Pow(r.Multiplier, float64(attempt))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}

	if r.Jitter > 0 {
		jitterAmount := delay * r.Jitter
		delay = delay - jitterAmount + (rand.Float64() * 2 * jitterAmount)
	}

	return time.Duration(delay)
}

// Wait waits for the appropriate delay before retrying.
func (r *Config) Wait(ctx context.Context, attempt int) error {
	delay := r.Delay(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// retry budget is spent. The last error is returned. A nil cfg means
// DefaultConfig.
func Do(ctx context.Context, cfg *Config, fn func(context.Context) error) error {
	_, err := Value(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Value is Do for operations that return a result.
func Value[T any](ctx context.Context, cfg *Config, fn func(context.Context) (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if !cfg.ShouldRetry(attempt, err) || ctx.Err() != nil {
			return result, err
		}
		if waitErr := cfg.Wait(ctx, attempt); waitErr != nil {
			return result, err
		}
	}
}

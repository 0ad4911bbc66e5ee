// Package chain provides the transport plumbing shared by every component that
// talks to an Ethereum node: retry with backoff and per-endpoint rate limiting.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"
	"time"

	scouterr "github.com/mrz1836/scout/pkg/errors"
)

// Sentinel errors for retry logic.
var (
	ErrRetryable = &scouterr.ScoutError{
		Code:     "RETRYABLE_ERROR",
		Message:  "retryable error",
		ExitCode: scouterr.ExitUnavailable,
	}

	ErrTimeout = &scouterr.ScoutError{
		Code:     "TIMEOUT",
		Message:  "operation timed out",
		ExitCode: scouterr.ExitUnavailable,
	}

	ErrRateLimited = &scouterr.ScoutError{
		Code:     "RATE_LIMITED",
		Message:  "rate limited",
		ExitCode: scouterr.ExitUnavailable,
	}
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Maximum number of attempts (including initial)
	BaseDelay   time.Duration // Initial delay between retries
	MaxDelay    time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns the default retry configuration.
// 3 attempts total with delays of roughly 250ms and 500ms. Name lookups sit on
// the interactive path, so the budget is much shorter than for bulk jobs.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    time.Second,
	}
}

// Retry executes the operation with exponential backoff retry using the default configuration.
func Retry[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	return RetryWithConfig(ctx, DefaultRetryConfig(), operation)
}

// RetryWithConfig executes the operation with the specified retry configuration.
// Only errors classified by IsRetryable trigger another attempt.
func RetryWithConfig[T any](ctx context.Context, cfg RetryConfig, operation func() (T, error)) (T, error) {
	var result T
	var err error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		result, err = operation()
		if err == nil {
			return result, nil
		}

		if !IsRetryable(err) {
			return result, err
		}

		// Don't delay after the last attempt
		if attempt < attempts-1 {
			delay := calculateDelay(attempt, cfg.BaseDelay, cfg.MaxDelay)
			if wait := RetryAfter(err); wait > delay {
				delay = wait
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}
	}

	if attempts == 1 {
		return result, err
	}
	return result, fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
}

// calculateDelay calculates the delay for the given attempt using exponential backoff with jitter.
func calculateDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if baseDelay <= 0 {
		return 0
	}
	delay := baseDelay * (1 << attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	// Jitter in [delay/2, delay).
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + rand.N(half) //nolint:gosec // G404: Jitter does not require cryptographic randomness
}

// IsRetryable returns true if the error should trigger a retry.
// Caller cancellation is never retried: a superseded search must stop promptly.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, ErrRetryable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ParseRetryAfter parses the Retry-After header value.
// Returns the duration to wait, or 0 if parsing fails.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

// RateLimitedError returns ErrRateLimited carrying the server's Retry-After wait.
func RateLimitedError(wait time.Duration) error {
	return scouterr.WithDetails(ErrRateLimited, map[string]string{
		"retry_after": wait.String(),
	})
}

// RetryAfter returns the wait requested by a rate-limited response, or 0.
func RetryAfter(err error) time.Duration {
	var se *scouterr.ScoutError
	if !errors.As(err, &se) || se.Code != ErrRateLimited.Code {
		return 0
	}
	wait, parseErr := time.ParseDuration(se.Details["retry_after"])
	if parseErr != nil || wait < 0 {
		return 0
	}
	return wait
}

// WrapRetryable wraps an error to mark it as retryable.
func WrapRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}

// Package retry runs an operation a bounded number of times and reports
// exhaustion as a typed error instead of falling through with a stale value.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is matched by every ExhaustedError.
var ErrExhausted = errors.New("retries exhausted")

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Last)
}

// Is makes errors.Is(err, ErrExhausted) work while Unwrap exposes the cause.
func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Config holds configuration for retry behavior.
type Config struct {
	Attempts  int           // Total attempts, including the first one
	BaseDelay time.Duration // Delay before the second attempt
	MaxDelay  time.Duration // Upper bound for the exponential backoff
	// OnRetry is called before sleeping after a failed attempt.
	OnRetry func(attempt int, err error)
}

// DefaultConfig matches the koji hub policy: five attempts.
func DefaultConfig() Config {
	return Config{
		Attempts:  5,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  10 * time.Second,
	}
}

func (c Config) attempts() int {
	if c.Attempts > 0 {
		return c.Attempts
	}
	return 1
}

func (c Config) delay(attempt int) time.Duration {
	d := c.BaseDelay * time.Duration(1<<attempt)
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds, fails with an error retryable rejects, or
// the attempts run out. A nil retryable retries every error.
func Do[T any](ctx context.Context, cfg Config, retryable func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if retryable != nil && !retryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err)
		}
		if d := cfg.delay(attempt); d > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(d):
			}
		}
	}

	return zero, &ExhaustedError{Attempts: attempts, Last: lastErr}
}

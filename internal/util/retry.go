// ABOUTME: Retry helper with capped exponential backoff and jitter
// ABOUTME: Used by cloud sync, where transient network failures are expected
package util

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// MaxBackoff caps any single delay
const MaxBackoff = 30 * time.Second

// permanent marks an error that should not be retried
type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Retry returns it immediately
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

// CalculateBackoff returns base * 2^attempt with ±25% jitter, capped at MaxBackoff.
// Attempt 0 or less means no wait.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > MaxBackoff || backoff <= 0 {
		backoff = MaxBackoff
	}
	half := int64(backoff) / 2
	if half <= 0 {
		return backoff
	}
	return backoff + time.Duration(rand.Int64N(half)) - backoff/4
}

// Retry calls fn up to attempts times, sleeping CalculateBackoff between tries.
// It stops early on success, a Permanent error, or ctx cancellation, and
// returns the last error seen.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if wait := CalculateBackoff(baseDelay, attempt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(err, ctx.Err())
			case <-timer.C:
			}
		}

		err = fn(attempt)
		if err == nil {
			return nil
		}
		var p *permanent
		if errors.As(err, &p) {
			return p.err
		}
	}
	return err
}

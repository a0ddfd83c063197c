// ABOUTME: Tests for backoff bounds and the Retry loop
// ABOUTME: Delays are kept to milliseconds so the suite stays fast
package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCalculateBackoff_NoWaitBeforeFirstTry(t *testing.T) {
	for _, attempt := range []int{0, -1, -100} {
		if got := CalculateBackoff(time.Second, attempt); got != 0 {
			t.Errorf("attempt %d: expected 0, got %v", attempt, got)
		}
	}
	if got := CalculateBackoff(0, 3); got != 0 {
		t.Errorf("zero base: expected 0, got %v", got)
	}
}

func TestCalculateBackoff_Bounds(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := 1; attempt <= 5; attempt++ {
		expected := base * time.Duration(1<<uint(attempt))
		low, high := expected*3/4, expected*5/4
		for i := 0; i < 20; i++ {
			got := CalculateBackoff(base, attempt)
			if got < low || got > high {
				t.Fatalf("attempt %d: expected %v..%v, got %v", attempt, low, high, got)
			}
		}
	}
}

func TestCalculateBackoff_Capped(t *testing.T) {
	limit := MaxBackoff * 5 / 4
	for _, attempt := range []int{10, 31, 100} {
		got := CalculateBackoff(time.Second, attempt)
		if got > limit || got < 0 {
			t.Errorf("attempt %d: expected 0..%v, got %v", attempt, limit, got)
		}
	}
}

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func(int) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(attempt int) error {
		calls++
		return errors.New("down")
	})
	if err == nil || err.Error() != "down" {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	sentinel := errors.New("unauthorized")
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func(int) error {
		calls++
		return Permanent(sentinel)
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func(int) error {
		calls++
		cancel()
		return errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

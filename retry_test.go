package campaigner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffDelayScalesLinearly(t *testing.T) {
	base := 100 * time.Millisecond
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
		{0, 100 * time.Millisecond},
		{-1, 100 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := backoffDelay(base, tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%v, %d) = %v, want %v", base, tt.attempt, got, tt.want)
		}
	}
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: true,
		Rate:    10,
		Period:  time.Second,
		Burst:   3,
	})
	defer rl.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Acquire(ctx); err != nil {
			t.Fatalf("burst acquire %d returned error: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := rl.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded once the burst is spent, got %v", err)
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: true,
		Rate:    100,
		Period:  time.Second,
		Burst:   1,
	})
	defer rl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rl.Acquire(ctx); err != nil {
		t.Fatalf("initial acquire returned error: %v", err)
	}
	// Next token arrives within ~10ms at 100/s.
	if err := rl.Acquire(ctx); err != nil {
		t.Fatalf("refilled acquire returned error: %v", err)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: false})
	defer rl.Close()

	// A disabled config carries no rate; constructing it must not start
	// a refill loop that would divide by zero. Give any stray goroutine
	// time to run before acquiring.
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 100; i++ {
		if err := rl.Acquire(context.Background()); err != nil {
			t.Fatalf("disabled limiter must always admit, got %v", err)
		}
	}
}

func TestRateLimiterZeroRate(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: true,
		Rate:    0,
		Period:  time.Second,
		Burst:   2,
	})
	defer rl.Close()

	time.Sleep(50 * time.Millisecond)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := rl.Acquire(ctx); err != nil {
			t.Fatalf("burst acquire %d returned error: %v", i, err)
		}
	}

	// With no rate there is no refill; further acquires must wait for
	// Close or cancellation rather than crashing.
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := rl.Acquire(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded with no refill, got %v", err)
	}
}

func TestRateLimiterClose(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: true,
		Rate:    1,
		Period:  time.Hour,
		Burst:   0,
	})

	done := make(chan error, 1)
	go func() {
		done <- rl.Acquire(context.Background())
	}()

	rl.Close()
	rl.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClientClosed) {
			t.Fatalf("expected ErrClientClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Acquire did not unblock on Close")
	}
}

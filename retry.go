package campaigner

import (
	"context"
	"time"
)

// backoffDelay returns the wait before the next transport attempt. The
// base delay is scaled linearly by the attempt number just made, so
// successive retries wait progressively longer.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(attempt)
}

// RateLimiter provides token-bucket admission control for sends. It sits
// beneath the dispatch concurrency cap: a worker that has a slot still
// waits for a token before calling the transport.
type RateLimiter struct {
	config RateLimitConfig
	tokens chan struct{}
	done   chan struct{}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config: config,
		tokens: make(chan struct{}, config.Burst),
		done:   make(chan struct{}),
	}

	// Fill initial tokens
	for i := 0; i < config.Burst; i++ {
		select {
		case rl.tokens <- struct{}{}:
		default:
		}
	}

	// A disabled or rateless limiter never refills; starting the
	// goroutine would divide by zero computing the interval.
	if config.Enabled && config.Rate > 0 && config.Period > 0 {
		go rl.refillTokens()
	}

	return rl
}

// Acquire blocks until the rate limit admits one send, or the context is
// canceled.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	if !rl.config.Enabled {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.done:
		return ErrClientClosed
	case <-rl.tokens:
		return nil
	}
}

// refillTokens periodically refills the token bucket. Only started for
// enabled configs with a positive rate.
func (rl *RateLimiter) refillTokens() {
	if rl.config.Rate <= 0 {
		return
	}
	interval := rl.config.Period / time.Duration(rl.config.Rate)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			select {
			case rl.tokens <- struct{}{}:
			default:
				// Bucket is full
			}
		}
	}
}

// Close stops the refill goroutine and unblocks waiters.
func (rl *RateLimiter) Close() {
	select {
	case <-rl.done:
	default:
		close(rl.done)
	}
}

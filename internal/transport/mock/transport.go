// Package mock provides an in-memory transport for local development and
// automated testing. Behaviour is scriptable per recipient without making
// real network calls.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lattiq/campaigner/internal/core"
)

// Script controls how the transport behaves for a given recipient address.
// FailCount attempts fail before delivery succeeds; AlwaysFail never succeeds.
type Script struct {
	FailCount  int
	AlwaysFail bool
	Err        error
}

// Transport implements core.Transport backed by in-memory state. It records
// every accepted message and counts Send attempts per recipient so tests can
// assert on retry behaviour.
type Transport struct {
	latency time.Duration

	mu       sync.Mutex
	scripts  map[string]*Script
	attempts map[string]int
	sent     []*core.Message
	closed   bool
	seq      int
}

// NewTransport constructs a mock transport that succeeds on every send until
// scripted otherwise.
func NewTransport() *Transport {
	return &Transport{
		scripts:  make(map[string]*Script),
		attempts: make(map[string]int),
	}
}

// Fail scripts the next count sends to the given address to fail with a
// retryable error before subsequent sends succeed.
func (t *Transport) Fail(email string, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scripts[email] = &Script{FailCount: count}
}

// FailAlways scripts every send to the given address to fail.
func (t *Transport) FailAlways(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scripts[email] = &Script{AlwaysFail: true}
}

// FailWith scripts sends to the given address using an explicit script.
func (t *Transport) FailWith(email string, script Script) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := script
	t.scripts[email] = &s
}

// SetLatency makes every Send sleep for d before responding.
func (t *Transport) SetLatency(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d < 0 {
		d = 0
	}
	t.latency = d
}

// Send simulates delivering the message, honouring any script registered for
// the destination address.
func (t *Transport) Send(ctx context.Context, msg *core.Message) (*core.Receipt, error) {
	if msg == nil {
		return nil, core.NewValidationError("message", "message is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, core.NewTransportError("mock", "closed", "transport is closed")
	}
	latency := t.latency
	email := msg.To
	t.attempts[email]++
	attempt := t.attempts[email]
	script := t.scripts[email]
	t.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if script != nil {
		fail := script.AlwaysFail || attempt <= script.FailCount
		if fail {
			if script.Err != nil {
				return nil, script.Err
			}
			return nil, core.NewRetryableTransportError("mock", "scripted",
				fmt.Sprintf("scripted failure for %s (attempt %d)", email, attempt))
		}
	}

	t.mu.Lock()
	t.seq++
	id := fmt.Sprintf("mock-%06d", t.seq)
	t.sent = append(t.sent, msg)
	t.mu.Unlock()

	return &core.Receipt{
		MessageID: id,
		Transport: t.Name(),
		Timestamp: time.Now(),
	}, nil
}

// Attempts reports how many Send calls were made for the given address.
func (t *Transport) Attempts(email string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts[email]
}

// Sent returns a copy of every successfully delivered message in order.
func (t *Transport) Sent() []*core.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*core.Message, len(t.sent))
	copy(out, t.sent)
	return out
}

// SentCount reports the number of successfully delivered messages.
func (t *Transport) SentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

// ValidateSettings always succeeds, the mock needs no configuration.
func (t *Transport) ValidateSettings() error {
	return nil
}

// Name returns the transport identifier.
func (t *Transport) Name() string {
	return "mock"
}

// Close marks the transport closed. Subsequent sends fail.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

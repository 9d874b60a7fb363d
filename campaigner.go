package campaigner

import (
	"context"
)

// Public interfaces for the campaigner library
type (
	// Dispatcher defines the core bulk dispatch interface.
	// All methods are safe for concurrent use.
	Dispatcher interface {
		// Dispatch renders and sends one message per recipient under the
		// configured concurrency cap and returns once every recipient has
		// a terminal outcome. The summary always satisfies
		// Sent+Failed == Total. Per-recipient transport failures are
		// recorded, never escalated.
		Dispatch(ctx context.Context, job *Job, sink ProgressSink) (*Summary, error)

		// Close closes the dispatcher and releases any resources.
		// After calling Close, the dispatcher should not be used.
		Close() error
	}
)

// ProgressSink receives progress snapshots during a dispatch. The engine
// delivers snapshots through an internal buffer, so a slow sink never
// stalls sending; snapshots may be dropped under pressure, but counters
// in successive deliveries are monotonically non-decreasing.
type ProgressSink func(Snapshot)

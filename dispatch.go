package campaigner

import (
	"context"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lattiq/campaigner/internal/core"
)

// Dispatch renders and sends one message per recipient of the job under
// a bounded worker pool, retries failed sends with linearly-scaled
// backoff, and aggregates running and final statistics. It returns only
// after every recipient has a terminal outcome; the summary always
// satisfies Sent+Failed == Total. Per-recipient transport failures are
// contained in their SendResult and never abort sibling sends.
//
// Progress snapshots are emitted to sink after every Nth completion
// (configured, default 10) and unconditionally after the final one.
// sink may be nil.
func (c *Client) Dispatch(ctx context.Context, job *Job, sink ProgressSink) (*Summary, error) {
	ctx, span := c.tracer.Start(ctx, "campaigner.Client.Dispatch")
	defer span.End()

	if c.isClosed() {
		span.RecordError(ErrClientClosed)
		span.SetStatus(codes.Error, ErrClientClosed.Error())
		return nil, ErrClientClosed
	}

	if job == nil || len(job.Recipients) == 0 {
		err := core.NewValidationError("recipients", "at least one recipient required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	concurrency := job.Concurrency
	if concurrency <= 0 {
		concurrency = c.config.Dispatch.Concurrency
	}
	if concurrency <= 0 {
		// Zero-value configs reach here through NewWithTransport, which
		// does not validate; a zero-capacity semaphore would never admit
		// a worker.
		concurrency = defaultConcurrency
	}
	maxAttempts := job.RetryCount
	if maxAttempts <= 0 {
		maxAttempts = c.config.Retry.MaxAttempts
	}
	if !c.config.Retry.Enabled || maxAttempts < 1 {
		maxAttempts = 1
	}
	from := job.From
	if !from.Valid() {
		from = c.config.From
	}

	total := len(job.Recipients)

	span.SetAttributes(
		attribute.Int("campaigner.batch.size", total),
		attribute.Int("campaigner.batch.concurrency", concurrency),
		attribute.Int("campaigner.batch.max_attempts", maxAttempts),
		attribute.String("campaigner.transport", c.transport.Name()),
	)

	started := time.Now()
	c.log.Info().
		Int("total", total).
		Int("concurrency", concurrency).
		Str("transport", c.transport.Name()).
		Msg("dispatch started")

	agg := newAggregator(total, c.config.Dispatch.ProgressEvery, c.config.Dispatch.SnapshotBuffer, sink)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for _, recipient := range job.Recipients {
		sem <- struct{}{}
		wg.Add(1)
		go func(rec *Recipient) {
			defer func() {
				<-sem
				wg.Done()
			}()
			agg.record(c.sendOne(ctx, from, job.Subject, job.Body, rec, maxAttempts))
		}(recipient)
	}
	wg.Wait()

	summary := agg.finish()

	span.SetAttributes(
		attribute.Int("campaigner.batch.sent", summary.Sent),
		attribute.Int("campaigner.batch.failed", summary.Failed),
	)
	span.SetStatus(codes.Ok, "dispatch completed")

	evt := c.log.Info()
	if summary.Failed > 0 {
		evt = c.log.Warn()
	}
	evt.Int("total", summary.Total).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Dur("dur", time.Since(started)).
		Msg("dispatch finished")

	return summary, nil
}

// sendOne is the per-recipient unit of work: render, classify, send with
// retry, produce the terminal outcome.
func (c *Client) sendOne(ctx context.Context, from Address, subjectTpl, bodyTpl string, rec *Recipient, maxAttempts int) SendResult {
	subject := Render(subjectTpl, rec)
	body := Render(bodyTpl, rec)

	msg := &Message{
		From:    from,
		To:      rec.Email(),
		Subject: subject,
	}
	// The transport always receives both alternatives: the missing one
	// is derived mechanically from the rendered body.
	if IsHTML(body) {
		msg.HTMLBody = body
		msg.TextBody = StripTags(body)
	} else {
		msg.TextBody = body
		msg.HTMLBody = WrapPlainText(body)
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Acquire(ctx); err != nil {
				lastErr = err
				break
			}
		}

		attempts = attempt
		receipt, err := c.transport.Send(ctx, msg)
		if err == nil {
			return SendResult{
				Email:     msg.To,
				Success:   true,
				MessageID: receipt.MessageID,
				Attempts:  attempts,
			}
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		delay := backoffDelay(c.config.Retry.BaseDelay, attempt)
		c.log.Debug().
			Str("to", msg.To).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("send retry scheduled")
		time.Sleep(delay)
	}

	c.log.Warn().Str("to", msg.To).Int("attempts", attempts).Err(lastErr).Msg("send failed")

	errText := "send failed"
	if lastErr != nil {
		errText = lastErr.Error()
	}
	return SendResult{
		Email:    msg.To,
		Success:  false,
		Error:    errText,
		Attempts: attempts,
	}
}

// aggregator owns the shared counters and results of one dispatch. All
// mutation happens under its mutex; snapshot emission happens under the
// same lock so delivered snapshots are monotonically non-decreasing.
type aggregator struct {
	mu      sync.Mutex
	total   int
	every   int
	sent    int
	failed  int
	results []SendResult

	snapCh  chan Snapshot
	fwdDone chan struct{}
}

func newAggregator(total, every, buffer int, sink ProgressSink) *aggregator {
	a := &aggregator{
		total:   total,
		every:   every,
		results: make([]SendResult, 0, total),
	}
	if a.every < 1 {
		a.every = defaultProgressEvery
	}
	if sink != nil {
		if buffer < 1 {
			buffer = 16
		}
		a.snapCh = make(chan Snapshot, buffer)
		a.fwdDone = make(chan struct{})
		go func() {
			defer close(a.fwdDone)
			for snap := range a.snapCh {
				sink(snap)
			}
		}()
	}
	return a
}

func (a *aggregator) record(res SendResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if res.Success {
		a.sent++
	} else {
		a.failed++
	}
	a.results = append(a.results, res)

	completed := a.sent + a.failed
	if completed%a.every == 0 || completed == a.total {
		a.emit(Snapshot{
			Total:    a.total,
			Sent:     a.sent,
			Failed:   a.failed,
			Progress: int(math.Round(float64(completed) / float64(a.total) * 100)),
		})
	}
}

// emit queues a snapshot without ever blocking a worker: when the buffer
// is full the oldest queued snapshot is dropped, so the latest state is
// always the one observers catch up to.
func (a *aggregator) emit(snap Snapshot) {
	if a.snapCh == nil {
		return
	}
	for {
		select {
		case a.snapCh <- snap:
			return
		default:
		}
		select {
		case <-a.snapCh:
		default:
		}
	}
}

// finish closes the snapshot stream, waits for queued snapshots to reach
// the sink, and returns the final summary.
func (a *aggregator) finish() *Summary {
	if a.snapCh != nil {
		close(a.snapCh)
		<-a.fwdDone
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return &Summary{
		Total:   a.total,
		Sent:    a.sent,
		Failed:  a.failed,
		Results: a.results,
	}
}

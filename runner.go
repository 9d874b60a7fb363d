package campaigner

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lattiq/campaigner/internal/store"
)

// StartRequest describes one campaign to run in the background.
type StartRequest struct {
	// Name labels the campaign in the store.
	Name string

	// Subject and Body are templates with {{field}} placeholders.
	Subject string
	Body    string

	// From overrides the configured sender when set.
	From Address

	// Recipients is the extracted batch to send to.
	Recipients []*Recipient

	// Concurrency and RetryCount override the configured defaults when
	// positive.
	Concurrency int
	RetryCount  int

	// Sink optionally receives progress snapshots during the run.
	Sink ProgressSink
}

// Handle tracks one background campaign run. The campaign ID is
// available immediately; the summary once Done is closed.
type Handle struct {
	// CampaignID identifies the persisted campaign record.
	CampaignID string

	done chan struct{}

	mu      sync.Mutex
	summary *Summary
	err     error
}

// Done is closed when the background run finishes, successfully or not.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Summary returns the final dispatch summary. It is nil until Done is
// closed, and nil with an error when the run failed before dispatching.
func (h *Handle) Summary() (*Summary, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.summary, h.err
}

// Wait blocks until the run finishes or ctx is cancelled, then returns
// the summary. Cancelling ctx abandons the wait, not the run.
func (h *Handle) Wait(ctx context.Context) (*Summary, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return h.Summary()
	}
}

func (h *Handle) finish(summary *Summary, err error) {
	h.mu.Lock()
	h.summary = summary
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

// Runner starts campaigns in the background and persists their
// lifecycle: the campaign record, per-recipient delivery logs and final
// counters.
type Runner struct {
	dispatcher Dispatcher
	store      store.Store
	log        zerolog.Logger
}

// NewRunner constructs a runner over the given dispatcher and store.
func NewRunner(dispatcher Dispatcher, st store.Store, logger zerolog.Logger) *Runner {
	return &Runner{
		dispatcher: dispatcher,
		store:      st,
		log:        logger.With().Str("component", "runner").Logger(),
	}
}

// Start validates the request, persists a pending campaign and launches
// the dispatch in a background goroutine. The returned handle carries
// the campaign ID immediately; callers observe completion through it.
//
// ctx governs the background run, not just Start itself.
func (r *Runner) Start(ctx context.Context, req StartRequest) (*Handle, error) {
	if err := validateStart(req); err != nil {
		return nil, err
	}

	campaign := &store.Campaign{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Subject:     req.Subject,
		Body:        req.Body,
		TotalEmails: len(req.Recipients),
		Status:      store.StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := r.store.CreateCampaign(ctx, campaign); err != nil {
		return nil, err
	}

	handle := &Handle{
		CampaignID: campaign.ID,
		done:       make(chan struct{}),
	}

	r.log.Info().
		Str("campaign_id", campaign.ID).
		Str("name", campaign.Name).
		Int("total", campaign.TotalEmails).
		Msg("campaign started")

	go r.run(ctx, campaign.ID, req, handle)

	return handle, nil
}

func (r *Runner) run(ctx context.Context, campaignID string, req StartRequest, handle *Handle) {
	startedAt := time.Now()
	if err := r.store.StartCampaign(ctx, campaignID, startedAt); err != nil {
		r.log.Error().Err(err).Str("campaign_id", campaignID).Msg("failed to mark campaign processing")
	}

	job := &Job{
		Subject:     req.Subject,
		Body:        req.Body,
		From:        req.From,
		Recipients:  req.Recipients,
		Concurrency: req.Concurrency,
		RetryCount:  req.RetryCount,
	}

	summary, err := r.dispatcher.Dispatch(ctx, job, req.Sink)
	if err != nil {
		r.log.Error().Err(err).Str("campaign_id", campaignID).Msg("campaign dispatch failed")
		if cerr := r.store.CompleteCampaign(ctx, campaignID, 0, 0, store.StatusFailed, time.Now()); cerr != nil {
			r.log.Error().Err(cerr).Str("campaign_id", campaignID).Msg("failed to mark campaign failed")
		}
		handle.finish(nil, err)
		return
	}

	if err := r.store.AppendLogs(ctx, logEntries(campaignID, summary)); err != nil {
		r.log.Error().Err(err).Str("campaign_id", campaignID).Msg("failed to persist delivery logs")
	}
	if err := r.store.CompleteCampaign(ctx, campaignID, summary.Sent, summary.Failed, store.StatusCompleted, time.Now()); err != nil {
		r.log.Error().Err(err).Str("campaign_id", campaignID).Msg("failed to finalize campaign")
	}

	r.log.Info().
		Str("campaign_id", campaignID).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Dur("took", time.Since(startedAt)).
		Msg("campaign completed")

	handle.finish(summary, nil)
}

func logEntries(campaignID string, summary *Summary) []store.LogEntry {
	entries := make([]store.LogEntry, 0, len(summary.Results))
	now := time.Now()
	for _, res := range summary.Results {
		status := store.LogStatusSent
		if !res.Success {
			status = store.LogStatusFailed
		}
		entries = append(entries, store.LogEntry{
			CampaignID: campaignID,
			Email:      res.Email,
			Status:     status,
			Error:      res.Error,
			Attempts:   res.Attempts,
			SentAt:     now,
		})
	}
	return entries
}

func validateStart(req StartRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name", "campaign name is required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return NewValidationError("subject", "subject template is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		return NewValidationError("body", "body template is required")
	}
	if len(req.Recipients) == 0 {
		return ErrNoRecipients
	}
	return nil
}

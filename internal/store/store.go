// Package store persists campaigns and their per-recipient delivery logs.
package store

import (
	"context"
	"errors"
	"time"
)

// Campaign status lifecycle. A campaign is created pending, moves to
// processing when dispatch starts, and finishes completed or failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Log entry statuses.
const (
	LogStatusSent   = "sent"
	LogStatusFailed = "failed"
)

// ErrNotFound indicates the requested campaign does not exist.
var ErrNotFound = errors.New("store: campaign not found")

// Campaign is one persisted dispatch run.
type Campaign struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	TotalEmails int        `json:"totalEmails"`
	SentCount   int        `json:"sentCount"`
	FailedCount int        `json:"failedCount"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// LogEntry is one per-recipient delivery outcome within a campaign.
type LogEntry struct {
	CampaignID string    `json:"campaignId"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Attempts   int       `json:"attempts"`
	SentAt     time.Time `json:"sentAt"`
}

// Store is the persistence contract used by the campaign runner.
type Store interface {
	// CreateCampaign inserts a new pending campaign.
	CreateCampaign(ctx context.Context, c *Campaign) error

	// StartCampaign marks the campaign processing and records the start time.
	StartCampaign(ctx context.Context, id string, startedAt time.Time) error

	// CompleteCampaign records the final counters, terminal status and
	// completion time.
	CompleteCampaign(ctx context.Context, id string, sent, failed int, status string, completedAt time.Time) error

	// AppendLogs persists a batch of per-recipient outcomes.
	AppendLogs(ctx context.Context, entries []LogEntry) error

	// Campaign fetches one campaign by ID.
	Campaign(ctx context.Context, id string) (*Campaign, error)

	// Campaigns lists campaigns most recent first.
	Campaigns(ctx context.Context, limit int) ([]*Campaign, error)

	// Logs lists the delivery log for a campaign in insertion order.
	Logs(ctx context.Context, campaignID string) ([]LogEntry, error)

	Close() error
}

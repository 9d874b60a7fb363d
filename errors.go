package campaigner

import (
	"errors"
	"fmt"
	"time"

	"github.com/lattiq/campaigner/internal/ingest"
)

// Predefined sentinel errors for common cases.
var (
	// ErrInvalidUpload indicates the uploaded file could not be parsed in
	// its declared format.
	ErrInvalidUpload = ingest.ErrInvalidUpload

	// ErrUnsupportedFormat indicates the uploaded file is neither CSV nor
	// Excel.
	ErrUnsupportedFormat = ingest.ErrUnsupportedFormat

	// ErrFileTooLarge indicates the upload exceeds MaxUploadSize.
	ErrFileTooLarge = ingest.ErrFileTooLarge

	// ErrNoRecipients indicates no valid email addresses were found in
	// the parsed rows. The whole upload is rejected, not partially used.
	ErrNoRecipients = errors.New("no valid email addresses found")

	// ErrTransportTimeout indicates a transport operation timed out.
	ErrTransportTimeout = errors.New("transport timeout")

	// ErrRateLimited indicates the operation was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransportUnavailable indicates the transport is unavailable.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrInvalidConfiguration indicates invalid configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("client closed")
)

// RateLimitError represents a rate limiting error with retry information.
type RateLimitError struct {
	// Message is the error message.
	Message string

	// RetryAfterDuration indicates when the operation can be retried.
	RetryAfterDuration time.Duration

	// Limit is the rate limit that was exceeded.
	Limit int

	// Window is the time window for the rate limit.
	Window time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %s (retry after %v)", e.Message, e.RetryAfterDuration)
}

// RetryAfter returns the duration after which the operation can be retried.
func (e *RateLimitError) RetryAfter() time.Duration {
	return e.RetryAfterDuration
}

// NewRateLimitError creates a new rate limit error.
func NewRateLimitError(message string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{
		Message:            message,
		RetryAfterDuration: retryAfter,
	}
}

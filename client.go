package campaigner

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/lattiq/campaigner/internal/core"
	"github.com/lattiq/campaigner/internal/transport/mailgun"
	"github.com/lattiq/campaigner/internal/transport/sendgrid"
	"github.com/lattiq/campaigner/internal/transport/ses"
	"github.com/lattiq/campaigner/internal/transport/smtp"
)

// Type aliases to re-export core types for the public API.
// This allows users to access types like campaigner.Recipient instead of
// core.Recipient, maintaining a clean public interface while keeping
// implementation details internal.
type (
	Transport         = core.Transport
	TransportSettings = core.TransportSettings
	Address           = core.Address
	Column            = core.Column
	Row               = core.Row
	Recipient         = core.Recipient
	RecipientSet      = core.RecipientSet
	Message           = core.Message
	Receipt           = core.Receipt
	Job               = core.Job
	SendResult        = core.SendResult
	Snapshot          = core.Snapshot
	Summary           = core.Summary
	ValidationError   = core.ValidationError
	TransportError    = core.TransportError
)

// Error constructor functions
var (
	NewRecipient                = core.NewRecipient
	NewValidationError          = core.NewValidationError
	NewValidationErrorWithValue = core.NewValidationErrorWithValue
	NewTransportError           = core.NewTransportError
	NewRetryableTransportError  = core.NewRetryableTransportError
	NewTemporaryTransportError  = core.NewTemporaryTransportError
	IsRetryable                 = core.IsRetryable
	IsTemporary                 = core.IsTemporary
)

// Client implements the Dispatcher interface and executes bulk dispatch
// batches. All methods are safe for concurrent use.
type Client struct {
	config    Config
	transport Transport
	limiter   *RateLimiter
	tracer    trace.Tracer
	log       zerolog.Logger
	mu        sync.RWMutex
	closed    bool
}

// New creates a new dispatch client, constructing the transport from the
// configuration. The client must be closed when no longer needed to
// release resources.
func New(config Config, opts ...Option) (*Client, error) {
	// Apply functional options
	for _, opt := range opts {
		opt(&config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport, err := createTransport(config.Transport.Type, config.Transport.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return NewWithTransport(config, transport)
}

// NewWithTransport creates a dispatch client around an explicitly
// constructed transport instance. The caller keeps the transport's
// construction and the client takes over its lifecycle: Close closes the
// transport.
func NewWithTransport(config Config, transport Transport, opts ...Option) (*Client, error) {
	for _, opt := range opts {
		opt(&config)
	}

	if transport == nil {
		return nil, core.NewValidationError("transport", "transport instance is required")
	}

	client := &Client{
		config:    config,
		transport: transport,
		tracer:    otel.Tracer("github.com/lattiq/campaigner"),
		log:       config.Logger,
	}

	if config.RateLimit.Enabled {
		client.limiter = NewRateLimiter(config.RateLimit)
	}

	return client, nil
}

// Close closes the client, its rate limiter and the underlying
// transport.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.limiter != nil {
		c.limiter.Close()
	}

	if err := c.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}

	return nil
}

// TransportName returns the name of the configured transport.
func (c *Client) TransportName() string {
	return c.transport.Name()
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// createTransport creates a transport instance based on type and
// settings.
func createTransport(transportType TransportType, settings TransportSettings) (Transport, error) {
	switch transportType {
	case TransportAWSSES:
		return ses.NewTransport(settings)
	case TransportSendGrid:
		return sendgrid.NewTransport(settings)
	case TransportMailgun:
		return mailgun.NewTransport(settings)
	case TransportSMTP:
		return smtp.NewTransport(settings)
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}

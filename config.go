package campaigner

import (
	"time"

	"github.com/rs/zerolog"
)

// Config holds the complete campaigner configuration.
type Config struct {
	// Transport contains transport-specific configuration.
	Transport TransportConfig

	// From is the default sender address applied to jobs that do not
	// carry their own.
	From Address

	// Dispatch contains dispatch engine configuration.
	Dispatch DispatchConfig

	// Retry contains retry policy configuration.
	Retry RetryConfig

	// RateLimit contains rate limiting configuration.
	RateLimit RateLimitConfig

	// Logger receives structured engine logs. Defaults to a no-op
	// logger.
	Logger zerolog.Logger
}

// TransportConfig contains transport-specific settings.
type TransportConfig struct {
	// Type specifies the delivery transport to use.
	Type TransportType

	// Settings contains settings for the transport.
	Settings TransportSettings

	// Timeout is the maximum time to wait for transport operations.
	Timeout time.Duration

	// MaxConnsPerHost limits the number of connections per host for
	// HTTP-based transports. The effective connection ceiling should be
	// at least the dispatch concurrency to avoid queuing beneath the
	// engine's own admission control.
	MaxConnsPerHost int

	// IdleConnTimeout is the maximum time an idle connection will remain open.
	IdleConnTimeout time.Duration
}

// TransportType represents the type of delivery transport.
type TransportType string

const (
	// TransportAWSSES represents Amazon Simple Email Service.
	TransportAWSSES TransportType = "aws_ses"

	// TransportSendGrid represents the SendGrid email service.
	TransportSendGrid TransportType = "sendgrid"

	// TransportMailgun represents the Mailgun email service.
	TransportMailgun TransportType = "mailgun"

	// TransportSMTP represents a generic SMTP server.
	TransportSMTP TransportType = "smtp"
)

// String returns the string representation of the transport type.
func (tt TransportType) String() string {
	return string(tt)
}

// Valid checks if the transport type is supported.
func (tt TransportType) Valid() bool {
	switch tt {
	case TransportAWSSES, TransportSendGrid, TransportMailgun, TransportSMTP:
		return true
	default:
		return false
	}
}

// DispatchConfig contains dispatch engine configuration.
type DispatchConfig struct {
	// Concurrency caps in-flight sends per dispatch (default: 50).
	Concurrency int

	// ProgressEvery emits a progress snapshot after every Nth completion
	// (default: 10). The final completion always emits one.
	ProgressEvery int

	// SnapshotBuffer is the capacity of the buffer decoupling the
	// progress sink from the engine (default: 16). Snapshots beyond the
	// buffer are dropped rather than stalling sends.
	SnapshotBuffer int
}

// RetryConfig contains retry policy configuration.
type RetryConfig struct {
	// Enabled indicates whether retries are enabled.
	Enabled bool

	// MaxAttempts is the maximum total transport attempts per recipient
	// (default: 3).
	MaxAttempts int

	// BaseDelay is multiplied by the attempt number to produce the wait
	// before the next attempt, so delays scale linearly (default: 1s).
	BaseDelay time.Duration
}

// RateLimitConfig contains rate limiting configuration for admission
// beneath the concurrency cap.
type RateLimitConfig struct {
	// Enabled indicates whether rate limiting is enabled.
	Enabled bool

	// Rate is the number of sends per period.
	Rate int

	// Period is the time period for the rate limit.
	Period time.Duration

	// Burst is the maximum number of sends that can be admitted
	// immediately.
	Burst int
}

// Default dispatch limits, applied both by DefaultConfig and as floors
// when a zero-value config reaches the engine.
const (
	defaultConcurrency   = 50
	defaultProgressEvery = 10
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Transport: TransportConfig{
			Timeout:         30 * time.Second,
			MaxConnsPerHost: 50,
			IdleConnTimeout: 90 * time.Second,
		},
		Dispatch: DispatchConfig{
			Concurrency:    defaultConcurrency,
			ProgressEvery:  defaultProgressEvery,
			SnapshotBuffer: 16,
		},
		Retry: DefaultRetryConfig(),
		RateLimit: RateLimitConfig{
			Enabled: false,
			Rate:    100,
			Period:  time.Minute,
			Burst:   10,
		},
		Logger: zerolog.Nop(),
	}
}

// DefaultRetryConfig returns default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Validate checks if the configuration is valid and complete.
func (c *Config) Validate() error {
	if !c.Transport.Type.Valid() {
		return &ValidationError{
			Field:   "transport.type",
			Message: "invalid or unsupported transport type: " + string(c.Transport.Type),
		}
	}

	if c.Transport.Timeout <= 0 {
		return &ValidationError{
			Field:   "transport.timeout",
			Message: "timeout must be greater than 0",
		}
	}

	if c.Dispatch.Concurrency < 1 {
		return &ValidationError{
			Field:   "dispatch.concurrency",
			Message: "concurrency must be at least 1",
		}
	}

	if c.Dispatch.ProgressEvery < 1 {
		return &ValidationError{
			Field:   "dispatch.progress_every",
			Message: "progress interval must be at least 1",
		}
	}

	if c.Retry.Enabled {
		if c.Retry.MaxAttempts < 1 {
			return &ValidationError{
				Field:   "retry.max_attempts",
				Message: "max attempts must be at least 1",
			}
		}
		if c.Retry.BaseDelay < 0 {
			return &ValidationError{
				Field:   "retry.base_delay",
				Message: "base delay must not be negative",
			}
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			return &ValidationError{
				Field:   "rate_limit.rate",
				Message: "rate must be greater than 0",
			}
		}
		if c.RateLimit.Period <= 0 {
			return &ValidationError{
				Field:   "rate_limit.period",
				Message: "period must be greater than 0",
			}
		}
	}

	return nil
}

package campaigner

import (
	"time"

	"github.com/rs/zerolog"
)

// Option is a functional option for configuring the campaigner client.
type Option func(*Config)

// WithTransport sets the delivery transport type and its settings.
func WithTransport(transportType TransportType, settings TransportSettings) Option {
	return func(c *Config) {
		c.Transport.Type = transportType
		c.Transport.Settings = settings
	}
}

// WithFrom sets the default sender address.
func WithFrom(name, email string) Option {
	return func(c *Config) {
		c.From = Address{Name: name, Email: email}
	}
}

// WithTimeout sets the transport operation timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Transport.Timeout = timeout
	}
}

// WithMaxConnsPerHost sets the maximum number of connections per host.
func WithMaxConnsPerHost(maxConns int) Option {
	return func(c *Config) {
		c.Transport.MaxConnsPerHost = maxConns
	}
}

// WithConcurrency caps the number of in-flight sends per dispatch.
func WithConcurrency(n int) Option {
	return func(c *Config) {
		c.Dispatch.Concurrency = n
	}
}

// WithProgressEvery emits a progress snapshot after every nth completion.
func WithProgressEvery(n int) Option {
	return func(c *Config) {
		c.Dispatch.ProgressEvery = n
	}
}

// WithRetry configures retry behavior: the maximum total attempts per
// recipient and the base delay scaled linearly by attempt number.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *Config) {
		c.Retry.Enabled = true
		c.Retry.MaxAttempts = maxAttempts
		c.Retry.BaseDelay = baseDelay
	}
}

// WithoutRetry disables retry functionality.
func WithoutRetry() Option {
	return func(c *Config) {
		c.Retry.Enabled = false
	}
}

// WithRateLimit configures send rate limiting beneath the concurrency
// cap.
func WithRateLimit(rate int, period time.Duration, burst int) Option {
	return func(c *Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.Rate = rate
		c.RateLimit.Period = period
		c.RateLimit.Burst = burst
	}
}

// WithLogger sets the structured logger used by the engine.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithAWSSES creates an AWS SES transport configuration.
func WithAWSSES(region string) Option {
	return WithTransport(TransportAWSSES, TransportSettings{
		"region": region,
	})
}

// WithAWSSESCredentials creates an AWS SES transport configuration with
// explicit credentials.
func WithAWSSESCredentials(region, accessKey, secretKey string) Option {
	return WithTransport(TransportAWSSES, TransportSettings{
		"region":     region,
		"access_key": accessKey,
		"secret_key": secretKey,
	})
}

// WithSendGrid creates a SendGrid transport configuration.
func WithSendGrid(apiKey string) Option {
	return WithTransport(TransportSendGrid, TransportSettings{
		"api_key": apiKey,
	})
}

// WithMailgun creates a Mailgun transport configuration.
func WithMailgun(apiKey, domain string) Option {
	return WithTransport(TransportMailgun, TransportSettings{
		"api_key": apiKey,
		"domain":  domain,
	})
}

// WithMailgunEU creates a Mailgun transport configuration for the EU
// region.
func WithMailgunEU(apiKey, domain string) Option {
	return WithTransport(TransportMailgun, TransportSettings{
		"api_key":  apiKey,
		"domain":   domain,
		"base_url": "https://api.eu.mailgun.net",
	})
}

// WithSMTP creates an SMTP transport configuration.
func WithSMTP(host, port string) Option {
	return WithTransport(TransportSMTP, TransportSettings{
		"host": host,
		"port": port,
	})
}

// WithSMTPAuth creates an SMTP transport configuration with
// authentication.
func WithSMTPAuth(host, port, username, password string) Option {
	return WithTransport(TransportSMTP, TransportSettings{
		"host":     host,
		"port":     port,
		"username": username,
		"password": password,
	})
}

// WithSMTPTLS creates an SMTP transport configuration with TLS enabled.
func WithSMTPTLS(host, port, username, password string, skipVerify bool) Option {
	return WithTransport(TransportSMTP, TransportSettings{
		"host":     host,
		"port":     port,
		"username": username,
		"password": password,
		"tls":      "true",
		"tls_skip_verify": func() string {
			if skipVerify {
				return "true"
			}
			return "false"
		}(),
	})
}

package campaigner

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Dispatch.Concurrency != 50 {
		t.Errorf("default concurrency = %d, want 50", config.Dispatch.Concurrency)
	}
	if config.Dispatch.ProgressEvery != 10 {
		t.Errorf("default progress interval = %d, want 10", config.Dispatch.ProgressEvery)
	}
	if !config.Retry.Enabled || config.Retry.MaxAttempts != 3 || config.Retry.BaseDelay != time.Second {
		t.Errorf("unexpected default retry config: %+v", config.Retry)
	}
	if config.RateLimit.Enabled {
		t.Errorf("rate limiting must default off")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		c := DefaultConfig()
		c.Transport.Type = TransportSMTP
		return c
	}

	if err := func() error { c := valid(); return c.Validate() }(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown transport", func(c *Config) { c.Transport.Type = "carrier-pigeon" }},
		{"zero timeout", func(c *Config) { c.Transport.Timeout = 0 }},
		{"zero concurrency", func(c *Config) { c.Dispatch.Concurrency = 0 }},
		{"zero progress interval", func(c *Config) { c.Dispatch.ProgressEvery = 0 }},
		{"zero retry attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"negative retry delay", func(c *Config) { c.Retry.BaseDelay = -time.Second }},
		{"rate limit without rate", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Rate = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestOptions(t *testing.T) {
	config := DefaultConfig()

	opts := []Option{
		WithConcurrency(8),
		WithProgressEvery(5),
		WithRetry(4, 2*time.Second),
		WithFrom("Ops", "ops@example.com"),
		WithTimeout(10 * time.Second),
	}
	for _, opt := range opts {
		opt(&config)
	}

	if config.Dispatch.Concurrency != 8 || config.Dispatch.ProgressEvery != 5 {
		t.Errorf("dispatch options not applied: %+v", config.Dispatch)
	}
	if config.Retry.MaxAttempts != 4 || config.Retry.BaseDelay != 2*time.Second {
		t.Errorf("retry option not applied: %+v", config.Retry)
	}
	if config.From.Email != "ops@example.com" {
		t.Errorf("from option not applied: %+v", config.From)
	}
	if config.Transport.Timeout != 10*time.Second {
		t.Errorf("timeout option not applied: %+v", config.Transport)
	}

	WithoutRetry()(&config)
	if config.Retry.Enabled {
		t.Errorf("WithoutRetry must disable retries")
	}
}

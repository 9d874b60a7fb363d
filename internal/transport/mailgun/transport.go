package mailgun

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/lattiq/campaigner/internal/core"
)

// Transport implements the core.Transport interface for Mailgun.
type Transport struct {
	client   mailgun.Mailgun
	settings core.TransportSettings
}

// NewTransport creates a new Mailgun transport.
func NewTransport(settings core.TransportSettings) (core.Transport, error) {
	apiKey := settings.Get("api_key")
	if apiKey == "" {
		return nil, core.NewValidationError("api_key", "Mailgun API key is required")
	}

	domain := settings.Get("domain")
	if domain == "" {
		return nil, core.NewValidationError("domain", "Mailgun domain is required")
	}

	client := mailgun.NewMailgun(domain, apiKey)

	// Base URL override for EU customers.
	if baseURL := settings.Get("base_url"); baseURL != "" {
		client.SetAPIBase(baseURL)
	}

	return &Transport{
		client:   client,
		settings: settings,
	}, nil
}

// Send delivers a single message using Mailgun.
func (t *Transport) Send(ctx context.Context, msg *core.Message) (*core.Receipt, error) {
	message := t.client.NewMessage(msg.From.String(), msg.Subject, msg.TextBody, msg.To)

	if msg.HTMLBody != "" {
		message.SetHtml(msg.HTMLBody)
	}

	for key, value := range msg.Headers {
		message.AddHeader(key, value)
	}

	_, id, err := t.client.Send(ctx, message)
	if err != nil {
		return nil, core.NewRetryableTransportError("mailgun", "send_failed", err.Error())
	}

	return &core.Receipt{
		MessageID: id,
		Transport: t.Name(),
		Timestamp: time.Now(),
	}, nil
}

// ValidateSettings validates the Mailgun transport configuration.
func (t *Transport) ValidateSettings() error {
	if t.settings.Get("api_key") == "" {
		return core.NewValidationError("api_key", "Mailgun API key is required")
	}
	if t.settings.Get("domain") == "" {
		return core.NewValidationError("domain", "Mailgun domain is required")
	}
	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "mailgun"
}

// Close releases transport resources.
func (t *Transport) Close() error {
	return nil
}

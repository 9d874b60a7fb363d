package sendgrid

import (
	"context"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/lattiq/campaigner/internal/core"
)

// Transport implements the core.Transport interface for SendGrid.
type Transport struct {
	client   *sendgrid.Client
	settings core.TransportSettings
}

// NewTransport creates a new SendGrid transport.
func NewTransport(settings core.TransportSettings) (core.Transport, error) {
	apiKey := settings.Get("api_key")
	if apiKey == "" {
		return nil, core.NewValidationError("api_key", "SendGrid API key is required")
	}

	return &Transport{
		client:   sendgrid.NewSendClient(apiKey),
		settings: settings,
	}, nil
}

// Send delivers a single message using SendGrid.
func (t *Transport) Send(ctx context.Context, msg *core.Message) (*core.Receipt, error) {
	from := mail.NewEmail(msg.From.Name, msg.From.Email)
	to := mail.NewEmail("", msg.To)

	message := mail.NewSingleEmail(from, msg.Subject, to, msg.TextBody, msg.HTMLBody)

	if len(msg.Headers) > 0 {
		if message.Headers == nil {
			message.Headers = make(map[string]string)
		}
		for key, value := range msg.Headers {
			message.Headers[key] = value
		}
	}

	response, err := t.client.SendWithContext(ctx, message)
	if err != nil {
		return nil, core.NewRetryableTransportError("sendgrid", "send_error", "failed to send email: "+err.Error())
	}

	if response.StatusCode >= 400 {
		terr := core.NewTransportError("sendgrid", "api_error", "SendGrid API error: "+response.Body)
		terr.StatusCode = response.StatusCode
		// 429 and 5xx are worth another attempt; 4xx rejections are not.
		terr.IsRetryable = response.StatusCode == 429 || response.StatusCode >= 500
		terr.IsTemporary = terr.IsRetryable
		return nil, terr
	}

	// SendGrid returns the assigned id in the X-Message-Id header.
	messageID := "unknown"
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		messageID = ids[0]
	}

	return &core.Receipt{
		MessageID: messageID,
		Transport: t.Name(),
		Timestamp: time.Now(),
	}, nil
}

// ValidateSettings validates the transport configuration.
func (t *Transport) ValidateSettings() error {
	if t.settings.Get("api_key") == "" {
		return core.NewValidationError("api_key", "SendGrid API key is required")
	}
	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "sendgrid"
}

// Close releases transport resources.
func (t *Transport) Close() error {
	return nil
}

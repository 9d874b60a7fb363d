package ses

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/lattiq/campaigner/internal/core"
)

// Transport implements the core.Transport interface for AWS SES.
type Transport struct {
	client   *ses.Client
	settings core.TransportSettings
}

// NewTransport creates a new AWS SES transport.
func NewTransport(settings core.TransportSettings) (core.Transport, error) {
	region := settings.Get("region")
	if region == "" {
		return nil, core.NewValidationError("region", "AWS region is required")
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, core.NewTransportError("aws_ses", "config_error", "failed to load AWS config: "+err.Error())
	}

	// Override with explicit credentials if provided
	if accessKey := settings.Get("access_key"); accessKey != "" {
		secretKey := settings.Get("secret_key")
		if secretKey == "" {
			return nil, core.NewValidationError("secret_key", "secret key is required when access key is provided")
		}

		cfg.Credentials = aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				SessionToken:    settings.Get("session_token"),
			}, nil
		})
	}

	return &Transport{
		client:   ses.NewFromConfig(cfg),
		settings: settings,
	}, nil
}

// Send delivers a single message using AWS SES.
func (t *Transport) Send(ctx context.Context, msg *core.Message) (*core.Receipt, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(msg.From.String()),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(msg.Subject),
			},
			Body: &types.Body{},
		},
	}

	if msg.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data: aws.String(msg.TextBody),
		}
	}
	if msg.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data: aws.String(msg.HTMLBody),
		}
	}

	if configSet := t.settings.Get("configuration_set"); configSet != "" {
		input.ConfigurationSetName = aws.String(configSet)
	}

	output, err := t.client.SendEmail(ctx, input)
	if err != nil {
		return nil, core.NewRetryableTransportError("aws_ses", "send_error", "failed to send email: "+err.Error())
	}

	return &core.Receipt{
		MessageID: aws.ToString(output.MessageId),
		Transport: t.Name(),
		Timestamp: time.Now(),
	}, nil
}

// ValidateSettings validates the transport configuration.
func (t *Transport) ValidateSettings() error {
	if t.settings.Get("region") == "" {
		return core.NewValidationError("region", "AWS region is required")
	}
	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "aws_ses"
}

// Close releases transport resources. The SES client holds no
// connections of its own.
func (t *Transport) Close() error {
	return nil
}

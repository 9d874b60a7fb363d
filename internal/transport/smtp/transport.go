package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/lattiq/campaigner/internal/core"
)

// Transport implements the core.Transport interface for generic SMTP.
type Transport struct {
	settings core.TransportSettings
}

// NewTransport creates a new SMTP transport.
func NewTransport(settings core.TransportSettings) (core.Transport, error) {
	host := settings.Get("host")
	if host == "" {
		return nil, core.NewValidationError("host", "SMTP host is required")
	}

	port := settings.Get("port")
	if port == "" {
		return nil, core.NewValidationError("port", "SMTP port is required")
	}
	if _, err := strconv.Atoi(port); err != nil {
		return nil, core.NewValidationError("port", "invalid port number: "+port)
	}

	return &Transport{settings: settings}, nil
}

// Send delivers a single message over SMTP.
func (t *Transport) Send(ctx context.Context, msg *core.Message) (*core.Receipt, error) {
	host := t.settings.Get("host")
	port := t.settings.Get("port")
	username := t.settings.Get("username")
	password := t.settings.Get("password")
	useTLS := t.settings.Get("tls") == "true"
	skipVerify := t.settings.Get("tls_skip_verify") == "true"

	addr := host + ":" + port

	var tlsConfig *tls.Config
	if useTLS {
		tlsConfig = &tls.Config{
			ServerName: host,
			MinVersion: tls.VersionTLS12,
		}
		if skipVerify {
			tlsConfig.InsecureSkipVerify = true
		}
	}

	message := t.buildMessage(msg)

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	var sendErr error
	if useTLS {
		sendErr = t.sendMailTLS(ctx, addr, host, auth, msg.From.Email, []string{msg.To}, message, tlsConfig)
	} else {
		sendErr = smtp.SendMail(addr, auth, msg.From.Email, []string{msg.To}, message)
	}
	if sendErr != nil {
		return nil, core.NewRetryableTransportError("smtp", "send_error", "failed to send email: "+sendErr.Error())
	}

	// SMTP does not hand back an id; synthesize one.
	messageID := fmt.Sprintf("%d@%s", time.Now().UnixNano(), host)

	return &core.Receipt{
		MessageID: messageID,
		Transport: t.Name(),
		Timestamp: time.Now(),
	}, nil
}

// ValidateSettings validates the transport configuration.
func (t *Transport) ValidateSettings() error {
	if t.settings.Get("host") == "" {
		return core.NewValidationError("host", "SMTP host is required")
	}

	port := t.settings.Get("port")
	if port == "" {
		return core.NewValidationError("port", "SMTP port is required")
	}
	if _, err := strconv.Atoi(port); err != nil {
		return core.NewValidationError("port", "invalid port number: "+port)
	}

	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "smtp"
}

// Close releases transport resources.
func (t *Transport) Close() error {
	return nil
}

// buildMessage builds the message in RFC 5322 format with a
// multipart/alternative body carrying both the text and HTML parts.
func (t *Transport) buildMessage(msg *core.Message) []byte {
	var b strings.Builder

	b.WriteString("From: " + msg.From.String() + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	for key, value := range msg.Headers {
		b.WriteString(key + ": " + value + "\r\n")
	}

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())
		b.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n")
		b.WriteString("\r\n")

		// Text part
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.TextBody + "\r\n")
		b.WriteString("\r\n")

		// HTML part
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.HTMLBody + "\r\n")
		b.WriteString("\r\n")

		b.WriteString("--" + boundary + "--\r\n")
	case msg.HTMLBody != "":
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.HTMLBody + "\r\n")
	default:
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.TextBody + "\r\n")
	}

	return []byte(b.String())
}

// sendMailTLS sends mail over a connection upgraded with STARTTLS using
// the supplied TLS configuration. Servers that do not advertise STARTTLS
// are rejected rather than silently downgraded to cleartext.
func (t *Transport) sendMailTLS(ctx context.Context, addr, host string, auth smtp.Auth, from string, to []string, msg []byte, tlsConfig *tls.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fmt.Errorf("server %s does not support STARTTLS", host)
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("auth: %w", err)
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		_ = writer.Close()
		return fmt.Errorf("data write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("data close: %w", err)
	}

	return client.Quit()
}

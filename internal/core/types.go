package core

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"time"
)

// Transport defines the interface for outbound message delivery.
// Implementations handle provider-specific logic for a single send;
// the dispatch engine treats every call as independently retryable.
type Transport interface {
	// Send delivers a single rendered message and returns the
	// provider-assigned receipt.
	Send(ctx context.Context, msg *Message) (*Receipt, error)

	// ValidateSettings validates the transport configuration.
	// Returns an error if the configuration is invalid or incomplete.
	ValidateSettings() error

	// Name returns the transport's name for identification and logging.
	Name() string

	// Close releases any resources held by the transport.
	Close() error
}

// TransportSettings represents configuration settings for transports.
type TransportSettings map[string]string

// Get retrieves a configuration value by key.
func (ts TransportSettings) Get(key string) string {
	return ts[key]
}

// Set sets a configuration value.
func (ts TransportSettings) Set(key, value string) {
	ts[key] = value
}

// Address represents an email address with optional display name.
type Address struct {
	Name  string `json:"name"`  // Display name (optional)
	Email string `json:"email"` // Email address (required)
}

// String returns the formatted email address.
// If Name is provided, returns "Name <email@domain.com>",
// otherwise just "email@domain.com".
func (a Address) String() string {
	if a.Name != "" {
		return mime.QEncoding.Encode("UTF-8", a.Name) + " <" + a.Email + ">"
	}
	return a.Email
}

// Valid checks if the address has a valid email format.
func (a Address) Valid() bool {
	if a.Email == "" {
		return false
	}
	_, err := mail.ParseAddress(a.String())
	return err == nil
}

// Column is one header/value pair of a raw spreadsheet row. Column order
// is the order the cells appeared in the source file; first-email
// discovery during extraction depends on it.
type Column struct {
	Header string
	Value  string
}

// Row is one raw spreadsheet row: an ordered sequence of header/value
// pairs. Values are untyped cell text and may be empty.
type Row []Column

// Recipient is one addressable, personalization-bearing entity in a
// dispatch batch. Fields holds every value keyed by both the original
// header and, where it differs, the normalized alias; Order records key
// insertion order. Exactly one field is canonically named "email" and
// holds a lowercase, syntactically valid address.
//
// A Recipient is built once during extraction and must not be mutated
// afterwards.
type Recipient struct {
	Fields map[string]string
	Order  []string
}

// NewRecipient returns an empty recipient.
func NewRecipient() *Recipient {
	return &Recipient{Fields: make(map[string]string)}
}

// Set stores a field value, recording insertion order on first sight of
// the key.
func (r *Recipient) Set(key, value string) {
	if _, ok := r.Fields[key]; !ok {
		r.Order = append(r.Order, key)
	}
	r.Fields[key] = value
}

// Get returns the value stored under the exact key.
func (r *Recipient) Get(key string) (string, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Email returns the canonical address of the recipient.
func (r *Recipient) Email() string {
	return r.Fields["email"]
}

// RecipientSet is the output of extraction: the deduplicated recipients,
// their count, and the fields offered for personalization.
type RecipientSet struct {
	Recipients      []*Recipient `json:"recipients"`
	TotalCount      int          `json:"totalCount"`
	AvailableFields []string     `json:"availableFields"`
}

// Message is one rendered, single-recipient message handed to a
// transport. HTMLBody and TextBody are both always populated: the
// dispatch engine derives whichever alternative the template did not
// produce.
type Message struct {
	From     Address           `json:"from"`
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	HTMLBody string            `json:"html_body"`
	TextBody string            `json:"text_body"`
	Headers  map[string]string `json:"headers"`
}

// Validate checks that the message can be handed to a transport.
func (m *Message) Validate() error {
	if !m.From.Valid() {
		return &ValidationError{Field: "from", Message: "invalid or missing sender address"}
	}
	if m.To == "" {
		return &ValidationError{Field: "to", Message: "recipient address is required"}
	}
	if m.Subject == "" {
		return &ValidationError{Field: "subject", Message: "subject is required"}
	}
	if m.HTMLBody == "" && m.TextBody == "" {
		return &ValidationError{Field: "body", Message: "either text or HTML body is required"}
	}
	return nil
}

// Receipt is the provider acknowledgment for one accepted message.
type Receipt struct {
	// MessageID is the unique identifier assigned by the provider.
	MessageID string

	// Transport is the name of the transport that sent the message.
	Transport string

	// Timestamp when the message was accepted by the provider.
	Timestamp time.Time
}

// Job is the immutable tuple describing one dispatch: templates,
// recipients and execution limits. Created per send request, never
// mutated.
type Job struct {
	// Subject is the subject template ({{field}} placeholders allowed).
	Subject string

	// Body is the body template.
	Body string

	// From is the sender address applied to every message.
	From Address

	// Recipients is the batch produced by extraction.
	Recipients []*Recipient

	// Concurrency caps in-flight sends. Zero means the configured
	// default.
	Concurrency int

	// RetryCount is the maximum total attempts per recipient. Zero
	// means the configured default.
	RetryCount int
}

// SendResult is the terminal outcome for one recipient.
type SendResult struct {
	// Email is the recipient's canonical address.
	Email string `json:"email"`

	// Success reports whether the transport accepted the message.
	Success bool `json:"success"`

	// MessageID is the provider identifier, set on success.
	MessageID string `json:"messageId,omitempty"`

	// Error describes the last attempt's failure, set on failure.
	Error string `json:"error,omitempty"`

	// Attempts is the number of transport calls made for this
	// recipient.
	Attempts int `json:"attempts"`
}

// Snapshot is a point-in-time read projection over the in-flight
// dispatch counters.
type Snapshot struct {
	Total    int `json:"total"`
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
	Progress int `json:"progress"` // percent of recipients with a terminal outcome
}

// Summary is the final aggregate of one dispatch. Sent+Failed always
// equals Total.
type Summary struct {
	Total   int          `json:"total"`
	Sent    int          `json:"sent"`
	Failed  int          `json:"failed"`
	Results []SendResult `json:"results"`
}

// ValidationError represents a validation error with specific field
// information.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string

	// Message is the validation error message.
	Message string

	// Value is the invalid value (optional).
	Value interface{}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error in %s: %s (value: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Is implements error matching for errors.Is.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// TransportError represents an error from a delivery transport.
type TransportError struct {
	// Transport is the name of the transport that generated the error.
	Transport string

	// Code is the transport-specific error code.
	Code string

	// Message is the error message from the transport.
	Message string

	// StatusCode is the HTTP status code (for HTTP-based transports).
	StatusCode int

	// IsRetryable indicates whether the error can be retried.
	IsRetryable bool

	// IsTemporary indicates whether the error is temporary.
	IsTemporary bool

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport %s error [%s] (status: %d): %s",
			e.Transport, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport %s error [%s]: %s", e.Transport, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is.
func (e *TransportError) Is(target error) bool {
	te, ok := target.(*TransportError)
	if !ok {
		return false
	}
	return e.Transport == te.Transport && e.Code == te.Code
}

// Retryable implements RetryableError for TransportError.
func (e *TransportError) Retryable() bool {
	return e.IsRetryable
}

// Temporary implements TemporaryError for TransportError.
func (e *TransportError) Temporary() bool {
	return e.IsTemporary
}

// RetryableError interface indicates whether an error can be retried.
type RetryableError interface {
	Retryable() bool
}

// TemporaryError interface indicates whether an error is temporary.
type TemporaryError interface {
	Temporary() bool
}

// Constructor functions for errors

// NewTransportError creates a new non-retryable transport error.
func NewTransportError(transport, code, message string) *TransportError {
	return &TransportError{
		Transport:   transport,
		Code:        code,
		Message:     message,
		IsRetryable: false,
		IsTemporary: false,
	}
}

// NewRetryableTransportError creates a new retryable transport error.
func NewRetryableTransportError(transport, code, message string) *TransportError {
	return &TransportError{
		Transport:   transport,
		Code:        code,
		Message:     message,
		IsRetryable: true,
		IsTemporary: false,
	}
}

// NewTemporaryTransportError creates a new temporary transport error.
func NewTemporaryTransportError(transport, code, message string) *TransportError {
	return &TransportError{
		Transport:   transport,
		Code:        code,
		Message:     message,
		IsRetryable: true,
		IsTemporary: true,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewValidationErrorWithValue creates a new validation error with a value.
func NewValidationErrorWithValue(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if re, ok := err.(RetryableError); ok {
		return re.Retryable()
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.IsRetryable
	}

	return false
}

// IsTemporary checks if an error is temporary.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}

	if te, ok := err.(TemporaryError); ok {
		return te.Temporary()
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.IsTemporary
	}

	return false
}

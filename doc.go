// Package campaigner provides a provider-agnostic Go library for bulk
// personalized email dispatch: it turns messy spreadsheet rows into a
// deduplicated recipient batch, renders a per-recipient message from
// {{field}} templates with fuzzy field matching, and delivers the batch
// through a bounded worker pool with per-message retry and live progress
// reporting.
//
// # Basic Usage
//
//	client, err := campaigner.New(campaigner.DefaultConfig(),
//		campaigner.WithSMTPAuth("smtp.example.com", "587", "user", "pass"),
//		campaigner.WithFrom("Newsletter", "noreply@example.com"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	rows, err := campaigner.ParseFile("recipients.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	set, err := campaigner.ExtractRecipients(rows)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	summary, err := client.Dispatch(context.Background(), &campaigner.Job{
//		Subject:    "Hello {{Name}}",
//		Body:       "Your roll number is {{Roll Number}}.",
//		Recipients: set.Recipients,
//	}, func(s campaigner.Snapshot) {
//		fmt.Printf("%d%% (%d sent, %d failed)\n", s.Progress, s.Sent, s.Failed)
//	})
//
// # Supported Transports
//
//   - AWS SES
//   - SendGrid
//   - Mailgun
//   - Generic SMTP
//
// # Features
//
//   - Case- and punctuation-insensitive column normalization
//   - Recipient deduplication with automatic email discovery
//   - Total, failure-free template rendering (unmatched placeholders
//     resolve to empty strings)
//   - Bounded-concurrency dispatch with linearly-scaled retry backoff
//   - Monotonic progress snapshots through a non-blocking sink
//   - Campaign persistence and background execution via Runner
//   - Distributed tracing with OpenTelemetry
//   - Thread-safe operations
package campaigner

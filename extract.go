package campaigner

import (
	"regexp"
	"strings"

	"github.com/lattiq/campaigner/internal/core"
)

// emailPattern is the address shape accepted during discovery: a
// local@domain.tld form with no embedded whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ExtractRecipients converts an ordered sequence of raw spreadsheet rows
// into a deduplicated recipient batch.
//
// For every cell the value is stored under the original header and,
// where it differs, under the normalized alias, so templates can
// reference either form. The first cell value in row order that parses
// as an email address becomes the recipient's canonical, lowercased
// `email` field; rows without one contribute no recipient, and rows
// whose address was already seen (case-insensitive, first occurrence
// wins) are silently dropped.
//
// The available-fields catalog is derived from the first recipient only.
// Returns ErrNoRecipients when the rows yield an empty batch.
func ExtractRecipients(rows []core.Row) (*RecipientSet, error) {
	recipients := make([]*core.Recipient, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		recipient := core.NewRecipient()
		email := ""

		for _, col := range row {
			normalized := NormalizeColumn(col.Header)

			// Keep the original header for exact template matching and
			// add the normalized alias alongside it.
			recipient.Set(col.Header, col.Value)
			if normalized != col.Header {
				recipient.Set(normalized, col.Value)
			}

			if email == "" && col.Value != "" {
				candidate := strings.ToLower(strings.TrimSpace(col.Value))
				if emailPattern.MatchString(candidate) {
					email = candidate
				}
			}
		}

		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}

		recipient.Set("email", email)
		seen[email] = struct{}{}
		recipients = append(recipients, recipient)
	}

	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	return &RecipientSet{
		Recipients:      recipients,
		TotalCount:      len(recipients),
		AvailableFields: availableFields(recipients[0]),
	}, nil
}

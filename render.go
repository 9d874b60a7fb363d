package campaigner

import (
	"regexp"
	"strings"

	"github.com/lattiq/campaigner/internal/core"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{[^}]*\}\}`)
	htmlTagPattern     = regexp.MustCompile(`(?is)<[a-z].*>`)
	stripTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// Render substitutes every {{field}} placeholder in the template with the
// recipient's data. Lookup is layered: exact key, then lowercased key,
// then a punctuation- and case-insensitive comparison of stripped forms
// against every data key. Unmatched placeholders resolve to the empty
// string; Render is pure and total and has no failure mode.
func Render(template string, data *core.Recipient) string {
	if data == nil || len(data.Fields) == 0 {
		return placeholderPattern.ReplaceAllString(template, "")
	}

	// Case-insensitive lookup map holding both the original and the
	// lowercased form of every key. Later keys overwrite earlier ones on
	// lowercase collisions, matching data insertion order.
	lookup := make(map[string]string, 2*len(data.Fields))
	for _, key := range data.Order {
		value := data.Fields[key]
		lookup[key] = value
		lookup[strings.ToLower(key)] = value
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := strings.TrimSpace(match[2 : len(match)-2])

		if v, ok := lookup[key]; ok {
			return v
		}
		if v, ok := lookup[strings.ToLower(key)]; ok {
			return v
		}

		// Stripped-form fallback walks keys in insertion order so the
		// first matching column wins deterministically.
		stripped := stripKey(key)
		for _, k := range data.Order {
			if stripKey(k) == stripped {
				return data.Fields[k]
			}
		}

		return ""
	})
}

// IsHTML classifies a rendered body as HTML by the presence of a tag
// pattern.
func IsHTML(body string) bool {
	return htmlTagPattern.MatchString(body)
}

// StripTags mechanically derives a plain-text alternative from an HTML
// body: tags removed, whitespace collapsed.
func StripTags(html string) string {
	text := stripTagPattern.ReplaceAllString(html, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// WrapPlainText converts a plain-text body into a minimally styled HTML
// equivalent that preserves the original line breaks and spacing.
func WrapPlainText(text string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', 'Roboto', 'Helvetica Neue', Arial, sans-serif; white-space: pre-wrap; max-width: 800px; margin: 0 auto; padding: 20px; background-color: #ffffff; color: #202124; font-size: 14px; line-height: 1.6;">`)
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n</div>")
	return b.String()
}

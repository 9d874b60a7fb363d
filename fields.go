package campaigner

import (
	"sort"
	"strings"

	"github.com/lattiq/campaigner/internal/core"
)

// fieldGroup maps one canonical field name to the header variants that
// resolve to it. Variants are matched both literally (lowercased,
// trimmed) and on their stripped alphanumeric form, so "Roll Number",
// "rollno" and "ROLL-NO" all land on rollNumber.
type fieldGroup struct {
	canonical string
	variants  []string
}

var fieldGroups = []fieldGroup{
	{"email", []string{"email", "emailaddress", "mail", "e-mail", "emailid", "e-mailaddress"}},
	{"name", []string{"name", "fullname", "username", "studentname", "recipientname", "full name"}},
	{"firstName", []string{"firstname", "fname", "givenname", "first name"}},
	{"lastName", []string{"lastname", "lname", "surname", "familyname", "last name"}},
	{"rollNumber", []string{
		"rollnumber", "rollno", "roll", "studentid", "id", "regno", "registrationnumber",
		"roll number", "student id", "registration number", "university roll number",
		"universityrollnumber", "universityrollnumber(onlyformmmmutstudents)",
	}},
	{"phoneNumber", []string{
		"phone", "phonenumber", "mobile", "contact", "mobilenumber", "whatsapp",
		"phone number", "mobile number", "phonenumber(preferablywhatsapp)",
	}},
	{"branch", []string{
		"branch", "department", "dept", "division", "course", "stream",
		"whichbranchofstudyareyoufrom?", "whichbranchofstudyareyoufrom",
	}},
	{"company", []string{"company", "organization", "org", "companyname"}},
	{"designation", []string{"designation", "position", "title", "jobtitle"}},
	{"grade", []string{"grade", "marks", "score", "cgpa", "gpa"}},
}

// stripKey lowercases a header and removes everything that is not a
// letter or digit, yielding the comparison key used throughout
// normalization, catalog dedup and fuzzy placeholder matching.
func stripKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hasSpecialChars reports whether the string contains any character
// outside [A-Za-z0-9].
func hasSpecialChars(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return true
		}
	}
	return false
}

// NormalizeColumn maps an arbitrary spreadsheet header to its canonical
// field name. Matching is case- and punctuation-insensitive; headers
// outside the known vocabulary are returned unchanged so exact template
// names authored against the original file keep working.
//
// NormalizeColumn is pure, total and idempotent.
func NormalizeColumn(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	cleanKey := stripKey(normalized)

	for _, group := range fieldGroups {
		for _, variant := range group.variants {
			if cleanKey == stripKey(variant) || normalized == variant {
				return group.canonical
			}
		}
	}

	// Unrecognized headers keep their original name.
	return header
}

// availableFields builds the personalization field catalog from a single
// sample recipient: original header names (the ones carrying spaces or
// punctuation) are preferred over their normalized aliases, entries are
// deduplicated on their stripped form, and the email field is excluded.
func availableFields(sample *core.Recipient) []string {
	if sample == nil {
		return []string{}
	}

	keys := make([]string, len(sample.Order))
	copy(keys, sample.Order)

	// Original column names sort ahead of camelCase aliases; the sort is
	// stable so ties keep insertion order.
	sort.SliceStable(keys, func(i, j int) bool {
		return hasSpecialChars(keys[i]) && !hasSpecialChars(keys[j])
	})

	seen := make(map[string]struct{}, len(keys))
	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "email" {
			continue
		}
		stripped := stripKey(key)
		if _, ok := seen[stripped]; ok {
			continue
		}
		seen[stripped] = struct{}{}
		fields = append(fields, key)
	}

	return fields
}

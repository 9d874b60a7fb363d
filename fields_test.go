package campaigner

import (
	"testing"

	"github.com/lattiq/campaigner/internal/core"
)

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"email", "email"},
		{"Email", "email"},
		{"E-Mail Address", "email"},
		{"mail", "email"},
		{"Full Name", "name"},
		{"student name", "name"},
		{"First Name", "firstName"},
		{"fname", "firstName"},
		{"surname", "lastName"},
		{"Roll Number", "rollNumber"},
		{"rollno", "rollNumber"},
		{"ROLL-NO", "rollNumber"},
		{"University Roll Number", "rollNumber"},
		{"Phone Number (Preferably WhatsApp)", "phoneNumber"},
		{"mobile", "phoneNumber"},
		{"Which branch of study are you from?", "branch"},
		{"dept", "branch"},
		{"Company Name", "company"},
		{"Job Title", "designation"},
		{"CGPA", "grade"},
		// Unknown headers pass through unchanged.
		{"Favorite Color", "Favorite Color"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeColumn(tt.header); got != tt.want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestNormalizeColumnIdempotent(t *testing.T) {
	headers := []string{"Roll Number", "E-Mail", "Favorite Color", "firstName"}
	for _, h := range headers {
		once := NormalizeColumn(h)
		twice := NormalizeColumn(once)
		if once != twice {
			t.Errorf("NormalizeColumn not idempotent for %q: %q then %q", h, once, twice)
		}
	}
}

func TestAvailableFieldsPrefersOriginalHeaders(t *testing.T) {
	r := core.NewRecipient()
	r.Set("Roll Number", "42")
	r.Set("rollNumber", "42")
	r.Set("Name", "Ann")
	r.Set("name", "Ann")
	r.Set("email", "ann@example.com")

	fields := availableFields(r)

	for _, f := range fields {
		if f == "email" {
			t.Fatalf("availableFields must exclude email, got %v", fields)
		}
	}

	want := map[string]bool{"Roll Number": true, "Name": true}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %v", len(want), fields)
	}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected field %q in %v", f, fields)
		}
	}
}

func TestAvailableFieldsNilSample(t *testing.T) {
	if fields := availableFields(nil); len(fields) != 0 {
		t.Fatalf("expected empty catalog for nil sample, got %v", fields)
	}
}

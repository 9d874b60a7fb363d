package campaigner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFileEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipients.csv")
	content := "Name,E-Mail,Roll Number\nAnn,ann@example.com,42\nBob,bob@example.com,7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rows, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}

	set, err := ExtractRecipients(rows)
	if err != nil {
		t.Fatalf("ExtractRecipients returned error: %v", err)
	}
	if set.TotalCount != 2 {
		t.Fatalf("expected 2 recipients, got %d", set.TotalCount)
	}

	rendered := Render("Hi {{Name}}, roll {{rollnumber}}", set.Recipients[0])
	if rendered != "Hi Ann, roll 42" {
		t.Fatalf("end to end render = %q", rendered)
	}
}

func TestParseReaderUnsupported(t *testing.T) {
	if _, err := ParseReader(strings.NewReader("x"), UploadFormat("pdf")); err == nil {
		t.Fatalf("expected error for unsupported format")
	}

	if _, err := DetectUploadFormat("notes.txt", ""); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
}

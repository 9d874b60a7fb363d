package campaigner

import (
	"io"

	"github.com/lattiq/campaigner/internal/ingest"
)

// UploadFormat identifies a supported upload file format.
type UploadFormat = ingest.Format

// Supported upload formats.
const (
	UploadCSV   = ingest.FormatCSV
	UploadExcel = ingest.FormatExcel
)

// MaxUploadSize bounds accepted upload files.
const MaxUploadSize = ingest.MaxUploadSize

// DetectUploadFormat resolves the parse format from a file name and an
// optional MIME type.
func DetectUploadFormat(filename, mimeType string) (UploadFormat, error) {
	return ingest.DetectFormat(filename, mimeType)
}

// ParseFile reads and parses a CSV or Excel file into ordered raw rows,
// detecting the format from the file extension.
func ParseFile(path string) ([]Row, error) {
	return ingest.ParseFile(path)
}

// ParseReader parses rows from r in the given format, enforcing the
// upload size limit.
func ParseReader(r io.Reader, format UploadFormat) ([]Row, error) {
	return ingest.ParseReader(r, format)
}

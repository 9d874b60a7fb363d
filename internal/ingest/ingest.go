// Package ingest turns uploaded spreadsheet files into ordered raw rows.
//
// CSV and Excel (.xlsx, .xls) inputs are supported. Column order is
// preserved exactly as it appears in the source file; downstream
// extraction depends on it.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lattiq/campaigner/internal/core"
)

// MaxUploadSize bounds accepted upload files at 10 MB.
const MaxUploadSize = 10 << 20

// Format identifies a supported upload file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

var (
	// ErrUnsupportedFormat indicates the file is neither CSV nor Excel.
	ErrUnsupportedFormat = errors.New("campaigner: unsupported file format, only CSV and Excel files are allowed")

	// ErrFileTooLarge indicates the upload exceeds MaxUploadSize.
	ErrFileTooLarge = errors.New("campaigner: file exceeds the 10MB upload limit")

	// ErrInvalidUpload indicates the file could not be parsed in its
	// declared format.
	ErrInvalidUpload = errors.New("campaigner: file could not be parsed")
)

// DetectFormat resolves the parse format from the file name and an
// optional MIME type, mirroring what browsers send for uploads.
func DetectFormat(filename, mimeType string) (Format, error) {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mt, "spreadsheet"), strings.Contains(mt, "excel"):
		return FormatExcel, nil
	case strings.Contains(mt, "csv"):
		return FormatCSV, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return FormatExcel, nil
	case ".csv":
		return FormatCSV, nil
	}

	return "", ErrUnsupportedFormat
}

// ParseFile reads and parses the file at path, detecting the format from
// its extension.
func ParseFile(path string) ([]core.Row, error) {
	format, err := DetectFormat(path, "")
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("campaigner: failed to open upload: %w", err)
	}
	defer f.Close()

	return ParseReader(f, format)
}

// ParseReader parses rows from r in the given format, enforcing the
// upload size limit.
func ParseReader(r io.Reader, format Format) ([]core.Row, error) {
	data, err := readBounded(r)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return parseCSV(bytes.NewReader(data))
	case FormatExcel:
		return parseExcel(bytes.NewReader(data))
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readBounded(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("campaigner: failed to read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

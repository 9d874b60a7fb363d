package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/lattiq/campaigner/internal/core"
)

// parseCSV reads a header row followed by data rows. Ragged rows are
// tolerated: short rows leave trailing cells empty and extra cells are
// dropped against the header.
func parseCSV(r io.Reader) ([]core.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []core.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
		}
		rows = append(rows, makeRow(header, record))
	}
	return rows, nil
}

func makeRow(header, record []string) core.Row {
	row := make(core.Row, 0, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		var value string
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		row = append(row, core.Column{Header: h, Value: value})
	}
	return row
}

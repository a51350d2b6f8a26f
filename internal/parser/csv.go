// Package parser turns uploaded spreadsheet bytes into header-keyed rows.
// Only CSV is decoded here; xlsx files are expected to be converted by the
// uploading client before submission.
package parser

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

// ParseCSV reads a CSV document into raw rows keyed by the header line.
// Headers and cells are whitespace-trimmed. Rows shorter than the header are
// padded with empty values so downstream defaulting can run; rows longer
// than the header have the extra cells dropped.
func ParseCSV(r io.Reader) (headers []string, rows []domain.RawRow, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headerRecord, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.ErrEmptyUpload
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read header row")
	}

	headers = make([]string, len(headerRecord))
	for i, h := range headerRecord {
		headers[i] = strings.TrimSpace(h)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to read data row")
		}

		row := make(domain.RawRow, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return headers, nil, errors.ErrEmptyUpload
	}
	return headers, rows, nil
}

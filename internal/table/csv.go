package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ToCSV renders t as comma separated text. Headers default to the field
// order of the first record. Rows are joined with "\n" and there is no
// trailing newline; an empty table yields "".
func ToCSV(t Table, headers []string) string {
	if len(t) == 0 {
		return ""
	}
	if len(headers) == 0 {
		headers = t.Headers()
	}

	var b strings.Builder
	writeCSVRow(&b, headers)
	for _, row := range t.Rows(headers, Stringify) {
		b.WriteByte('\n')
		writeCSVRow(&b, row)
	}
	return b.String()
}

// EscapeCSV quotes s only when it contains a comma or a double quote.
func EscapeCSV(s string) string {
	if !strings.ContainsAny(s, `,"`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeCSV(cell))
	}
}

// ParseCSV reads text produced by ToCSV back into records. Every value is
// a string; a short row leaves its trailing fields empty.
func ParseCSV(text string) (Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	t := Table{}
	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", len(t)+1, err)
		}
		if len(cells) > len(headers) {
			return nil, fmt.Errorf("csv row %d has %d fields, header has %d", len(t)+1, len(cells), len(headers))
		}
		rec := make(Record, len(headers))
		for i, h := range headers {
			rec[i] = Field{Name: h, Value: ""}
			if i < len(cells) {
				rec[i].Value = cells[i]
			}
		}
		t = append(t, rec)
	}
	return t, nil
}

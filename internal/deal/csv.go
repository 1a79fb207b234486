package deal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// ReadCSV decodes a header row followed by data rows. Blank cells are left
// out of the record so they read as absent.
func ReadCSV(r io.Reader) ([]string, []Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading line %d: %w", line, err)
		}
		record := make(Record, len(header))
		for i, name := range header {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				record[name] = row[i]
			}
		}
		records = append(records, record)
	}
	return header, records, nil
}

// WriteCSV encodes records under header. Missing fields are blank cells.
func WriteCSV(w io.Writer, header []string, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(header))
	for _, record := range records {
		for i, name := range header {
			row[i] = Cell(record[name])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Cell renders one record value as CSV text.
func Cell(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// Columns extends header with the fields of records it lacks: known input
// fields first, in input order, then the rest alphabetically.
func Columns(header []string, records []Record) []string {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
	}
	out := append([]string(nil), header...)

	fresh := make(map[string]bool)
	for _, r := range records {
		for k := range r {
			if !seen[k] {
				fresh[k] = true
			}
		}
	}
	for _, f := range InputFields {
		if fresh[f] {
			out = append(out, f)
			delete(fresh, f)
		}
	}
	rest := make([]string, 0, len(fresh))
	for k := range fresh {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

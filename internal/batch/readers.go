package batch

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/segmentio/parquet-go"
)

// recordReader returns the next record, or io.EOF when the input is exhausted.
// A *ValidationError means the row was unusable but reading may continue.
type recordReader func() (*ProjectRecord, error)

var csvColumns = []string{
	"project_id",
	"regulations",
	"locations",
	"encryption",
	"consent_management",
	"audit_logging",
	"access_controls",
	"data_subject_rights",
	"breach_response",
}

func newCSVReader(r io.Reader) (recordReader, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := index["project_id"]; !ok {
		return nil, header, errors.New("CSV header is missing the project_id column")
	}

	var row int64
	return func() (*ProjectRecord, error) {
		fields, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			row++
			return nil, &ValidationError{Row: row, Field: "row", Message: err.Error()}
		}
		row++

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		rec := &ProjectRecord{
			ProjectID:   get("project_id"),
			Regulations: get("regulations"),
			Locations:   get("locations"),
		}
		flags := []*bool{
			&rec.Encryption,
			&rec.ConsentManagement,
			&rec.AuditLogging,
			&rec.AccessControls,
			&rec.DataSubjectRights,
			&rec.BreachResponse,
		}
		for i, col := range csvColumns[3:] {
			v, err := parseFlag(get(col))
			if err != nil {
				return nil, &ValidationError{Row: row, Field: col, Value: get(col), Message: err.Error()}
			}
			*flags[i] = v
		}
		return rec, nil
	}, header, nil
}

func newJSONReader(r io.Reader) recordReader {
	decoder := json.NewDecoder(r)
	var row int64
	return func() (*ProjectRecord, error) {
		var rec ProjectRecord
		if err := decoder.Decode(&rec); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			row++
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				// the decoder cannot resynchronize after a syntax error
				return nil, err
			}
			return nil, &ValidationError{Row: row, Field: "record", Message: err.Error()}
		}
		row++
		return &rec, nil
	}
}

func newParquetReader(r io.ReaderAt) (recordReader, func() error) {
	reader := parquet.NewReader(r)
	return func() (*ProjectRecord, error) {
		var rec ProjectRecord
		if err := reader.Read(&rec); err != nil {
			return nil, err
		}
		return &rec, nil
	}, reader.Close
}

// parseFlag accepts the boolean spellings found in spreadsheet exports
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "no", "n", "off":
		return false, nil
	case "yes", "y", "on":
		return true, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return v, nil
}

// splitList splits a comma or semicolon separated list, dropping blanks
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Package ingest reads delimited files into resource rows.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/schema"
)

// ErrIngestion matches every IngestionError.
var ErrIngestion = errors.New("ingestion failed")

// IngestionError reports a file that could not be turned into rows.
type IngestionError struct {
	Path string
	Line int
	Err  error
}

func (e *IngestionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ingest %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("ingest %s: %v", e.Path, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

func (e *IngestionError) Is(target error) bool { return target == ErrIngestion }

// ReadFile opens path on fsys and reads it with ReadDelimited.
func ReadFile(fsys afero.Fs, path string, fields *schema.TableSchema) ([]schema.Record, []string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, nil, &IngestionError{Path: path, Err: err}
	}
	defer f.Close()
	return ReadDelimited(f, path, fields)
}

// ReadDelimited reads comma separated rows with a header line. Cells of
// columns known to fields are converted to the declared field type; empty
// cells become null.
func ReadDelimited(r io.Reader, name string, fields *schema.TableSchema) ([]schema.Record, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, &IngestionError{Path: name, Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, nil, wrapCSV(name, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if header[i] == "" {
			return nil, nil, &IngestionError{Path: name, Line: 1, Err: fmt.Errorf("column %d has no name", i+1)}
		}
	}

	rows := []schema.Record{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, wrapCSV(name, err)
		}
		line, _ := reader.FieldPos(0)

		row := make(schema.Record, len(header))
		for i, cell := range record {
			field, _ := fields.Field(header[i])
			v, err := convert(field.Type, cell)
			if err != nil {
				return nil, nil, &IngestionError{Path: name, Line: line, Err: fmt.Errorf("column %q: %w", header[i], err)}
			}
			row[header[i]] = v
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

func wrapCSV(name string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &IngestionError{Path: name, Line: parseErr.Line, Err: parseErr.Err}
	}
	return &IngestionError{Path: name, Err: err}
}

func convert(fieldType, cell string) (any, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	switch fieldType {
	case "number", "integer":
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", cell)
		}
		if fieldType == "integer" && f != float64(int64(f)) {
			return nil, fmt.Errorf("%q is not an integer", cell)
		}
		return f, nil
	case "boolean":
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", cell)
		}
		return b, nil
	default:
		return cell, nil
	}
}

package ingest

import (
	"errors"
	"fmt"
)

// Source identifies where a table was loaded from.
type Source string

const (
	SourceEmbedded Source = "embedded"
	SourceUpload   Source = "upload"
)

// Label returns the human-readable data source line shown above the dashboard.
func (s Source) Label() string {
	switch s {
	case SourceUpload:
		return "Data source: uploaded file"
	default:
		return "Data source: embedded base dataset"
	}
}

// Upload is a user-supplied file.
type Upload struct {
	Name string
	Data []byte
}

// Result is what the loader hands to normalization.
type Result struct {
	Table    *Table
	Source   Source
	Label    string
	Warnings []error
}

// ErrNoDataSource is returned when neither the upload nor the embedded dataset can be parsed.
var ErrNoDataSource = errors.New("no data could be loaded from the uploaded file or the embedded dataset")

var (
	errTooFewColumns = errors.New("header has fewer than two columns")
	errNoRows        = errors.New("no data rows")
)

// UploadParseError reports an upload that could not be read with any supported separator.
// The loader recovers from it by falling back to the embedded dataset.
type UploadParseError struct {
	Name      string
	Comma     error
	Semicolon error
}

func (e *UploadParseError) Error() string {
	return fmt.Sprintf("could not read uploaded CSV %q (comma: %v; semicolon: %v); using embedded base dataset",
		e.Name, e.Comma, e.Semicolon)
}

func (e *UploadParseError) Unwrap() []error {
	return []error{e.Comma, e.Semicolon}
}

// Table is the raw, untyped table produced by the loader.
// The header is kept as parsed; column lookups ignore case and surrounding spaces.
type Table struct {
	names []string
	idx   map[string]int
	rows  [][]string
}

// Columns returns the header names.
func (t *Table) Columns() []string {
	return t.names
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order when coercing a cell to a calendar date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
}

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseCSV reads delimited text into a Table, keeping every cell as a string.
// The header is read as a plain row so duplicate names reach the column index
// unchanged.
func ParseCSV(data []byte, sep rune) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(sep),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parsing CSV with %q separator: %w", sep, df.Err)
	}
	return newTable(df), nil
}

// newTable splits the frame's records into header and rows. The first record
// holds gota's generated names and is skipped.
func newTable(df dataframe.DataFrame) *Table {
	records := df.Records()
	t := &Table{}
	if len(records) < 2 {
		return t
	}
	t.names = records[1]
	t.idx = buildColumnIndex(t.names)
	t.rows = records[2:]
	return t
}

// buildColumnIndex creates a map from normalized column name to position.
// When a name repeats, the first column keeps it.
func buildColumnIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, col := range columns {
		key := normalizeName(col)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Lookup returns the first header among names that exists in the table.
func (t *Table) Lookup(names ...string) (string, bool) {
	for _, n := range names {
		if _, ok := t.idx[normalizeName(n)]; ok {
			return n, true
		}
	}
	return "", false
}

// String safely extracts a trimmed cell.
func (t *Table) String(row int, col string) string {
	i, ok := t.idx[normalizeName(col)]
	if !ok || row < 0 || row >= len(t.rows) || i >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][i])
}

// Decimal safely extracts a decimal; nil when empty or unparseable.
func (t *Table) Decimal(row int, col string) *decimal.Decimal {
	s := t.String(row, col)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// Int64 safely extracts a whole number; nil when empty, unparseable or fractional.
func (t *Table) Int64(row int, col string) *int64 {
	d := t.Decimal(row, col)
	if d == nil || !d.Equal(d.Truncate(0)) {
		return nil
	}
	n := d.IntPart()
	return &n
}

// Date safely extracts a calendar date at UTC midnight; nil when no layout matches.
func (t *Table) Date(row int, col string) *time.Time {
	return ParseDate(t.String(row, col))
}

// ParseDate coerces s into a calendar date, trying several layouts.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			y, m, d := ts.Date()
			date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			return &date
		}
	}
	return nil
}

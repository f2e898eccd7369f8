package ingest

import (
	"fmt"

	"go.uber.org/zap"
)

// separators are tried in order for uploaded files.
var separators = []rune{',', ';'}

// Loader produces a raw table from an upload or, failing that, the embedded dataset.
type Loader struct {
	log      *zap.SugaredLogger
	embedded []byte
}

// NewLoader creates a loader backed by the built-in base dataset.
func NewLoader(log *zap.SugaredLogger) *Loader {
	return &Loader{log: log, embedded: DefaultCSV()}
}

// WithEmbedded replaces the fallback dataset.
func (l *Loader) WithEmbedded(data []byte) *Loader {
	return &Loader{log: l.log, embedded: data}
}

// Load picks exactly one source. An upload that cannot be parsed is reported as a
// warning and the embedded dataset is used instead.
func (l *Loader) Load(up *Upload) (*Result, error) {
	var warnings []error

	if up != nil && len(up.Data) > 0 {
		table, err := l.parseUpload(up)
		if err == nil {
			l.log.Infow("Using uploaded file", "name", up.Name, "rows", table.Len())
			return &Result{
				Table:  table,
				Source: SourceUpload,
				Label:  SourceUpload.Label(),
			}, nil
		}
		l.log.Warnw("Upload unreadable, falling back to embedded dataset", "name", up.Name, "error", err)
		warnings = append(warnings, err)
	}

	table, err := ParseCSV(l.embedded, ',')
	if err != nil {
		l.log.Errorw("Embedded dataset unreadable", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNoDataSource, err)
	}

	return &Result{
		Table:    table,
		Source:   SourceEmbedded,
		Label:    SourceEmbedded.Label(),
		Warnings: warnings,
	}, nil
}

// parseUpload tries each separator in turn. A parse whose header does not split
// into at least two columns counts as a failure for that separator.
func (l *Loader) parseUpload(up *Upload) (*Table, error) {
	errs := make([]error, 0, len(separators))
	for _, sep := range separators {
		table, err := ParseCSV(up.Data, sep)
		if err == nil {
			err = checkShape(table)
		}
		if err == nil {
			return table, nil
		}
		l.log.Debugw("Upload parse attempt failed", "separator", string(sep), "error", err)
		errs = append(errs, err)
	}
	return nil, &UploadParseError{Name: up.Name, Comma: errs[0], Semicolon: errs[1]}
}

func checkShape(t *Table) error {
	if len(t.Columns()) < 2 {
		return errTooFewColumns
	}
	if t.Len() == 0 {
		return errNoRows
	}
	return nil
}

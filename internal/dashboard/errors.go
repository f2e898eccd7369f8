package dashboard

import (
	"errors"
	"fmt"
)

// DateColumn is the header the normalizer expects for the period date.
const DateColumn = "Data"

var (
	// ErrMissingDateColumn is fatal: the table has no date-bearing column.
	ErrMissingDateColumn = errors.New("column 'Data' was not found in the data; check the header row")
	// ErrNoValidDates is fatal: every row was dropped during date coercion.
	ErrNoValidDates = errors.New("no valid dates found in column 'Data' after conversion; check the date format")
)

// UnexpectedProcessingError wraps any other failure during validation or derivation.
// It keeps the stack so it can be shown and reported in full.
type UnexpectedProcessingError struct {
	Stage string
	Cause error
	Stack []byte
}

func (e *UnexpectedProcessingError) Error() string {
	return fmt.Sprintf("unexpected error while processing data (%s): %v", e.Stage, e.Cause)
}

func (e *UnexpectedProcessingError) Unwrap() error {
	return e.Cause
}

// IsFatalData reports whether err is one of the data errors that halt a run
// but are caused by the input rather than by the program.
func IsFatalData(err error) bool {
	return errors.Is(err, ErrMissingDateColumn) || errors.Is(err, ErrNoValidDates)
}

package plotfile

import (
	"fmt"
)

// DuplicateLabelError is returned when a data row reuses a label seen earlier
// in the same data block.
type DuplicateLabelError struct {
	Label string
	Line  int
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("line %d: duplicate label %q", e.Line, e.Label)
}

// InconsistentColumnCountError is returned when a data row carries a
// different number of values than the first row.
type InconsistentColumnCountError struct {
	Label    string
	Expected int
	Actual   int
	Line     int
}

func (e *InconsistentColumnCountError) Error() string {
	return fmt.Sprintf("line %d: label %q has %d values, expected %d", e.Line, e.Label, e.Actual, e.Expected)
}

// MalformedNumberError is returned when a value token or the barwidth
// directive is not a valid number. For the directive, Label is "barwidth".
type MalformedNumberError struct {
	Label string
	Token string
	Line  int
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("line %d: label %q: malformed number %q", e.Line, e.Label, e.Token)
}

// EmptyTableError is returned when the data block has no series to plot.
type EmptyTableError struct{}

func (e *EmptyTableError) Error() string {
	return "data table is empty"
}

package dataset

import "errors"

// Sentinel errors for dataset access. Algorithms return these sentinels
// (possibly wrapped with fmt.Errorf("...: %w", Err)) and callers match
// them via errors.Is.
var (
	// ErrUnknownTable indicates a Dataset lookup referenced a missing table.
	ErrUnknownTable = errors.New("dataset: unknown table")

	// ErrUnknownColumn indicates a lookup referenced a missing column.
	ErrUnknownColumn = errors.New("dataset: unknown column")

	// ErrRowRange indicates a row index outside the table bounds.
	ErrRowRange = errors.New("dataset: row index out of range")

	// ErrEmptyTable indicates a table with no rows where rows are required.
	ErrEmptyTable = errors.New("dataset: table has no rows")
)

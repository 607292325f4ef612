package gridcore

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreDisposed is returned by every mutating operation on a
	// SparseWorksheetData after Dispose has been called.
	ErrStoreDisposed = errors.New("worksheet data store has been disposed")
	// ErrMergeTooSmall is returned when a merge region would cover fewer
	// than two cells.
	ErrMergeTooSmall = errors.New("merge region must cover at least two cells")
	// ErrMergeOverlap is returned when a merge region would overlap a
	// region already present in the registry.
	ErrMergeOverlap = errors.New("merge region overlaps an existing merged region")
	// ErrColumnName is returned when a column name is empty or contains
	// characters outside A-Z.
	ErrColumnName = errors.New("invalid column name")
	// ErrColumnNumber is returned when a column number is outside the
	// range 1 to TotalColumns.
	ErrColumnNumber = errors.New("the column number must be greater than or equal to 1 and less than or equal to 16384")
	// ErrMaxRows is returned when a row number exceeds TotalRows.
	ErrMaxRows = errors.New("row number exceeds maximum limit")
)

// newInvalidCellNameError defines an error by the given cell name.
func newInvalidCellNameError(name string) error {
	return fmt.Errorf("invalid cell name %q", name)
}

// newInvalidRangeNameError defines an error by the given range reference.
func newInvalidRangeNameError(name string) error {
	return fmt.Errorf("invalid range reference %q", name)
}

// newCoordinateError defines an error for a coordinate with a negative row
// or column index.
func newCoordinateError(row, col int) error {
	return fmt.Errorf("invalid coordinate (%d, %d): indices must be non-negative", row, col)
}

// newInvalidRangeError defines an error for range bounds that are negative
// or inverted.
func newInvalidRangeError(startRow, startCol, endRow, endCol int) error {
	return fmt.Errorf("invalid range (%d, %d)-(%d, %d): bounds must be non-negative and start must not exceed end",
		startRow, startCol, endRow, endCol)
}

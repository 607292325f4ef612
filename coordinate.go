package gridcore

import (
	"strconv"
	"strings"
)

// Sheet dimension limits. Coordinates are zero-based, so valid rows are
// 0..TotalRows-1 and valid columns 0..TotalColumns-1.
const (
	TotalRows    = 1048576
	TotalColumns = 16384
)

// Coordinate identifies a single cell by zero-based row and column indices.
type Coordinate struct {
	Row int
	Col int
}

// NewCoordinate creates a Coordinate and rejects negative indices.
func NewCoordinate(row, col int) (Coordinate, error) {
	if row < 0 || col < 0 {
		return Coordinate{}, newCoordinateError(row, col)
	}
	return Coordinate{Row: row, Col: col}, nil
}

// Valid reports whether both indices are non-negative.
func (c Coordinate) Valid() bool {
	return c.Row >= 0 && c.Col >= 0
}

// CellName converts the coordinate to its one-based A1-style notation, for
// example Coordinate{0, 0} becomes "A1".
func (c Coordinate) CellName() string {
	col, _ := ColumnNumberToName(c.Col + 1)
	return col + strconv.Itoa(c.Row+1)
}

// ParseCellName converts an A1-style cell reference to a zero-based
// Coordinate. Column letters are case-insensitive and the row number must be
// at least 1.
func ParseCellName(name string) (Coordinate, error) {
	i := 0
	for i < len(name) && isColumnLetter(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return Coordinate{}, newInvalidCellNameError(name)
	}
	col, err := ColumnNameToNumber(name[:i])
	if err != nil {
		return Coordinate{}, newInvalidCellNameError(name)
	}
	row, err := strconv.Atoi(name[i:])
	if err != nil || row < 1 {
		return Coordinate{}, newInvalidCellNameError(name)
	}
	if row > TotalRows {
		return Coordinate{}, ErrMaxRows
	}
	return Coordinate{Row: row - 1, Col: col - 1}, nil
}

func isColumnLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// ColumnNameToNumber provides a function to convert an Excel sheet column
// name (case-insensitive) to an int. The column name is a base-26 encoding
// with no zero digit, so "A" is 1, "Z" is 26 and "AA" is 27.
func ColumnNameToNumber(name string) (int, error) {
	if name == "" {
		return -1, ErrColumnName
	}
	col := 0
	for i := 0; i < len(name); i++ {
		b := name[i]
		switch {
		case b >= 'A' && b <= 'Z':
			col = col*26 + int(b-'A') + 1
		case b >= 'a' && b <= 'z':
			col = col*26 + int(b-'a') + 1
		default:
			return -1, ErrColumnName
		}
	}
	if col > TotalColumns {
		return -1, ErrColumnNumber
	}
	return col, nil
}

// ColumnNumberToName provides a function to convert an integer to an Excel
// sheet column name. The column number is one-based: 1 is "A".
func ColumnNumberToName(num int) (string, error) {
	if num < 1 || num > TotalColumns {
		return "", ErrColumnNumber
	}
	var name []byte
	for num > 0 {
		num--
		name = append([]byte{byte('A' + num%26)}, name...)
		num /= 26
	}
	return string(name), nil
}

// Range is an inclusive rectangle of coordinates, normalized so that the
// start does not exceed the end on either axis.
type Range struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// NewRange creates a Range and rejects negative or inverted bounds.
func NewRange(startRow, startCol, endRow, endCol int) (Range, error) {
	if startRow < 0 || startCol < 0 || startRow > endRow || startCol > endCol {
		return Range{}, newInvalidRangeError(startRow, startCol, endRow, endCol)
	}
	return Range{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol}, nil
}

// RangeBetween creates the normalized Range spanned by two corner
// coordinates in any order.
func RangeBetween(a, b Coordinate) Range {
	r := Range{StartRow: a.Row, StartCol: a.Col, EndRow: b.Row, EndCol: b.Col}
	if r.StartRow > r.EndRow {
		r.StartRow, r.EndRow = r.EndRow, r.StartRow
	}
	if r.StartCol > r.EndCol {
		r.StartCol, r.EndCol = r.EndCol, r.StartCol
	}
	return r
}

// RangeOf creates the single-cell Range covering c.
func RangeOf(c Coordinate) Range {
	return Range{StartRow: c.Row, StartCol: c.Col, EndRow: c.Row, EndCol: c.Col}
}

// ParseRangeName converts an A1-style reference such as "A1:C3" (or a single
// cell like "B2") to a Range. The two corners may be given in any order.
func ParseRangeName(name string) (Range, error) {
	first, second, found := strings.Cut(name, ":")
	if !found {
		second = first
	}
	a, err := ParseCellName(first)
	if err != nil {
		return Range{}, newInvalidRangeNameError(name)
	}
	b, err := ParseCellName(second)
	if err != nil {
		return Range{}, newInvalidRangeNameError(name)
	}
	return RangeBetween(a, b), nil
}

// Name returns the A1-style reference of the range, using the single cell
// form when the range covers exactly one cell.
func (r Range) Name() string {
	if r.CellCount() == 1 {
		return r.TopLeft().CellName()
	}
	return r.TopLeft().CellName() + ":" + r.BottomRight().CellName()
}

// TopLeft returns the smallest coordinate covered by the range.
func (r Range) TopLeft() Coordinate {
	return Coordinate{Row: r.StartRow, Col: r.StartCol}
}

// BottomRight returns the largest coordinate covered by the range.
func (r Range) BottomRight() Coordinate {
	return Coordinate{Row: r.EndRow, Col: r.EndCol}
}

// Rows returns the number of rows covered by the range.
func (r Range) Rows() int { return r.EndRow - r.StartRow + 1 }

// Cols returns the number of columns covered by the range.
func (r Range) Cols() int { return r.EndCol - r.StartCol + 1 }

// CellCount returns the total number of cells covered by the range.
func (r Range) CellCount() int { return r.Rows() * r.Cols() }

// Contains reports whether the coordinate lies inside the range.
func (r Range) Contains(c Coordinate) bool {
	return c.Row >= r.StartRow && c.Row <= r.EndRow &&
		c.Col >= r.StartCol && c.Col <= r.EndCol
}

// ContainsRange reports whether other lies entirely inside the range.
func (r Range) ContainsRange(other Range) bool {
	return other.StartRow >= r.StartRow && other.EndRow <= r.EndRow &&
		other.StartCol >= r.StartCol && other.EndCol <= r.EndCol
}

// Intersects reports whether the two ranges share at least one cell.
func (r Range) Intersects(other Range) bool {
	return r.StartRow <= other.EndRow && other.StartRow <= r.EndRow &&
		r.StartCol <= other.EndCol && other.StartCol <= r.EndCol
}

// Intersect returns the overlap of the two ranges. The second return value
// is false when the ranges do not intersect.
func (r Range) Intersect(other Range) (Range, bool) {
	if !r.Intersects(other) {
		return Range{}, false
	}
	return Range{
		StartRow: maxInt(r.StartRow, other.StartRow),
		StartCol: maxInt(r.StartCol, other.StartCol),
		EndRow:   minInt(r.EndRow, other.EndRow),
		EndCol:   minInt(r.EndCol, other.EndCol),
	}, true
}

// Union returns the smallest range covering both ranges.
func (r Range) Union(other Range) Range {
	return Range{
		StartRow: minInt(r.StartRow, other.StartRow),
		StartCol: minInt(r.StartCol, other.StartCol),
		EndRow:   maxInt(r.EndRow, other.EndRow),
		EndCol:   maxInt(r.EndCol, other.EndCol),
	}
}

// Expand returns the smallest range covering both the range and c.
func (r Range) Expand(c Coordinate) Range {
	return r.Union(RangeOf(c))
}

// Coordinates returns every covered coordinate in row-major order.
func (r Range) Coordinates() []Coordinate {
	coords := make([]Coordinate, 0, r.CellCount())
	for row := r.StartRow; row <= r.EndRow; row++ {
		for col := r.StartCol; col <= r.EndCol; col++ {
			coords = append(coords, Coordinate{Row: row, Col: col})
		}
	}
	return coords
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

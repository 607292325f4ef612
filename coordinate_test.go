package gridcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellNameRoundTrip(t *testing.T) {
	// Every coordinate in a generous sweep must survive the notation
	// round trip exactly.
	for row := 0; row < 200; row += 7 {
		for col := 0; col < 800; col += 13 {
			c := Coordinate{Row: row, Col: col}
			parsed, err := ParseCellName(c.CellName())
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		}
	}
}

func TestCellNameKnownValues(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinate
	}{
		{"A1", Coordinate{0, 0}},
		{"B2", Coordinate{1, 1}},
		{"Z1", Coordinate{0, 25}},
		{"AA1", Coordinate{0, 26}},
		{"AZ10", Coordinate{9, 51}},
		{"BA1", Coordinate{0, 52}},
		{"ZZ1", Coordinate{0, 701}},
		{"AAA1", Coordinate{0, 702}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.c.CellName())
			parsed, err := ParseCellName(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.c, parsed)
		})
	}
}

func TestParseCellNameLowercase(t *testing.T) {
	c, err := ParseCellName("aa10")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Row: 9, Col: 26}, c)
}

func TestParseCellNameInvalid(t *testing.T) {
	for _, name := range []string{"", "A", "1", "A0", "1A", "A-1", "A1B"} {
		_, err := ParseCellName(name)
		assert.Error(t, err, "expected %q to be rejected", name)
	}
}

func TestNewCoordinateRejectsNegative(t *testing.T) {
	_, err := NewCoordinate(-1, 0)
	assert.Error(t, err)
	_, err = NewCoordinate(0, -1)
	assert.Error(t, err)
}

func TestColumnNameNumberConversions(t *testing.T) {
	n, err := ColumnNameToNumber("XFD")
	require.NoError(t, err)
	assert.Equal(t, TotalColumns, n)

	name, err := ColumnNumberToName(TotalColumns)
	require.NoError(t, err)
	assert.Equal(t, "XFD", name)

	_, err = ColumnNumberToName(0)
	assert.Error(t, err)
	_, err = ColumnNameToNumber("XFE")
	assert.Error(t, err)
}

func TestNewRangeRejectsInverted(t *testing.T) {
	_, err := NewRange(3, 0, 1, 5)
	assert.Error(t, err)
	_, err = NewRange(-1, 0, 2, 2)
	assert.Error(t, err)
}

func TestRangeBetweenNormalizes(t *testing.T) {
	r := RangeBetween(Coordinate{5, 7}, Coordinate{2, 3})
	assert.Equal(t, Range{StartRow: 2, StartCol: 3, EndRow: 5, EndCol: 7}, r)
}

func TestRangeAlgebra(t *testing.T) {
	a := Range{StartRow: 0, StartCol: 0, EndRow: 4, EndCol: 4}
	b := Range{StartRow: 2, StartCol: 2, EndRow: 6, EndCol: 6}
	c := Range{StartRow: 10, StartCol: 10, EndRow: 12, EndCol: 12}

	// Union and intersection are commutative.
	assert.Equal(t, a.Union(b), b.Union(a))
	ab, ok1 := a.Intersect(b)
	ba, ok2 := b.Intersect(a)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, ab, ba)
	assert.Equal(t, Range{StartRow: 2, StartCol: 2, EndRow: 4, EndCol: 4}, ab)

	// Empty intersection agrees with Intersects.
	_, ok := a.Intersect(c)
	assert.False(t, ok)
	assert.False(t, a.Intersects(c))

	// Expand always yields a range containing both inputs.
	p := Coordinate{Row: 20, Col: 1}
	e := a.Expand(p)
	assert.True(t, e.Contains(p))
	assert.True(t, e.ContainsRange(a))
}

func TestRangeCoordinatesRowMajor(t *testing.T) {
	r := Range{StartRow: 1, StartCol: 1, EndRow: 2, EndCol: 2}
	assert.Equal(t, []Coordinate{{1, 1}, {1, 2}, {2, 1}, {2, 2}}, r.Coordinates())
}

func TestParseRangeName(t *testing.T) {
	r, err := ParseRangeName("B2:D4")
	require.NoError(t, err)
	assert.Equal(t, Range{StartRow: 1, StartCol: 1, EndRow: 3, EndCol: 3}, r)
	assert.Equal(t, "B2:D4", r.Name())

	// Corners in reverse order normalize.
	rev, err := ParseRangeName("D4:B2")
	require.NoError(t, err)
	assert.Equal(t, r, rev)

	single, err := ParseRangeName("C3")
	require.NoError(t, err)
	assert.Equal(t, "C3", single.Name())
	assert.Equal(t, 1, single.CellCount())

	_, err = ParseRangeName("nope")
	assert.Error(t, err)
}

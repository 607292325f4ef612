package gridcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberCells(nums ...float64) []Cell {
	cells := make([]Cell, len(nums))
	for i, n := range nums {
		cells[i] = Cell{Value: NumberValue(n)}
	}
	return cells
}

func textCells(texts ...string) []Cell {
	cells := make([]Cell, len(texts))
	for i, s := range texts {
		cells[i] = Cell{Value: TextValue(s)}
	}
	return cells
}

func TestDetectFillPatternConstant(t *testing.T) {
	p := DetectFillPattern(nil)
	assert.Equal(t, FillConstant, p.Strategy)
	assert.True(t, p.CellAt(3).IsEmpty())

	p = DetectFillPattern(textCells("x"))
	assert.Equal(t, FillConstant, p.Strategy)
	v, _ := p.CellAt(7).Value.Text()
	assert.Equal(t, "x", v)

	// Identical cells collapse to a constant, not a cycle.
	p = DetectFillPattern(textCells("x", "x", "x"))
	assert.Equal(t, FillConstant, p.Strategy)
}

func TestDetectFillPatternLinearNumeric(t *testing.T) {
	p := DetectFillPattern(numberCells(1, 2, 3))
	require.Equal(t, FillLinearNumeric, p.Strategy)
	for i, want := range []float64{4, 5, 6} {
		n, ok := p.CellAt(i).Value.Number()
		require.True(t, ok)
		assert.Equal(t, want, n)
	}

	// A decreasing run extrapolates downward.
	p = DetectFillPattern(numberCells(10, 7, 4))
	require.Equal(t, FillLinearNumeric, p.Strategy)
	n, _ := p.CellAt(0).Value.Number()
	assert.Equal(t, 1.0, n)

	// An uneven step is not linear.
	p = DetectFillPattern(numberCells(1, 2, 4))
	assert.Equal(t, FillRepeatingCycle, p.Strategy)
}

func TestDetectFillPatternDateSequence(t *testing.T) {
	day := func(d int) Cell {
		return Cell{Value: DateValue(time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC))}
	}
	p := DetectFillPattern([]Cell{day(1), day(8), day(15)})
	require.Equal(t, FillDateSequence, p.Strategy)
	next, ok := p.CellAt(0).Value.Date()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 22, 0, 0, 0, 0, time.UTC), next)

	// A time-of-day component breaks the whole-day sequence.
	withClock := Cell{Value: DateValue(time.Date(2024, time.January, 8, 12, 0, 0, 0, time.UTC))}
	p = DetectFillPattern([]Cell{day(1), withClock})
	assert.Equal(t, FillRepeatingCycle, p.Strategy)
}

func TestDetectFillPatternNumericSuffix(t *testing.T) {
	p := DetectFillPattern(textCells("Item1", "Item2", "Item3"))
	require.Equal(t, FillNumericSuffix, p.Strategy)
	for i, want := range []string{"Item4", "Item5", "Item6"} {
		got, _ := p.CellAt(i).Value.Text()
		assert.Equal(t, want, got)
	}

	// Zero padding is preserved.
	p = DetectFillPattern(textCells("A08", "A09"))
	require.Equal(t, FillNumericSuffix, p.Strategy)
	got, _ := p.CellAt(0).Value.Text()
	assert.Equal(t, "A10", got)

	// Differing prefixes are not a suffix run.
	p = DetectFillPattern(textCells("A1", "B2"))
	assert.Equal(t, FillRepeatingCycle, p.Strategy)
}

func TestDetectFillPatternCycle(t *testing.T) {
	p := DetectFillPattern(textCells("a", "b", "c"))
	require.Equal(t, FillRepeatingCycle, p.Strategy)
	for i, want := range []string{"a", "b", "c", "a", "b"} {
		got, _ := p.CellAt(i).Value.Text()
		assert.Equal(t, want, got)
	}
}

func TestCloneCellIsolation(t *testing.T) {
	format := FormatCurrency
	src := Cell{
		Value:    NumberValue(1),
		Format:   &format,
		RichText: []RichTextRun{{Text: "a"}},
	}
	clone := cloneCell(src)
	clone.Format.Code = "changed"
	clone.RichText[0].Text = "changed"
	assert.Equal(t, FormatCurrency.Code, src.Format.Code)
	assert.Equal(t, "a", src.RichText[0].Text)
}

func TestFillRangeCopiesTemplate(t *testing.T) {
	d := NewSparseWorksheetData()
	a1 := mustCoord(t, "A1")
	require.NoError(t, d.SetValue(a1, NumberValue(9)))
	require.NoError(t, d.SetStyle(a1, "bold"))
	require.NoError(t, d.SetFormat(a1, &FormatNumber))

	var events []ChangeEvent
	d.Feed().Subscribe(func(ev ChangeEvent) { events = append(events, ev) })

	target := mustRange(t, "B1:C2")
	require.NoError(t, d.FillRange(&a1, target, nil))
	for _, c := range target.Coordinates() {
		assert.True(t, NumberValue(9).Equal(d.Value(c)), "cell %s", c.CellName())
		assert.Equal(t, "bold", d.Style(c))
		require.NotNil(t, d.Format(c))
	}
	require.Len(t, events, 1)
	assert.Equal(t, ChangeRange, events[0].Kind)
	assert.Equal(t, target, events[0].Range)
}

func TestFillRangeGenerator(t *testing.T) {
	d := NewSparseWorksheetData()
	target := mustRange(t, "A1:A3")
	err := d.FillRange(nil, target, func(c Coordinate) *Cell {
		if c.Row == 1 {
			return nil // skipped
		}
		return &Cell{Value: NumberValue(float64(c.Row))}
	})
	require.NoError(t, err)
	assert.True(t, NumberValue(0).Equal(d.Value(Coordinate{Row: 0, Col: 0})))
	assert.Nil(t, d.Value(Coordinate{Row: 1, Col: 0}))
	assert.True(t, NumberValue(2).Equal(d.Value(Coordinate{Row: 2, Col: 0})))

	// No source and no generator is a no-op.
	require.NoError(t, d.FillRange(nil, target, nil))
}

func TestSmartFillDown(t *testing.T) {
	d := NewSparseWorksheetData()
	for row, n := range []float64{1, 2, 3} {
		require.NoError(t, d.SetValue(Coordinate{Row: row, Col: 0}, NumberValue(n)))
	}
	result, err := SmartFill(d, nil, mustRange(t, "A1:A3"), mustRange(t, "A4:A6"), nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, mustRange(t, "A1:A6"), *result)
	for row, want := range []float64{1, 2, 3, 4, 5, 6} {
		n, ok := d.Value(Coordinate{Row: row, Col: 0}).Number()
		require.True(t, ok)
		assert.Equal(t, want, n)
	}
}

func TestSmartFillUp(t *testing.T) {
	d := NewSparseWorksheetData()
	for i, n := range []float64{1, 2, 3} {
		require.NoError(t, d.SetValue(Coordinate{Row: 3 + i, Col: 0}, NumberValue(n)))
	}
	// Extending [1,2,3] upward continues the sequence backward.
	_, err := SmartFill(d, nil, mustRange(t, "A4:A6"), mustRange(t, "A1:A3"), nil)
	require.NoError(t, err)
	for row, want := range []float64{-2, -1, 0} {
		n, ok := d.Value(Coordinate{Row: row, Col: 0}).Number()
		require.True(t, ok)
		assert.Equal(t, want, n)
	}
}

func TestSmartFillRightCycles(t *testing.T) {
	d := NewSparseWorksheetData()
	for col, s := range []string{"a", "b"} {
		require.NoError(t, d.SetValue(Coordinate{Row: 0, Col: col}, TextValue(s)))
	}
	_, err := SmartFill(d, nil, mustRange(t, "A1:B1"), mustRange(t, "C1:E1"), nil)
	require.NoError(t, err)
	for col, want := range []string{"a", "b", "a", "b", "a"} {
		got, ok := d.Value(Coordinate{Row: 0, Col: col}).Text()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestSmartFillPerLineDetection(t *testing.T) {
	d := NewSparseWorksheetData()
	// Column A is linear, column B is a text run; each line extrapolates
	// independently.
	require.NoError(t, d.SetValue(Coordinate{Row: 0, Col: 0}, NumberValue(10)))
	require.NoError(t, d.SetValue(Coordinate{Row: 1, Col: 0}, NumberValue(20)))
	require.NoError(t, d.SetValue(Coordinate{Row: 0, Col: 1}, TextValue("Q1")))
	require.NoError(t, d.SetValue(Coordinate{Row: 1, Col: 1}, TextValue("Q2")))

	_, err := SmartFill(d, nil, mustRange(t, "A1:B2"), mustRange(t, "A3:B4"), nil)
	require.NoError(t, err)

	n, _ := d.Value(Coordinate{Row: 2, Col: 0}).Number()
	assert.Equal(t, 30.0, n)
	n, _ = d.Value(Coordinate{Row: 3, Col: 0}).Number()
	assert.Equal(t, 40.0, n)
	s, _ := d.Value(Coordinate{Row: 2, Col: 1}).Text()
	assert.Equal(t, "Q3", s)
	s, _ = d.Value(Coordinate{Row: 3, Col: 1}).Text()
	assert.Equal(t, "Q4", s)
}

func TestSmartFillOverlapIsNoOp(t *testing.T) {
	d := NewSparseWorksheetData()
	require.NoError(t, d.SetValue(mustCoord(t, "A1"), NumberValue(1)))

	result, err := SmartFill(d, nil, mustRange(t, "A1:A3"), mustRange(t, "A2:A5"), nil)
	require.NoError(t, err)
	assert.Nil(t, result)

	// A diagonal target has no derivable direction either, and nothing
	// lands on the sheet, neither under the source column nor in the
	// target itself.
	result, err = SmartFill(d, nil, mustRange(t, "A1:A2"), mustRange(t, "B3:B4"), nil)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Nil(t, d.Value(mustCoord(t, "A3")))
	assert.Nil(t, d.Value(mustCoord(t, "B3")))
	assert.Nil(t, d.Value(mustCoord(t, "B4")))
}

func TestSmartFillDisposedStore(t *testing.T) {
	d := NewSparseWorksheetData()
	d.Dispose()
	_, err := SmartFill(d, nil, mustRange(t, "A1:A2"), mustRange(t, "A3:A4"), nil)
	assert.ErrorIs(t, err, ErrStoreDisposed)
}

func TestSmartFillShiftsFormulaReferences(t *testing.T) {
	d := NewSparseWorksheetData()
	a2 := mustCoord(t, "A2")
	require.NoError(t, d.SetValue(a2, FormulaValue("A1+B1")))

	_, err := SmartFill(d, nil, RangeOf(a2), mustRange(t, "A3:A4"), nil)
	require.NoError(t, err)

	expr, _ := d.Value(mustCoord(t, "A3")).Text()
	assert.Equal(t, "A2+B2", expr)
	expr, _ = d.Value(mustCoord(t, "A4")).Text()
	assert.Equal(t, "A3+B3", expr)
}

func TestShiftFormulaRefs(t *testing.T) {
	cases := []struct {
		expr       string
		dRow, dCol int
		want       string
	}{
		{"A1+B1", 1, 0, "A2+B2"},
		{"$A$1+B1", 1, 1, "$A$1+C2"},
		{"SUM(A1:A3)", 2, 0, "SUM(A3:A5)"},
		{"Sheet2!A1+B1", 1, 0, "Sheet2!A1+B2"},
		{`IF(A1>0,"yes","no")`, 1, 0, `IF(A2>0,"yes","no")`},
		{"A1*2", 0, 0, "A1*2"},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			assert.Equal(t, tc.want, shiftFormulaRefs(tc.expr, tc.dRow, tc.dCol))
		})
	}
}

func TestShiftCellRefOffSheet(t *testing.T) {
	assert.Equal(t, "#REF!", shiftCellRef("A1", -1, 0))
	assert.Equal(t, "#REF!", shiftCellRef("A1", 0, -1))
	assert.Equal(t, "B2", shiftCellRef("A1", 1, 1))
	// Absolute axes never move.
	assert.Equal(t, "$A1", shiftCellRef("$A1", 0, 5))
}

func TestSmartFillReplicatesMerges(t *testing.T) {
	d := NewSparseWorksheetData()
	merges := NewMergedCellRegistry(d.Feed())

	source := mustRange(t, "A1:B2")
	_, err := merges.Merge(source)
	require.NoError(t, err)
	require.NoError(t, d.SetValue(mustCoord(t, "A1"), TextValue("head")))

	// A 3-row target grows to 4 rows so the 2-row merge tiles evenly.
	result, err := SmartFill(d, merges, source, mustRange(t, "A3:B5"), nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, mustRange(t, "A1:B6"), *result)

	regions := merges.Regions()
	require.Len(t, regions, 3)
	assert.Equal(t, mustRange(t, "A1:B2"), regions[0].Range)
	assert.Equal(t, mustRange(t, "A3:B4"), regions[1].Range)
	assert.Equal(t, mustRange(t, "A5:B6"), regions[2].Range)

	// Anchors carry the value, every other covered cell is cleared.
	for _, anchor := range []string{"A3", "A5"} {
		got, ok := d.Value(mustCoord(t, anchor)).Text()
		require.True(t, ok, "anchor %s", anchor)
		assert.Equal(t, "head", got)
	}
	for _, covered := range []string{"B3", "A4", "B4", "B5", "A6", "B6"} {
		assert.Nil(t, d.Value(mustCoord(t, covered)), "cell %s", covered)
	}
}

func TestSmartFillDropsClippedMergeTile(t *testing.T) {
	d := NewSparseWorksheetData()
	merges := NewMergedCellRegistry(nil)

	// A 2-row merge near the bottom of the sheet: the target cannot grow
	// past the last row, so the second tile would be cut off and is
	// dropped instead.
	s := TotalRows - 5
	source := Range{StartRow: s, StartCol: 0, EndRow: s + 1, EndCol: 1}
	_, err := merges.Merge(source)
	require.NoError(t, err)

	target := Range{StartRow: s + 2, StartCol: 0, EndRow: TotalRows - 1, EndCol: 1}
	result, err := SmartFill(d, merges, source, target, nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Equal(t, 2, merges.Count())
	_, ok := merges.RegionAt(Coordinate{Row: s + 2, Col: 0})
	assert.True(t, ok)
	_, ok = merges.RegionAt(Coordinate{Row: s + 4, Col: 0})
	assert.False(t, ok)
}

func TestSmartFillClearsStaleTargetMerges(t *testing.T) {
	d := NewSparseWorksheetData()
	merges := NewMergedCellRegistry(nil)

	source := mustRange(t, "A1:B2")
	_, err := merges.Merge(source)
	require.NoError(t, err)
	// A pre-existing merge inside the target must not survive replication.
	stale, err := merges.Merge(mustRange(t, "A4:B4"))
	require.NoError(t, err)

	_, err = SmartFill(d, merges, source, mustRange(t, "A3:B4"), nil)
	require.NoError(t, err)

	_, ok := merges.RegionAt(stale.Anchor())
	require.True(t, ok)
	got, _ := merges.RegionAt(stale.Anchor())
	assert.Equal(t, mustRange(t, "A3:B4"), got.Range)
	assert.Equal(t, 2, merges.Count())
}

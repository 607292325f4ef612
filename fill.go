package gridcore

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tiendc/go-deepcopy"
	"github.com/xuri/efp"
)

// FillStrategy names the detection rule that produced a FillPattern.
type FillStrategy int

// Fill strategies, in detection priority order.
const (
	FillConstant FillStrategy = iota
	FillLinearNumeric
	FillDateSequence
	FillNumericSuffix
	FillRepeatingCycle
)

// FillPattern extrapolates a source run of cells: CellAt(i) is the cell for
// the i-th position beyond the run, where index 0 is nearest the gap.
type FillPattern struct {
	Strategy FillStrategy
	cellAt   func(index int) Cell
	// srcIndex maps an extrapolation index to the source cell it derives
	// from; negative when the value is synthesized rather than copied.
	srcIndex func(index int) int
}

// CellAt returns the extrapolated cell for a zero-based index.
func (p *FillPattern) CellAt(index int) Cell { return p.cellAt(index) }

// linearStepTolerance bounds the drift allowed between consecutive numeric
// deltas before a run stops counting as linear.
const linearStepTolerance = 1e-10

var numericSuffixPattern = regexp.MustCompile(`^(.*?)(\d+)$`)

// DetectFillPattern infers the generating pattern of a source run. The
// strategies are tried in priority order and the first match wins; a run
// that matches nothing replays itself as a repeating cycle.
func DetectFillPattern(cells []Cell) *FillPattern {
	n := len(cells)
	if n == 0 {
		return &FillPattern{
			Strategy: FillConstant,
			cellAt:   func(int) Cell { return Cell{} },
			srcIndex: func(int) int { return -1 },
		}
	}

	identical := true
	for i := 1; i < n; i++ {
		if !equalCells(cells[0], cells[i]) {
			identical = false
			break
		}
	}
	if n == 1 || identical {
		return &FillPattern{
			Strategy: FillConstant,
			cellAt:   func(int) Cell { return cloneCell(cells[0]) },
			srcIndex: func(int) int { return 0 },
		}
	}

	if p := detectLinearNumeric(cells); p != nil {
		return p
	}
	if p := detectDateSequence(cells); p != nil {
		return p
	}
	if p := detectNumericSuffix(cells); p != nil {
		return p
	}

	return &FillPattern{
		Strategy: FillRepeatingCycle,
		cellAt:   func(i int) Cell { return cloneCell(cells[i%n]) },
		srcIndex: func(i int) int { return i % n },
	}
}

func detectLinearNumeric(cells []Cell) *FillPattern {
	n := len(cells)
	nums := make([]float64, n)
	for i, cell := range cells {
		if cell.Value == nil {
			return nil
		}
		v, ok := cell.Value.Number()
		if !ok {
			return nil
		}
		nums[i] = v
	}
	step := nums[1] - nums[0]
	for i := 2; i < n; i++ {
		if math.Abs((nums[i]-nums[i-1])-step) > linearStepTolerance {
			return nil
		}
	}
	last := nums[n-1]
	return &FillPattern{
		Strategy: FillLinearNumeric,
		cellAt: func(i int) Cell {
			out := cloneCell(cells[i%n])
			out.Value = NumberValue(last + step*float64(i+1))
			return out
		},
		srcIndex: func(int) int { return -1 },
	}
}

func detectDateSequence(cells []Cell) *FillPattern {
	n := len(cells)
	dates := make([]int, n) // whole days since the serial epoch
	for i, cell := range cells {
		if cell.Value == nil {
			return nil
		}
		t, ok := cell.Value.Date()
		if !ok {
			return nil
		}
		serial := dateToSerial(t)
		if serial != math.Floor(serial) {
			// A time-of-day component breaks the whole-day sequence.
			return nil
		}
		dates[i] = int(serial)
	}
	step := dates[1] - dates[0]
	for i := 2; i < n; i++ {
		if dates[i]-dates[i-1] != step {
			return nil
		}
	}
	lastCell := cells[n-1]
	last, _ := lastCell.Value.Date()
	return &FillPattern{
		Strategy: FillDateSequence,
		cellAt: func(i int) Cell {
			out := cloneCell(cells[i%n])
			out.Value = DateValue(last.AddDate(0, 0, step*(i+1)))
			return out
		},
		srcIndex: func(int) int { return -1 },
	}
}

func detectNumericSuffix(cells []Cell) *FillPattern {
	n := len(cells)
	prefix := ""
	suffixes := make([]int64, n)
	width := 0
	padded := false
	for i, cell := range cells {
		if cell.Value == nil || cell.Value.Kind() != KindText {
			return nil
		}
		text, _ := cell.Value.Text()
		m := numericSuffixPattern.FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		if i == 0 {
			prefix = m[1]
		} else if m[1] != prefix {
			return nil
		}
		v, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil
		}
		suffixes[i] = v
		if len(m[2]) > 1 && m[2][0] == '0' {
			padded = true
		}
		if len(m[2]) > width {
			width = len(m[2])
		}
	}
	step := suffixes[1] - suffixes[0]
	for i := 2; i < n; i++ {
		if suffixes[i]-suffixes[i-1] != step {
			return nil
		}
	}
	last := suffixes[n-1]
	return &FillPattern{
		Strategy: FillNumericSuffix,
		cellAt: func(i int) Cell {
			out := cloneCell(cells[i%n])
			next := strconv.FormatInt(last+step*int64(i+1), 10)
			if padded {
				for len(next) < width {
					next = "0" + next
				}
			}
			out.Value = TextValue(prefix + next)
			return out
		},
		srcIndex: func(int) int { return -1 },
	}
}

// cloneCell copies a cell snapshot so fill targets never share mutable
// payloads with the source. Opaque style payloads stay shared; the store
// never mutates them.
func cloneCell(c Cell) Cell {
	out := Cell{Value: c.Value, Style: c.Style}
	if c.Format != nil {
		f := *c.Format
		out.Format = &f
	}
	if len(c.RichText) > 0 {
		var runs []RichTextRun
		if err := deepcopy.Copy(&runs, c.RichText); err == nil {
			out.RichText = runs
		} else {
			out.RichText = append([]RichTextRun(nil), c.RichText...)
		}
	}
	return out
}

// FillGenerator produces the cell to write at a target coordinate. A nil
// result leaves the coordinate untouched.
type FillGenerator func(target Coordinate) *Cell

// FillRange copies one source cell's value, style and format into every
// coordinate of target, or calls gen per coordinate when supplied. A nil
// source with no generator is a no-op. All writes coalesce into one change
// event.
func (d *SparseWorksheetData) FillRange(source *Coordinate, target Range, gen FillGenerator) error {
	if d.disposed {
		return ErrStoreDisposed
	}
	if source == nil && gen == nil {
		return nil
	}
	var template Cell
	if gen == nil {
		template = d.Cell(*source)
	}
	return d.Batch(func() error {
		for _, c := range target.Coordinates() {
			cell := cloneCell(template)
			if gen != nil {
				produced := gen(c)
				if produced == nil {
					continue
				}
				cell = *produced
			}
			if err := d.writeFilled(c, cell); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *SparseWorksheetData) writeFilled(c Coordinate, cell Cell) error {
	if err := d.SetValue(c, cell.Value); err != nil {
		return err
	}
	if err := d.SetStyle(c, cell.Style); err != nil {
		return err
	}
	return d.SetFormat(c, cell.Format)
}

type fillDirection int

const (
	fillDown fillDirection = iota
	fillUp
	fillRight
	fillLeft
)

func (dir fillDirection) vertical() bool { return dir == fillDown || dir == fillUp }

func (dir fillDirection) backward() bool { return dir == fillUp || dir == fillLeft }

// deriveFillDirection classifies target relative to source. A direction
// exists only when target lies strictly beyond one edge of source and the
// two ranges overlap on the perpendicular axis; diagonal targets have no
// direction.
func deriveFillDirection(source, target Range) (fillDirection, bool) {
	colsOverlap := source.StartCol <= target.EndCol && target.StartCol <= source.EndCol
	rowsOverlap := source.StartRow <= target.EndRow && target.StartRow <= source.EndRow
	switch {
	case colsOverlap && target.StartRow > source.EndRow:
		return fillDown, true
	case colsOverlap && target.EndRow < source.StartRow:
		return fillUp, true
	case rowsOverlap && target.StartCol > source.EndCol:
		return fillRight, true
	case rowsOverlap && target.EndCol < source.StartCol:
		return fillLeft, true
	}
	return 0, false
}

// SmartFill extrapolates the cells of source into target. The fill direction
// is derived from where target sits relative to source; a target inside or
// overlapping source is a no-op returning nil. Each perpendicular line runs
// its own pattern detection. When source contains whole merge regions, the
// target grows outward (up to the sheet bounds) to the next multiple of the
// source span so tiled merges are never cut off, and merges are replicated
// across the result. Returns the union of source and the (possibly expanded)
// target.
func SmartFill(d *SparseWorksheetData, merges *MergedCellRegistry, source, target Range, gen FillGenerator) (*Range, error) {
	if d.disposed {
		return nil, ErrStoreDisposed
	}
	dir, ok := deriveFillDirection(source, target)
	if !ok {
		return nil, nil
	}

	var containedMerges []MergeRegion
	if merges != nil {
		for _, region := range merges.RegionsInRange(source) {
			if source.ContainsRange(region.Range) {
				containedMerges = append(containedMerges, region)
			}
		}
	}
	if len(containedMerges) > 0 {
		target = expandToSpanMultiple(source, target, dir)
	}

	err := d.Batch(func() error {
		if dir.vertical() {
			for col := source.StartCol; col <= source.EndCol; col++ {
				if err := d.fillLine(source, target, dir, col, gen); err != nil {
					return err
				}
			}
		} else {
			for row := source.StartRow; row <= source.EndRow; row++ {
				if err := d.fillLine(source, target, dir, row, gen); err != nil {
					return err
				}
			}
		}
		if merges != nil && len(containedMerges) > 0 {
			replicateMerges(d, merges, source, target, dir)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result := source.Union(target)
	return &result, nil
}

// fillLine runs detection and extrapolation along one column (vertical fill)
// or one row (horizontal fill). The source run is reversed for backward
// fills so index 0 is always nearest the gap, and backward targets are
// walked from the gap outward.
func (d *SparseWorksheetData) fillLine(source, target Range, dir fillDirection, line int, gen FillGenerator) error {
	var runCoords []Coordinate
	if dir.vertical() {
		for row := source.StartRow; row <= source.EndRow; row++ {
			runCoords = append(runCoords, Coordinate{Row: row, Col: line})
		}
	} else {
		for col := source.StartCol; col <= source.EndCol; col++ {
			runCoords = append(runCoords, Coordinate{Row: line, Col: col})
		}
	}
	if dir.backward() {
		for i, j := 0, len(runCoords)-1; i < j; i, j = i+1, j-1 {
			runCoords[i], runCoords[j] = runCoords[j], runCoords[i]
		}
	}
	run := make([]Cell, len(runCoords))
	for i, c := range runCoords {
		run[i] = d.Cell(c)
	}

	var pattern *FillPattern
	if gen == nil {
		pattern = DetectFillPattern(run)
	}

	var targets []Coordinate
	switch dir {
	case fillDown:
		for row := target.StartRow; row <= target.EndRow; row++ {
			targets = append(targets, Coordinate{Row: row, Col: line})
		}
	case fillUp:
		for row := target.EndRow; row >= target.StartRow; row-- {
			targets = append(targets, Coordinate{Row: row, Col: line})
		}
	case fillRight:
		for col := target.StartCol; col <= target.EndCol; col++ {
			targets = append(targets, Coordinate{Row: line, Col: col})
		}
	case fillLeft:
		for col := target.EndCol; col >= target.StartCol; col-- {
			targets = append(targets, Coordinate{Row: line, Col: col})
		}
	}

	for i, c := range targets {
		var cell Cell
		if gen != nil {
			produced := gen(c)
			if produced == nil {
				continue
			}
			cell = *produced
		} else {
			cell = pattern.CellAt(i)
			if src := pattern.srcIndex(i); src >= 0 && cell.Value != nil && cell.Value.Kind() == KindFormula {
				origin := runCoords[src]
				expr, _ := cell.Value.Text()
				cell.Value = FormulaValue(shiftFormulaRefs(expr, c.Row-origin.Row, c.Col-origin.Col))
			}
		}
		if err := d.writeFilled(c, cell); err != nil {
			return err
		}
	}
	return nil
}

// expandToSpanMultiple grows target outward to the next whole multiple of
// the source span along the fill axis, clamped to the sheet bounds.
func expandToSpanMultiple(source, target Range, dir fillDirection) Range {
	if dir.vertical() {
		span := source.Rows()
		if rem := target.Rows() % span; rem != 0 {
			extra := span - rem
			if dir == fillDown {
				target.EndRow = minInt(target.EndRow+extra, TotalRows-1)
			} else {
				target.StartRow = maxInt(target.StartRow-extra, 0)
			}
		}
		return target
	}
	span := source.Cols()
	if rem := target.Cols() % span; rem != 0 {
		extra := span - rem
		if dir == fillRight {
			target.EndCol = minInt(target.EndCol+extra, TotalColumns-1)
		} else {
			target.StartCol = maxInt(target.StartCol-extra, 0)
		}
	}
	return target
}

// replicateMerges tiles the merge regions fully contained in source across
// target in steps of the source span along the fill axis. Merges already
// intersecting target are cleared first. A tile that would run past the far
// edge of target is dropped, not clipped. Every newly tiled merge has the
// stored values of its non-anchor cells cleared.
func replicateMerges(d *SparseWorksheetData, merges *MergedCellRegistry, source, target Range, dir fillDirection) {
	var contained []MergeRegion
	for _, region := range merges.RegionsInRange(source) {
		if source.ContainsRange(region.Range) {
			contained = append(contained, region)
		}
	}
	if len(contained) == 0 {
		return
	}
	merges.UnmergeInRange(target)

	span := source.Rows()
	if !dir.vertical() {
		span = source.Cols()
	}
	if dir.backward() {
		span = -span
	}

	for _, region := range contained {
		for k := 1; ; k++ {
			tile := region.Range
			if dir.vertical() {
				tile.StartRow += span * k
				tile.EndRow += span * k
			} else {
				tile.StartCol += span * k
				tile.EndCol += span * k
			}
			if !tile.Intersects(target) {
				break
			}
			if !target.ContainsRange(tile) {
				// Incomplete tile at the far edge: dropped.
				continue
			}
			tiled, err := merges.Merge(tile)
			if err != nil {
				continue
			}
			anchor := tiled.Anchor()
			for _, c := range tile.Coordinates() {
				if c != anchor {
					_ = d.SetValue(c, nil)
				}
			}
		}
	}
}

// shiftFormulaRefs rewrites the relative A1 references of a copied formula
// by the fill offset, walking the efp token stream. Absolute axes (with $)
// and cross-sheet references are untouched; a reference shifted off the
// sheet becomes #REF!.
func shiftFormulaRefs(expr string, dRow, dCol int) string {
	if dRow == 0 && dCol == 0 {
		return expr
	}
	ps := efp.ExcelParser()
	tokens := ps.Parse(expr)
	if tokens == nil {
		return expr
	}
	var b strings.Builder
	for _, token := range tokens {
		if token.TType == efp.TokenTypeOperand && token.TSubType == efp.TokenSubTypeRange &&
			!strings.Contains(token.TValue, "!") {
			parts := strings.Split(token.TValue, ":")
			for i, part := range parts {
				parts[i] = shiftCellRef(part, dRow, dCol)
			}
			b.WriteString(strings.Join(parts, ":"))
			continue
		}
		b.WriteString(renderFormulaToken(token))
	}
	return b.String()
}

var cellRefPattern = regexp.MustCompile(`^(\$?)([A-Za-z]{1,3})(\$?)(\d+)$`)

func shiftCellRef(ref string, dRow, dCol int) string {
	m := cellRefPattern.FindStringSubmatch(ref)
	if m == nil {
		// Column-only or row-only references pass through unchanged.
		return ref
	}
	col, err := ColumnNameToNumber(m[2])
	if err != nil {
		return ref
	}
	row, err := strconv.Atoi(m[4])
	if err != nil {
		return ref
	}
	if m[1] == "" {
		col += dCol
	}
	if m[3] == "" {
		row += dRow
	}
	if col < 1 || col > TotalColumns || row < 1 || row > TotalRows {
		return "#REF!"
	}
	name, err := ColumnNumberToName(col)
	if err != nil {
		return "#REF!"
	}
	return m[1] + name + m[3] + strconv.Itoa(row)
}

// renderFormulaToken reconstructs the source text of one efp token.
func renderFormulaToken(token efp.Token) string {
	switch token.TType {
	case efp.TokenTypeFunction:
		if token.TSubType == efp.TokenSubTypeStart {
			return token.TValue + "("
		}
		return ")"
	case efp.TokenTypeSubexpression:
		if token.TSubType == efp.TokenSubTypeStart {
			return "("
		}
		return ")"
	case efp.TokenTypeArgument:
		return ","
	case efp.TokenTypeOperand:
		if token.TSubType == efp.TokenSubTypeText {
			return `"` + strings.ReplaceAll(token.TValue, `"`, `""`) + `"`
		}
		return token.TValue
	case efp.TokenTypeWhitespace:
		return " "
	default:
		return token.TValue
	}
}

package gridcore

import (
	"context"
)

// SparseWorksheetData stores per-coordinate cell aspects in four independent
// sparse maps. A coordinate with no aspect set is indistinguishable from a
// coordinate that was never written. Access is single-writer by design: the
// store performs no mutual exclusion between concurrent mutators.
type SparseWorksheetData struct {
	values   map[Coordinate]*CellValue
	styles   map[Coordinate]CellStyle
	formats  map[Coordinate]CellFormat
	richText map[Coordinate][]RichTextRun

	maxRow int // -1 while empty
	maxCol int

	feed *ChangeFeed

	batchDepth   int
	batchTouched bool
	batchRange   Range

	disposed bool
}

// NewSparseWorksheetData creates an empty store with an open change feed.
func NewSparseWorksheetData() *SparseWorksheetData {
	return &SparseWorksheetData{
		values:   make(map[Coordinate]*CellValue),
		styles:   make(map[Coordinate]CellStyle),
		formats:  make(map[Coordinate]CellFormat),
		richText: make(map[Coordinate][]RichTextRun),
		maxRow:   -1,
		maxCol:   -1,
		feed:     NewChangeFeed(),
	}
}

// Feed returns the change-event feed of the store.
func (d *SparseWorksheetData) Feed() *ChangeFeed { return d.feed }

// Disposed reports whether Dispose has been called.
func (d *SparseWorksheetData) Disposed() bool { return d.disposed }

// Dispose tears the store down: every later mutating call fails with
// ErrStoreDisposed and the change feed is closed. Disposal is final.
func (d *SparseWorksheetData) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.feed.close()
}

func (d *SparseWorksheetData) checkMutable(c Coordinate) error {
	if d.disposed {
		return ErrStoreDisposed
	}
	if !c.Valid() {
		return newCoordinateError(c.Row, c.Col)
	}
	if c.Row >= TotalRows {
		return ErrMaxRows
	}
	if c.Col >= TotalColumns {
		return ErrColumnNumber
	}
	return nil
}

// Value returns the stored value at c, or nil.
func (d *SparseWorksheetData) Value(c Coordinate) *CellValue { return d.values[c] }

// Style returns the stored style at c, or nil.
func (d *SparseWorksheetData) Style(c Coordinate) CellStyle { return d.styles[c] }

// Format returns the stored format at c, or nil.
func (d *SparseWorksheetData) Format(c Coordinate) *CellFormat {
	if f, ok := d.formats[c]; ok {
		return &f
	}
	return nil
}

// RichText returns the stored rich-text runs at c, or nil.
func (d *SparseWorksheetData) RichText(c Coordinate) []RichTextRun { return d.richText[c] }

// SetValue stores or, when v is nil, clears the value aspect at c.
func (d *SparseWorksheetData) SetValue(c Coordinate, v *CellValue) error {
	if err := d.checkMutable(c); err != nil {
		return err
	}
	if v == nil {
		delete(d.values, c)
		d.recomputeBoundsAfterRemoval()
	} else {
		d.values[c] = v
		d.growBounds(c)
	}
	d.emit(ChangeEvent{Kind: ChangeCellValue, Coord: c})
	return nil
}

// SetStyle stores or, when style is nil, clears the style aspect at c.
func (d *SparseWorksheetData) SetStyle(c Coordinate, style CellStyle) error {
	if err := d.checkMutable(c); err != nil {
		return err
	}
	if style == nil {
		delete(d.styles, c)
		d.recomputeBoundsAfterRemoval()
	} else {
		d.styles[c] = style
		d.growBounds(c)
	}
	d.emit(ChangeEvent{Kind: ChangeCellStyle, Coord: c})
	return nil
}

// SetFormat stores or, when format is nil, clears the format aspect at c.
func (d *SparseWorksheetData) SetFormat(c Coordinate, format *CellFormat) error {
	if err := d.checkMutable(c); err != nil {
		return err
	}
	if format == nil {
		delete(d.formats, c)
		d.recomputeBoundsAfterRemoval()
	} else {
		d.formats[c] = *format
		d.growBounds(c)
	}
	d.emit(ChangeEvent{Kind: ChangeCellFormat, Coord: c})
	return nil
}

// SetRichText stores or, when runs is empty, clears the rich-text aspect.
func (d *SparseWorksheetData) SetRichText(c Coordinate, runs []RichTextRun) error {
	if err := d.checkMutable(c); err != nil {
		return err
	}
	if len(runs) == 0 {
		delete(d.richText, c)
		d.recomputeBoundsAfterRemoval()
	} else {
		d.richText[c] = runs
		d.growBounds(c)
	}
	// Rich text alters the rendered value; the event vocabulary has no
	// separate kind for it.
	d.emit(ChangeEvent{Kind: ChangeCellValue, Coord: c})
	return nil
}

// Cell returns the aggregate view over all four aspects at c.
func (d *SparseWorksheetData) Cell(c Coordinate) Cell {
	return Cell{
		Value:    d.values[c],
		Style:    d.styles[c],
		Format:   d.Format(c),
		RichText: d.richText[c],
	}
}

// SetCell writes all four aspects of cell at c; absent aspects are cleared.
func (d *SparseWorksheetData) SetCell(c Coordinate, cell Cell) error {
	if err := d.checkMutable(c); err != nil {
		return err
	}
	return d.Batch(func() error {
		if err := d.SetValue(c, cell.Value); err != nil {
			return err
		}
		if err := d.SetStyle(c, cell.Style); err != nil {
			return err
		}
		if err := d.SetFormat(c, cell.Format); err != nil {
			return err
		}
		return d.SetRichText(c, cell.RichText)
	})
}

// ClearRange removes all four aspects for every coordinate inside r. A range
// event is always emitted, even when nothing was present; subscribers must
// tolerate no-op notifications.
func (d *SparseWorksheetData) ClearRange(r Range) error {
	if d.disposed {
		return ErrStoreDisposed
	}
	for row := r.StartRow; row <= r.EndRow; row++ {
		for col := r.StartCol; col <= r.EndCol; col++ {
			c := Coordinate{Row: row, Col: col}
			delete(d.values, c)
			delete(d.styles, c)
			delete(d.formats, c)
			delete(d.richText, c)
		}
	}
	d.recomputeBoundsAfterRemoval()
	d.emit(ChangeEvent{Kind: ChangeRange, Range: r})
	return nil
}

// Reset drops every stored aspect and emits a reset event.
func (d *SparseWorksheetData) Reset() error {
	if d.disposed {
		return ErrStoreDisposed
	}
	d.values = make(map[Coordinate]*CellValue)
	d.styles = make(map[Coordinate]CellStyle)
	d.formats = make(map[Coordinate]CellFormat)
	d.richText = make(map[Coordinate][]RichTextRun)
	d.maxRow, d.maxCol = -1, -1
	d.feed.publish(ChangeEvent{Kind: ChangeReset})
	return nil
}

// Batch buffers change notifications while fn runs: every mutation inside fn
// lands in the real maps immediately (reads during the batch observe writes
// so far) but exactly one coalesced range event covering the union of all
// touched cells is emitted afterward. Batches nest; the outermost emits.
func (d *SparseWorksheetData) Batch(fn func() error) error {
	if d.disposed {
		return ErrStoreDisposed
	}
	d.batchDepth++
	err := fn()
	d.batchDepth--
	if d.batchDepth == 0 {
		d.flushBatch()
	}
	return err
}

// BatchContext is the asynchronous batch variant: fn may suspend on its own
// goroutines, and the coalesced event is emitted only after fn has fully
// returned. Ordering between concurrent callers is caller-controlled.
func (d *SparseWorksheetData) BatchContext(ctx context.Context, fn func(context.Context) error) error {
	if d.disposed {
		return ErrStoreDisposed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.Batch(func() error { return fn(ctx) })
}

func (d *SparseWorksheetData) flushBatch() {
	if !d.batchTouched {
		return
	}
	touched := d.batchRange
	d.batchTouched = false
	d.batchRange = Range{}
	d.feed.publish(ChangeEvent{Kind: ChangeRange, Range: touched})
}

// emit publishes immediately, or accumulates the touched area while a batch
// is open. Structural events bypass coalescing.
func (d *SparseWorksheetData) emit(ev ChangeEvent) {
	if d.batchDepth == 0 {
		d.feed.publish(ev)
		return
	}
	var area Range
	switch ev.Kind {
	case ChangeCellValue, ChangeCellStyle, ChangeCellFormat:
		area = RangeOf(ev.Coord)
	case ChangeRange:
		area = ev.Range
	default:
		d.feed.publish(ev)
		return
	}
	if !d.batchTouched {
		d.batchTouched = true
		d.batchRange = area
	} else {
		d.batchRange = d.batchRange.Union(area)
	}
}

// MaxRow returns the largest populated row index, or -1 when empty.
func (d *SparseWorksheetData) MaxRow() int { return d.maxRow }

// MaxColumn returns the largest populated column index, or -1 when empty.
func (d *SparseWorksheetData) MaxColumn() int { return d.maxCol }

// UsedRange returns the bounding range of all populated coordinates. The
// second result is false while the store is empty.
func (d *SparseWorksheetData) UsedRange() (Range, bool) {
	if d.maxRow < 0 {
		return Range{}, false
	}
	return Range{StartRow: 0, StartCol: 0, EndRow: d.maxRow, EndCol: d.maxCol}, true
}

func (d *SparseWorksheetData) growBounds(c Coordinate) {
	if c.Row > d.maxRow {
		d.maxRow = c.Row
	}
	if c.Col > d.maxCol {
		d.maxCol = c.Col
	}
}

// recomputeBoundsAfterRemoval rescans the four maps. Insertions grow the
// cached bounds incrementally; removals pay the scan.
func (d *SparseWorksheetData) recomputeBoundsAfterRemoval() {
	d.maxRow, d.maxCol = -1, -1
	scan := func(c Coordinate) {
		if c.Row > d.maxRow {
			d.maxRow = c.Row
		}
		if c.Col > d.maxCol {
			d.maxCol = c.Col
		}
	}
	for c := range d.values {
		scan(c)
	}
	for c := range d.styles {
		scan(c)
	}
	for c := range d.formats {
		scan(c)
	}
	for c := range d.richText {
		scan(c)
	}
}

// InsertRows shifts every cell at or below index down by count and emits a
// rowInserted event.
func (d *SparseWorksheetData) InsertRows(index, count int) error {
	if d.disposed {
		return ErrStoreDisposed
	}
	if index < 0 || count < 1 {
		return newCoordinateError(index, count)
	}
	d.shiftCells(func(c Coordinate) (Coordinate, bool) {
		if c.Row >= index {
			return Coordinate{Row: c.Row + count, Col: c.Col}, true
		}
		return c, true
	})
	d.feed.publish(ChangeEvent{Kind: ChangeRowInserted, Index: index, Count: count})
	return nil
}

// DeleteRows removes count rows starting at index, dropping their cells and
// shifting later rows up. Emits a rowDeleted event.
func (d *SparseWorksheetData) DeleteRows(index, count int) error {
	if d.disposed {
		return ErrStoreDisposed
	}
	if index < 0 || count < 1 {
		return newCoordinateError(index, count)
	}
	d.shiftCells(func(c Coordinate) (Coordinate, bool) {
		switch {
		case c.Row >= index && c.Row < index+count:
			return c, false
		case c.Row >= index+count:
			return Coordinate{Row: c.Row - count, Col: c.Col}, true
		}
		return c, true
	})
	d.feed.publish(ChangeEvent{Kind: ChangeRowDeleted, Index: index, Count: count})
	return nil
}

// InsertColumns shifts every cell at or right of index by count and emits a
// columnInserted event.
func (d *SparseWorksheetData) InsertColumns(index, count int) error {
	if d.disposed {
		return ErrStoreDisposed
	}
	if index < 0 || count < 1 {
		return newCoordinateError(index, count)
	}
	d.shiftCells(func(c Coordinate) (Coordinate, bool) {
		if c.Col >= index {
			return Coordinate{Row: c.Row, Col: c.Col + count}, true
		}
		return c, true
	})
	d.feed.publish(ChangeEvent{Kind: ChangeColumnInserted, Index: index, Count: count})
	return nil
}

// DeleteColumns removes count columns starting at index. Emits a
// columnDeleted event.
func (d *SparseWorksheetData) DeleteColumns(index, count int) error {
	if d.disposed {
		return ErrStoreDisposed
	}
	if index < 0 || count < 1 {
		return newCoordinateError(index, count)
	}
	d.shiftCells(func(c Coordinate) (Coordinate, bool) {
		switch {
		case c.Col >= index && c.Col < index+count:
			return c, false
		case c.Col >= index+count:
			return Coordinate{Row: c.Row, Col: c.Col - count}, true
		}
		return c, true
	})
	d.feed.publish(ChangeEvent{Kind: ChangeColumnDeleted, Index: index, Count: count})
	return nil
}

// shiftCells rebuilds the four maps through a remapping function; a false
// second result drops the cell.
func (d *SparseWorksheetData) shiftCells(remap func(Coordinate) (Coordinate, bool)) {
	values := make(map[Coordinate]*CellValue, len(d.values))
	for c, v := range d.values {
		if nc, keep := remap(c); keep {
			values[nc] = v
		}
	}
	styles := make(map[Coordinate]CellStyle, len(d.styles))
	for c, v := range d.styles {
		if nc, keep := remap(c); keep {
			styles[nc] = v
		}
	}
	formats := make(map[Coordinate]CellFormat, len(d.formats))
	for c, v := range d.formats {
		if nc, keep := remap(c); keep {
			formats[nc] = v
		}
	}
	richText := make(map[Coordinate][]RichTextRun, len(d.richText))
	for c, v := range d.richText {
		if nc, keep := remap(c); keep {
			richText[nc] = v
		}
	}
	d.values, d.styles, d.formats, d.richText = values, styles, formats, richText
	d.recomputeBoundsAfterRemoval()
}

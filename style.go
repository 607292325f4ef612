package gridcore

import "reflect"

// CellStyle is an opaque presentation payload. The store never inspects its
// contents beyond storing, returning and clearing it; structural comparison
// (used by fill pattern detection) goes through reflect.DeepEqual.
type CellStyle any

// RichTextRun is one styled span of a cell's rich text.
type RichTextRun struct {
	Text  string
	Style CellStyle
}

// Cell is the aggregate read/write view over the four sparse aspects of a
// coordinate. It is a DTO, not a stored entity; a nil or absent aspect means
// that aspect is not set.
type Cell struct {
	Value    *CellValue
	Style    CellStyle
	Format   *CellFormat
	RichText []RichTextRun
}

// IsEmpty reports whether all four aspects are absent.
func (c Cell) IsEmpty() bool {
	return c.Value == nil && c.Style == nil && c.Format == nil && len(c.RichText) == 0
}

// equalCells reports structural identity of two cell snapshots, including
// opaque style payloads.
func equalCells(a, b Cell) bool {
	if !a.Value.Equal(b.Value) {
		return false
	}
	if !reflect.DeepEqual(a.Style, b.Style) {
		return false
	}
	if (a.Format == nil) != (b.Format == nil) {
		return false
	}
	if a.Format != nil && *a.Format != *b.Format {
		return false
	}
	return reflect.DeepEqual(a.RichText, b.RichText)
}

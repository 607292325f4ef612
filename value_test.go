package gridcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellValueDetectionOrder(t *testing.T) {
	opts := ParseOptions{AllowFormulas: true}
	cases := []struct {
		text string
		want *CellValue
	}{
		{"", nil},
		{"   ", nil},
		{"=SUM(A1:A3)", FormulaValue("SUM(A1:A3)")},
		{"TRUE", BoolValue(true)},
		{"false", BoolValue(false)},
		{"42", NumberValue(42)},
		{"-3.5", NumberValue(-3.5)},
		{"+.5", NumberValue(0.5)},
		{"1e3", NumberValue(1000)},
		{"1:30", DurationValue(90 * time.Minute)},
		{"1:30:05", DurationValue(time.Hour + 30*time.Minute + 5*time.Second)},
		{"25:00:00", DurationValue(25 * time.Hour)},
		{"hello", TextValue("hello")},
		{"1:70", TextValue("1:70")},
		{"1,000", TextValue("1,000")},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got := ParseCellValue(tc.text, opts)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tc.want.Equal(got), "parsed %q as kind %v", tc.text, got.Kind())
		})
	}
}

func TestParseCellValueFormulasDisabled(t *testing.T) {
	got := ParseCellValue("=A1+1", ParseOptions{})
	require.NotNil(t, got)
	assert.Equal(t, KindText, got.Kind())
}

func TestParseCellValueNumberBeforeDate(t *testing.T) {
	// A bare digit string must stay numeric even when the injected date
	// parser would happily accept it.
	greedy := func(string) (time.Time, bool) {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true
	}
	got := ParseCellValue("20240101", ParseOptions{DateParser: greedy})
	require.NotNil(t, got)
	assert.Equal(t, KindNumber, got.Kind())
}

func TestParseCellValueInjectedDateParser(t *testing.T) {
	when := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	parser := func(text string) (time.Time, bool) {
		if text == "2024-01-15" {
			return when, true
		}
		return time.Time{}, false
	}
	got := ParseCellValue("2024-01-15", ParseOptions{DateParser: parser})
	require.NotNil(t, got)
	d, ok := got.Date()
	require.True(t, ok)
	assert.True(t, when.Equal(d))

	// Text the parser rejects stays text.
	got = ParseCellValue("someday", ParseOptions{DateParser: parser})
	require.NotNil(t, got)
	assert.Equal(t, KindText, got.Kind())
}

func TestParseCellValuePreservesOriginalText(t *testing.T) {
	got := ParseCellValue("  padded  ", ParseOptions{})
	require.NotNil(t, got)
	text, ok := got.Text()
	require.True(t, ok)
	assert.Equal(t, "  padded  ", text)
}

func TestCellValueString(t *testing.T) {
	assert.Equal(t, "TRUE", BoolValue(true).String())
	assert.Equal(t, "=A1+B1", FormulaValue("A1+B1").String())
	assert.Equal(t, "#DIV/0!", ErrorValue("#DIV/0!").String())
	assert.Equal(t, "1.5", NumberValue(1.5).String())
	assert.Equal(t, "1:30:05", DurationValue(time.Hour+30*time.Minute+5*time.Second).String())
	assert.Equal(t, "-0:00:30", DurationValue(-30*time.Second).String())
	assert.Equal(t, "25:00:00", DurationValue(25*time.Hour).String())
}

func TestCellValueEqual(t *testing.T) {
	assert.True(t, NumberValue(1).Equal(NumberValue(1)))
	assert.False(t, NumberValue(1).Equal(NumberValue(2)))
	assert.False(t, NumberValue(1).Equal(TextValue("1")))
	assert.False(t, TextValue("x").Equal(nil))

	utc := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	shifted := utc.In(time.FixedZone("plus2", 2*3600))
	assert.True(t, DateValue(utc).Equal(DateValue(shifted)))
}

func TestCellValueAccessorsRejectWrongKind(t *testing.T) {
	_, ok := TextValue("x").Number()
	assert.False(t, ok)
	_, ok = NumberValue(1).Text()
	assert.False(t, ok)
	_, ok = NumberValue(1).Date()
	assert.False(t, ok)
	_, ok = TextValue("x").Duration()
	assert.False(t, ok)
	_, ok = TextValue("x").Bool()
	assert.False(t, ok)

	// Formula and error payloads come back through Text.
	expr, ok := FormulaValue("A1").Text()
	assert.True(t, ok)
	assert.Equal(t, "A1", expr)
}

package gridcore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CellValueKind discriminates the payload held by a CellValue.
type CellValueKind int

// Cell value kinds.
const (
	KindText CellValueKind = iota
	KindNumber
	KindBool
	KindFormula
	KindError
	KindDate
	KindDuration
)

// CellValue is an immutable tagged union holding one typed scalar. The zero
// value is the empty text value.
type CellValue struct {
	kind     CellValueKind
	text     string
	number   float64
	boolean  bool
	date     time.Time
	duration time.Duration
}

// TextValue creates a text cell value.
func TextValue(s string) *CellValue { return &CellValue{kind: KindText, text: s} }

// NumberValue creates a numeric cell value.
func NumberValue(n float64) *CellValue { return &CellValue{kind: KindNumber, number: n} }

// BoolValue creates a boolean cell value.
func BoolValue(b bool) *CellValue { return &CellValue{kind: KindBool, boolean: b} }

// FormulaValue creates a formula cell value. The expression is stored as
// opaque text, without a leading "=".
func FormulaValue(expr string) *CellValue { return &CellValue{kind: KindFormula, text: expr} }

// ErrorValue creates an error cell value such as "#DIV/0!".
func ErrorValue(code string) *CellValue { return &CellValue{kind: KindError, text: code} }

// DateValue creates a calendar date-time cell value.
func DateValue(t time.Time) *CellValue { return &CellValue{kind: KindDate, date: t} }

// DurationValue creates a signed time-span cell value.
func DurationValue(d time.Duration) *CellValue { return &CellValue{kind: KindDuration, duration: d} }

// Kind returns the discriminator of the value.
func (v *CellValue) Kind() CellValueKind { return v.kind }

// Text returns the payload of a text, formula or error value; the second
// return value is false for every other kind.
func (v *CellValue) Text() (string, bool) {
	switch v.kind {
	case KindText, KindFormula, KindError:
		return v.text, true
	}
	return "", false
}

// Number returns the numeric payload.
func (v *CellValue) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.number, true
}

// Bool returns the boolean payload.
func (v *CellValue) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// Date returns the calendar date-time payload.
func (v *CellValue) Date() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// Duration returns the time-span payload.
func (v *CellValue) Duration() (time.Duration, bool) {
	if v.kind != KindDuration {
		return 0, false
	}
	return v.duration, true
}

// Equal reports structural equality: same kind and same payload.
func (v *CellValue) Equal(other *CellValue) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.number == other.number
	case KindBool:
		return v.boolean == other.boolean
	case KindDate:
		return v.date.Equal(other.date)
	case KindDuration:
		return v.duration == other.duration
	default:
		return v.text == other.text
	}
}

// String renders the raw payload without applying any display format.
func (v *CellValue) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindBool:
		if v.boolean {
			return "TRUE"
		}
		return "FALSE"
	case KindFormula:
		return "=" + v.text
	case KindDate:
		return v.date.Format("2006-01-02 15:04:05")
	case KindDuration:
		return formatClockDuration(v.duration)
	default:
		return v.text
	}
}

// formatClockDuration renders a duration as [-]h:mm:ss with unbounded hours.
func formatClockDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, total/60%60, total%60)
}

// DateParser is the injected fallback strategy used by ParseCellValue to
// recognize free-form dates. It returns false when the text is not a date.
type DateParser func(text string) (time.Time, bool)

// ParseOptions controls value auto-detection.
type ParseOptions struct {
	// AllowFormulas enables recognizing a leading "=" as a formula.
	AllowFormulas bool
	// DateParser recognizes free-form dates after all other detections
	// failed. May be nil.
	DateParser DateParser
}

var (
	numberPattern   = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	durationPattern = regexp.MustCompile(`^(\d+):([0-5]\d)(:[0-5]\d)?$`)
)

// ParseCellValue auto-detects a typed value from raw text. Detection runs in
// strict priority order: empty or whitespace-only text yields nil; a leading
// "=" yields a formula when formulas are allowed; TRUE/FALSE
// (case-insensitive) yields a boolean; a parseable real number yields a
// number (checked before dates so a bare digit string never becomes a
// timestamp); an H:mm or H:mm:ss clock pattern yields a duration; the
// injected date parser runs next; anything else is text. It never fails.
func ParseCellValue(text string, opts ParseOptions) *CellValue {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if opts.AllowFormulas && strings.HasPrefix(trimmed, "=") {
		return FormulaValue(trimmed[1:])
	}
	if strings.EqualFold(trimmed, "TRUE") {
		return BoolValue(true)
	}
	if strings.EqualFold(trimmed, "FALSE") {
		return BoolValue(false)
	}
	if numberPattern.MatchString(trimmed) {
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return NumberValue(n)
		}
	}
	if m := durationPattern.FindStringSubmatch(trimmed); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
		if m[3] != "" {
			seconds, _ := strconv.Atoi(m[3][1:])
			d += time.Duration(seconds) * time.Second
		}
		return DurationValue(d)
	}
	if opts.DateParser != nil {
		if t, ok := opts.DateParser(trimmed); ok {
			return DateValue(t)
		}
	}
	return TextValue(text)
}

package gridcore

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// serialEpoch is day zero of the 1900 date system. Serial 1 is
// 1900-01-01; the historical Lotus leap-year bug is not reproduced, so
// serials below 61 are one day off from legacy files, matching how xlrd-era
// readers normalize them.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// dateToSerial converts a calendar date-time to an Excel serial number. The
// wall-clock fields are used as-is; the location is ignored.
func dateToSerial(t time.Time) float64 {
	u := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := u.Sub(serialEpoch).Hours() / 24
	clock := float64(t.Hour())/24 + float64(t.Minute())/1440 + float64(t.Second())/86400 +
		float64(t.Nanosecond())/(86400*1e9)
	return days + clock
}

// serialToDate converts an Excel serial number to a calendar date-time in
// UTC, rounding the clock to the nearest millisecond.
func serialToDate(serial float64) time.Time {
	days := math.Floor(serial)
	frac := serial - days
	ms := math.Round(frac * 86400 * 1000)
	return serialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond)
}

// renderDurationSection formats an elapsed time span. Bracketed units mean
// totals that are not wrapped to calendar fields; bare units wrap (hours to
// 24, minutes and seconds to 60). The magnitude is formatted from the
// absolute duration; the caller renders the sign.
func renderDurationSection(sec *formatSection, d time.Duration) string {
	if d < 0 {
		d = -d
	}
	totalSec := int64(d / time.Second)
	var b strings.Builder
	code := sec.code
	for i := 0; i < len(code); {
		rest := code[i:]
		lower := strings.ToLower(rest)
		switch {
		case strings.HasPrefix(lower, "[hh]"):
			b.WriteString(fmt.Sprintf("%02d", totalSec/3600))
			i += 4
		case strings.HasPrefix(lower, "[h]"):
			b.WriteString(fmt.Sprintf("%d", totalSec/3600))
			i += 3
		case strings.HasPrefix(lower, "[mm]"):
			b.WriteString(fmt.Sprintf("%02d", totalSec/60))
			i += 4
		case strings.HasPrefix(lower, "[m]"):
			b.WriteString(fmt.Sprintf("%d", totalSec/60))
			i += 3
		case strings.HasPrefix(lower, "[ss]"):
			b.WriteString(fmt.Sprintf("%02d", totalSec))
			i += 4
		case strings.HasPrefix(lower, "[s]"):
			b.WriteString(fmt.Sprintf("%d", totalSec))
			i += 3
		case strings.HasPrefix(lower, "hh"):
			b.WriteString(fmt.Sprintf("%02d", totalSec/3600%24))
			i += 2
		case strings.HasPrefix(lower, "h"):
			b.WriteString(fmt.Sprintf("%d", totalSec/3600%24))
			i++
		case strings.HasPrefix(lower, "mm"):
			b.WriteString(fmt.Sprintf("%02d", totalSec/60%60))
			i += 2
		case strings.HasPrefix(lower, "m"):
			b.WriteString(fmt.Sprintf("%d", totalSec/60%60))
			i++
		case strings.HasPrefix(lower, "ss"):
			b.WriteString(fmt.Sprintf("%02d", totalSec%60))
			i += 2
		case strings.HasPrefix(lower, "s"):
			b.WriteString(fmt.Sprintf("%d", totalSec%60))
			i++
		default:
			b.WriteByte(code[i])
			i++
		}
	}
	return b.String()
}

// Date/time token kinds produced by the tokenizer.
type dateTokenKind int

const (
	tokLiteral dateTokenKind = iota
	tokYear4
	tokYear2
	tokMonthInitial
	tokMonthFull
	tokMonthAbbr
	tokMonthPad // explicit MM, never ambiguous
	tokAmbig    // m: month or minute, resolved by neighbors
	tokAmbigPad // mm
	tokMonth
	tokMonthNumPad
	tokMinute
	tokMinutePad
	tokDayFull
	tokDayAbbr
	tokDayPad
	tokDay
	tokHour24Pad
	tokHour24
	tokHour12Pad
	tokHour12
	tokSecPad
	tokSec
	tokFrac1
	tokFrac2
	tokFrac3
	tokAMPMUpper
	tokAMPMLower
	tokAPUpper
	tokAPLower
)

type dateToken struct {
	kind dateTokenKind
	text string // literal payload
}

// dateTokenTable is the fixed longest-match table. Entries that share a
// first character are ordered longest first.
var dateTokenTable = []struct {
	lit  string
	kind dateTokenKind
}{
	{"yyyy", tokYear4}, {"yy", tokYear2},
	{"mmmmm", tokMonthInitial}, {"mmmm", tokMonthFull}, {"mmm", tokMonthAbbr},
	{"mm", tokAmbigPad}, {"m", tokAmbig},
	{"MM", tokMonthPad},
	{"dddd", tokDayFull}, {"ddd", tokDayAbbr}, {"dd", tokDayPad}, {"d", tokDay},
	{"HH", tokHour24Pad}, {"H", tokHour24},
	{"hh", tokHour12Pad}, {"h", tokHour12},
	{"ss", tokSecPad}, {"s", tokSec},
	{".000", tokFrac3}, {".00", tokFrac2}, {".0", tokFrac1},
	{"AM/PM", tokAMPMUpper}, {"A/P", tokAPUpper},
	{"am/pm", tokAMPMLower}, {"a/p", tokAPLower},
}

// tokenizeDateCode splits a clause into date/time tokens with greedy
// longest-match scanning; anything unmatched becomes a literal token.
func tokenizeDateCode(code string) []dateToken {
	var tokens []dateToken
	for i := 0; i < len(code); {
		matched := false
		for _, entry := range dateTokenTable {
			if strings.HasPrefix(code[i:], entry.lit) {
				tokens = append(tokens, dateToken{kind: entry.kind})
				i += len(entry.lit)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		_, size := utf8.DecodeRuneInString(code[i:])
		text := code[i : i+size]
		if n := len(tokens); n > 0 && tokens[n-1].kind == tokLiteral {
			tokens[n-1].text += text
		} else {
			tokens = append(tokens, dateToken{kind: tokLiteral, text: text})
		}
		i += size
	}
	return tokens
}

func isHourKind(k dateTokenKind) bool {
	return k == tokHour24 || k == tokHour24Pad || k == tokHour12 || k == tokHour12Pad
}

func isSecondKind(k dateTokenKind) bool {
	return k == tokSec || k == tokSecPad
}

// resolveDateTokens is the second tokenizer pass: ambiguous m/mm tokens
// become minutes only when the nearest non-literal neighbor to the left is
// an hour token or to the right is a second token; fractional-second tokens
// survive only immediately after a second token.
func resolveDateTokens(tokens []dateToken) []dateToken {
	for i, tok := range tokens {
		switch tok.kind {
		case tokAmbig, tokAmbigPad:
			minute := false
			for j := i - 1; j >= 0; j-- {
				if tokens[j].kind == tokLiteral {
					continue
				}
				minute = isHourKind(tokens[j].kind)
				break
			}
			if !minute {
				for j := i + 1; j < len(tokens); j++ {
					if tokens[j].kind == tokLiteral {
						continue
					}
					minute = isSecondKind(tokens[j].kind)
					break
				}
			}
			switch {
			case minute && tok.kind == tokAmbigPad:
				tokens[i].kind = tokMinutePad
			case minute:
				tokens[i].kind = tokMinute
			case tok.kind == tokAmbigPad:
				tokens[i].kind = tokMonthNumPad
			default:
				tokens[i].kind = tokMonth
			}
		case tokFrac1, tokFrac2, tokFrac3:
			if i == 0 || !isSecondKind(tokens[i-1].kind) {
				text := map[dateTokenKind]string{tokFrac1: ".0", tokFrac2: ".00", tokFrac3: ".000"}[tok.kind]
				tokens[i] = dateToken{kind: tokLiteral, text: text}
			}
		}
	}
	return tokens
}

// renderDateTimeSection renders a date/time clause against the fixed token
// table, using the locale's month and day names.
func renderDateTimeSection(sec *formatSection, t time.Time, loc *FormatLocale) string {
	tokens := resolveDateTokens(tokenizeDateCode(sec.code))

	twelveHour := false
	for _, tok := range tokens {
		switch tok.kind {
		case tokAMPMUpper, tokAMPMLower, tokAPUpper, tokAPLower:
			twelveHour = true
		}
	}

	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	weekday := int(t.Weekday())

	var b strings.Builder
	for _, tok := range tokens {
		switch tok.kind {
		case tokLiteral:
			b.WriteString(tok.text)
		case tokYear4:
			fmt.Fprintf(&b, "%04d", year)
		case tokYear2:
			fmt.Fprintf(&b, "%02d", year%100)
		case tokMonthInitial:
			name := loc.MonthNames[month-1]
			for _, r := range name {
				b.WriteRune(r)
				break
			}
		case tokMonthFull:
			b.WriteString(loc.MonthNames[month-1])
		case tokMonthAbbr:
			b.WriteString(loc.MonthAbbrevs[month-1])
		case tokMonthPad, tokMonthNumPad:
			fmt.Fprintf(&b, "%02d", int(month))
		case tokMonth:
			fmt.Fprintf(&b, "%d", int(month))
		case tokMinutePad:
			fmt.Fprintf(&b, "%02d", minute)
		case tokMinute:
			fmt.Fprintf(&b, "%d", minute)
		case tokDayFull:
			b.WriteString(loc.DayNames[weekday])
		case tokDayAbbr:
			b.WriteString(loc.DayAbbrevs[weekday])
		case tokDayPad:
			fmt.Fprintf(&b, "%02d", day)
		case tokDay:
			fmt.Fprintf(&b, "%d", day)
		case tokHour24Pad:
			fmt.Fprintf(&b, "%02d", hour)
		case tokHour24:
			fmt.Fprintf(&b, "%d", hour)
		case tokHour12Pad:
			if twelveHour {
				fmt.Fprintf(&b, "%02d", hour12)
			} else {
				fmt.Fprintf(&b, "%02d", hour)
			}
		case tokHour12:
			if twelveHour {
				fmt.Fprintf(&b, "%d", hour12)
			} else {
				fmt.Fprintf(&b, "%d", hour)
			}
		case tokSecPad:
			fmt.Fprintf(&b, "%02d", second)
		case tokSec:
			fmt.Fprintf(&b, "%d", second)
		case tokFrac1, tokFrac2, tokFrac3:
			digits := map[dateTokenKind]int{tokFrac1: 1, tokFrac2: 2, tokFrac3: 3}[tok.kind]
			frac := t.Nanosecond()
			scaled := frac / int(math.Pow10(9-digits))
			fmt.Fprintf(&b, "%s%0*d", loc.DecimalSep, digits, scaled)
		case tokAMPMUpper:
			if hour < 12 {
				b.WriteString("AM")
			} else {
				b.WriteString("PM")
			}
		case tokAMPMLower:
			if hour < 12 {
				b.WriteString("am")
			} else {
				b.WriteString("pm")
			}
		case tokAPUpper:
			if hour < 12 {
				b.WriteString("A")
			} else {
				b.WriteString("P")
			}
		case tokAPLower:
			if hour < 12 {
				b.WriteString("a")
			} else {
				b.WriteString("p")
			}
		}
	}
	return b.String()
}

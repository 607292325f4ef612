package gridcore

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// isDigitPlaceholder reports whether r reserves a digit position in a
// numeric mask.
func isDigitPlaceholder(r rune) bool {
	return r == '0' || r == '#' || r == '?'
}

// valueAsSerial maps a value onto the numeric axis the format engine
// computes with: numbers pass through, dates become Excel serials and
// durations become fractional days.
func valueAsSerial(v *CellValue) float64 {
	switch v.kind {
	case KindNumber:
		return v.number
	case KindDate:
		return dateToSerial(v.date)
	case KindDuration:
		return v.duration.Hours() / 24
	}
	return 0
}

// valueAsDate maps a value onto a calendar date-time, bridging numbers
// through their Excel serial interpretation.
func valueAsDate(v *CellValue) time.Time {
	switch v.kind {
	case KindDate:
		return v.date
	case KindNumber:
		return serialToDate(v.number)
	case KindDuration:
		return serialToDate(v.duration.Hours() / 24)
	}
	return time.Time{}
}

// valueAsDuration maps a value onto a signed time span, bridging numbers
// through fractional days.
func valueAsDuration(v *CellValue) time.Duration {
	switch v.kind {
	case KindDuration:
		return v.duration
	case KindNumber:
		return time.Duration(v.number * 24 * float64(time.Hour))
	case KindDate:
		return time.Duration(dateToSerial(v.date) * 24 * float64(time.Hour))
	}
	return 0
}

// renderGeneralValue renders a value under the General format: shortest
// faithful decimal for numbers, default layouts for dates and durations.
func renderGeneralValue(v *CellValue, loc *FormatLocale) string {
	switch v.kind {
	case KindNumber:
		return renderGeneralNumber(v.number, loc)
	case KindDate:
		return v.date.Format("2006-01-02 15:04:05")
	case KindDuration:
		return formatClockDuration(v.duration)
	default:
		return v.String()
	}
}

func renderGeneralNumber(v float64, loc *FormatLocale) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "#NUM!"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e11 || abs < 1e-9) {
		out := strconv.FormatFloat(v, 'E', 5, 64)
		return strings.Replace(out, ".", loc.DecimalSep, 1)
	}
	out := strconv.FormatFloat(v, 'f', -1, 64)
	return strings.Replace(out, ".", loc.DecimalSep, 1)
}

// renderNumberSection applies a numeric mask: a trailing run of commas after
// the last digit placeholder scales the value down by 1000 per comma, the
// placeholders after the first "." fix the decimal count, any other comma in
// the mask enables thousands grouping, and zeros in the integer mask set the
// minimum digit count. The formatted number replaces the mask span; text
// outside the mask passes through.
func renderNumberSection(sec *formatSection, v float64, loc *FormatLocale) string {
	rs := []rune(sec.code)
	first, last := -1, -1
	for i, r := range rs {
		if isDigitPlaceholder(r) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		// No digit placeholders: a purely literal clause swallows the
		// number entirely.
		return sec.code
	}

	scale := 1.0
	maskEnd := last
	for maskEnd+1 < len(rs) && rs[maskEnd+1] == ',' {
		scale *= 1000
		maskEnd++
	}

	dot := -1
	for i := first; i <= last; i++ {
		if rs[i] == '.' {
			dot = i
			break
		}
	}
	decimals := 0
	if dot >= 0 {
		for i := dot + 1; i <= last; i++ {
			if isDigitPlaceholder(rs[i]) {
				decimals++
			}
		}
	}

	grouping := false
	intEnd := last
	if dot >= 0 {
		intEnd = dot - 1
	}
	for i := first; i <= intEnd; i++ {
		if rs[i] == ',' {
			grouping = true
		}
	}
	minInt := 0
	for i := first; i <= intEnd; i++ {
		if rs[i] == '0' {
			minInt++
		}
	}

	body := formatDecimal(v/scale, decimals, minInt, grouping, loc)
	return string(rs[:first]) + body + string(rs[maskEnd+1:])
}

// formatDecimal rounds to the given decimal count and applies locale
// separators. The sign of v is preserved.
func formatDecimal(v float64, decimals, minInt int, grouping bool, loc *FormatLocale) string {
	neg := v < 0 || (v == 0 && math.Signbit(v))
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")
	for len(intPart) < minInt {
		intPart = "0" + intPart
	}
	if grouping {
		intPart = groupDigits(intPart, loc.ThousandsSep)
	}
	out := intPart
	if decimals > 0 {
		out += loc.DecimalSep + fracPart
	}
	if neg && strings.Trim(out, "0"+loc.DecimalSep+loc.ThousandsSep) != "" {
		out = "-" + out
	}
	return out
}

// groupDigits inserts the thousands separator every three digits from the
// right.
func groupDigits(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// renderScientificSection normalizes the value to one leading digit with an
// exponent padded to at least two digits and an explicit sign. The case of
// the E marker comes from the code.
func renderScientificSection(sec *formatSection, v float64, loc *FormatLocale) string {
	eIdx := strings.IndexAny(sec.code, "Ee")
	if eIdx < 0 {
		return renderNumberSection(sec, v, loc)
	}
	mantissaPart := sec.code[:eIdx]
	marker := sec.code[eIdx : eIdx+1]

	decimals := 0
	if dot := strings.IndexByte(mantissaPart, '.'); dot >= 0 {
		for _, r := range mantissaPart[dot+1:] {
			if isDigitPlaceholder(r) {
				decimals++
			}
		}
	}

	exp := 0
	mant := 0.0
	if v != 0 {
		abs := math.Abs(v)
		exp = int(math.Floor(math.Log10(abs)))
		mant = v / math.Pow(10, float64(exp))
		// Rounding the mantissa can carry past 10 (9.99 -> 10.0).
		rounded, _ := strconv.ParseFloat(strconv.FormatFloat(math.Abs(mant), 'f', decimals, 64), 64)
		if rounded >= 10 {
			mant /= 10
			exp++
		}
	}

	mantStr := formatDecimal(mant, decimals, 1, false, loc)
	expStr := strconv.Itoa(exp)
	if exp < 0 {
		expStr = strconv.Itoa(-exp)
	}
	for len(expStr) < 2 {
		expStr = "0" + expStr
	}
	sign := "+"
	if exp < 0 {
		sign = "-"
	}

	// Preserve literal text around the numeric span.
	rs := []rune(sec.code)
	first := -1
	for i, r := range rs {
		if isDigitPlaceholder(r) {
			first = i
			break
		}
	}
	if first < 0 {
		first = 0
	}
	lastExpDigit := eIdx
	for i := eIdx + 1; i < len(sec.code); i++ {
		c := sec.code[i]
		if c == '+' || c == '-' || isDigitPlaceholder(rune(c)) {
			lastExpDigit = i
			continue
		}
		break
	}
	prefix := string(rs[:first])
	suffix := sec.code[lastExpDigit+1:]
	return prefix + mantStr + marker + sign + expStr + suffix
}

const fractionTolerance = 1e-12

// renderFractionSection approximates the fractional part as num/den. The
// denominator spec right of "/" is either a literal integer (kept as given)
// or a placeholder count n giving a search over denominators 1..10^n-1 for
// the closest fraction, ties broken by the smallest denominator; searched
// results are reduced by GCD.
func renderFractionSection(sec *formatSection, v float64) string {
	slash := strings.IndexByte(sec.code, '/')
	if slash < 0 {
		return renderNumberSection(sec, v, DefaultLocale())
	}
	denSpec := ""
	for _, r := range sec.code[slash+1:] {
		if isDigitPlaceholder(r) || (r >= '0' && r <= '9') {
			denSpec += string(r)
			continue
		}
		break
	}

	x := math.Abs(v)
	intPart := int64(math.Floor(x))
	frac := x - float64(intPart)

	var num, den int64
	if fixed, err := strconv.ParseInt(denSpec, 10, 64); err == nil && fixed > 0 {
		den = fixed
		num = int64(math.Round(frac * float64(den)))
	} else {
		maxDen := int64(math.Pow(10, float64(len(denSpec)))) - 1
		if maxDen < 1 {
			maxDen = 9
		}
		bestErr := math.Inf(1)
		for d := int64(1); d <= maxDen; d++ {
			n := int64(math.Round(frac * float64(d)))
			err := math.Abs(frac - float64(n)/float64(d))
			if err < bestErr-fractionTolerance {
				bestErr = err
				num, den = n, d
			}
			if bestErr < fractionTolerance {
				break
			}
		}
		if g := gcd(num, den); g > 1 {
			num /= g
			den /= g
		}
	}

	if num == den && den != 0 {
		intPart++
		num = 0
	}
	if num == 0 {
		return strconv.FormatInt(intPart, 10)
	}
	fracStr := strconv.FormatInt(num, 10) + "/" + strconv.FormatInt(den, 10)
	if intPart == 0 {
		return fracStr
	}
	return strconv.FormatInt(intPart, 10) + " " + fracStr
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

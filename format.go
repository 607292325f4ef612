package gridcore

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/nfp"
)

// FormatCategory disambiguates format codes that are otherwise identical,
// for example whether "h:mm:ss" means elapsed duration or time of day.
type FormatCategory int

// Format categories.
const (
	CategoryGeneral FormatCategory = iota
	CategoryNumber
	CategoryCurrency
	CategoryAccounting
	CategoryPercentage
	CategoryScientific
	CategoryFraction
	CategoryDate
	CategoryTime
	CategoryDateTime
	CategoryDuration
	CategoryText
)

// CellFormat pairs a display category with an Excel-style format code.
type CellFormat struct {
	Category FormatCategory
	Code     string
}

// Named format presets.
var (
	FormatGeneral           = CellFormat{CategoryGeneral, "General"}
	FormatInteger           = CellFormat{CategoryNumber, "0"}
	FormatNumber            = CellFormat{CategoryNumber, "0.00"}
	FormatThousands         = CellFormat{CategoryNumber, "#,##0.00"}
	FormatCurrency          = CellFormat{CategoryCurrency, "$#,##0.00"}
	FormatCurrencyRed       = CellFormat{CategoryCurrency, "$#,##0.00;[Red]-$#,##0.00"}
	FormatAccounting        = CellFormat{CategoryAccounting, `_($#,##0.00_);"("$#,##0.00")"`}
	FormatPercent           = CellFormat{CategoryPercentage, "0%"}
	FormatPercentDecimal    = CellFormat{CategoryPercentage, "0.00%"}
	FormatScientific        = CellFormat{CategoryScientific, "0.00E+00"}
	FormatFraction          = CellFormat{CategoryFraction, "# ?/?"}
	FormatFractionTwoDigits = CellFormat{CategoryFraction, "# ??/??"}
	FormatDateISO           = CellFormat{CategoryDate, "yyyy-mm-dd"}
	FormatDateShort         = CellFormat{CategoryDate, "m/d/yyyy"}
	FormatDateLong          = CellFormat{CategoryDate, "dddd, mmmm d, yyyy"}
	FormatTime12            = CellFormat{CategoryTime, "h:mm:ss AM/PM"}
	FormatTime24            = CellFormat{CategoryTime, "HH:mm:ss"}
	FormatDateTimeISO       = CellFormat{CategoryDateTime, "yyyy-mm-dd HH:mm:ss"}
	FormatDuration          = CellFormat{CategoryDuration, "[h]:mm:ss"}
	FormatDurationMinutes   = CellFormat{CategoryDuration, "[m]:ss"}
	FormatDurationSeconds   = CellFormat{CategoryDuration, "[s]"}
	FormatText              = CellFormat{CategoryText, "@"}
)

// CellFormatFromCode builds a CellFormat from a raw format code, inferring
// the category from the code's token types.
func CellFormatFromCode(code string) CellFormat {
	return CellFormat{Category: DetectFormatCategory(code), Code: code}
}

// DetectFormatCategory classifies a raw format code by tokenizing it. The
// first section that carries a distinctive token type decides. Unrecognized
// or empty codes are CategoryGeneral.
func DetectFormatCategory(code string) FormatCategory {
	if code == "" || strings.EqualFold(code, "General") {
		return CategoryGeneral
	}
	p := nfp.NumberFormatParser()
	var hasDatePart, hasTimePart, hasAmbiguousM, hasNumber, hasText, hasCurrency, hasPercent bool
	for _, section := range p.Parse(code) {
		for _, token := range section.Items {
			switch token.TType {
			case nfp.TokenTypeElapsedDateTimes:
				return CategoryDuration
			case nfp.TokenTypeExponential:
				return CategoryScientific
			case nfp.TokenTypeFraction:
				return CategoryFraction
			case nfp.TokenTypePercent:
				hasPercent = true
			case nfp.TokenTypeCurrencyLanguage:
				hasCurrency = true
			case nfp.TokenTypeDateTimes:
				switch {
				case strings.ContainsAny(token.TValue, "ydYD"):
					hasDatePart = true
				case strings.ContainsAny(token.TValue, "hHsS"):
					hasTimePart = true
				case strings.ContainsAny(token.TValue, "mM"):
					// A bare run of m's is a minute when hour or second
					// tokens appear in the code, a month otherwise.
					hasAmbiguousM = true
				}
			case nfp.TokenTypeZeroPlaceHolder, nfp.TokenTypeHashPlaceHolder,
				nfp.TokenTypeDigitalPlaceHolder, nfp.TokenTypeDecimalPoint,
				nfp.TokenTypeThousandsSeparator:
				hasNumber = true
			case nfp.TokenTypeTextPlaceHolder:
				hasText = true
			}
		}
	}
	if hasAmbiguousM && !hasTimePart {
		hasDatePart = true
	}
	switch {
	case hasDatePart && hasTimePart:
		return CategoryDateTime
	case hasDatePart:
		return CategoryDate
	case hasTimePart:
		return CategoryTime
	case hasPercent:
		return CategoryPercentage
	case hasCurrency:
		return CategoryCurrency
	case hasNumber:
		return CategoryNumber
	case hasText:
		return CategoryText
	}
	return CategoryGeneral
}

// Private-use placeholder bases. Extracted literals and repeat-fill markers
// are swapped for these runes so numeric and date substitution can never
// corrupt them; they are restored verbatim as the last step.
const (
	literalRuneBase = 0xE000
	fillRuneBase    = 0xE800
)

const defaultCharWidth = 7.0

// sectionCondition is a bracket comparison such as [>=100].
type sectionCondition struct {
	op      string
	operand float64
}

func (c *sectionCondition) matches(v float64) bool {
	switch c.op {
	case ">":
		return v > c.operand
	case "<":
		return v < c.operand
	case ">=":
		return v >= c.operand
	case "<=":
		return v <= c.operand
	case "=":
		return v == c.operand
	case "<>":
		return v != c.operand
	}
	return false
}

// formatSection is one compiled ";" clause of a format code.
type formatSection struct {
	// code is the clause with bracket metadata stripped and literals
	// replaced by private-use placeholder runes.
	code string
	// raw is the clause before literal extraction, after bracket strip.
	raw        string
	literals   []string
	fills      []rune
	color      string
	cond       *sectionCondition
	currency   string
	localeCode string
	hasText    bool
}

type compiledFormat struct {
	sections []*formatSection
}

var conditionPattern = regexp.MustCompile(`^(<=|>=|<>|=|<|>)\s*(-?\d+(?:\.\d+)?)$`)

// namedSectionColors are the eight color names accepted by [Name] brackets.
var namedSectionColors = map[string]string{
	"black":   "#000000",
	"blue":    "#0000FF",
	"cyan":    "#00FFFF",
	"green":   "#008000",
	"magenta": "#FF00FF",
	"red":     "#FF0000",
	"white":   "#FFFFFF",
	"yellow":  "#FFFF00",
}

// indexedColorPalette is the fixed 56-entry palette addressed by [ColorN].
var indexedColorPalette = [56]string{
	"#000000", "#FFFFFF", "#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#FF00FF", "#00FFFF",
	"#800000", "#008000", "#000080", "#808000", "#800080", "#008080", "#C0C0C0", "#808080",
	"#9999FF", "#993366", "#FFFFCC", "#CCFFFF", "#660066", "#FF8080", "#0066CC", "#CCCCFF",
	"#000080", "#FF00FF", "#FFFF00", "#00FFFF", "#800080", "#800000", "#008080", "#0000FF",
	"#00CCFF", "#CCFFFF", "#CCFFCC", "#FFFF99", "#99CCFF", "#FF99CC", "#CC99FF", "#FFCC99",
	"#3366FF", "#33CCCC", "#99CC00", "#FFCC00", "#FF9900", "#FF6600", "#666699", "#969696",
	"#003366", "#339966", "#003300", "#333300", "#993300", "#993366", "#333399", "#333333",
}

// splitSections splits a format code on ";" outside quoted literals and
// backslash escapes.
func splitSections(code string) []string {
	var out []string
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '"':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '\\' && !inQuote && i+1 < len(code):
			b.WriteByte(ch)
			i++
			b.WriteByte(code[i])
		case ch == ';' && !inQuote:
			out = append(out, b.String())
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	return append(out, b.String())
}

// compileFormat parses a format code into its sections. It never fails:
// anything that does not match an expected shape stays in the section as
// literal text.
func compileFormat(code string) *compiledFormat {
	cf := &compiledFormat{}
	for _, clause := range splitSections(code) {
		sec := &formatSection{}
		sec.raw = sec.stripBrackets(clause)
		sec.extractLiterals(sec.raw)
		sec.hasText = strings.ContainsRune(sec.code, '@')
		cf.sections = append(cf.sections, sec)
	}
	return cf
}

// stripBrackets consumes recognized leading [...] tags and records their
// metadata. Duration brackets and unrecognized tags are left in place for
// later stages.
func (sec *formatSection) stripBrackets(clause string) string {
	for strings.HasPrefix(clause, "[") {
		end := strings.IndexByte(clause, ']')
		if end < 0 {
			break
		}
		if !sec.classifyBracket(clause[1:end]) {
			break
		}
		clause = clause[end+1:]
	}
	return clause
}

func (sec *formatSection) classifyBracket(content string) bool {
	lower := strings.ToLower(content)
	if hex, ok := namedSectionColors[lower]; ok {
		sec.color = hex
		return true
	}
	if rest, ok := strings.CutPrefix(lower, "color"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n >= 1 && n <= len(indexedColorPalette) {
			sec.color = indexedColorPalette[n-1]
			return true
		}
		return false
	}
	if m := conditionPattern.FindStringSubmatch(content); m != nil {
		operand, _ := strconv.ParseFloat(m[2], 64)
		sec.cond = &sectionCondition{op: m[1], operand: operand}
		return true
	}
	if strings.HasPrefix(content, "$") {
		body := content[1:]
		if i := strings.LastIndexByte(body, '-'); i >= 0 {
			sec.currency = body[:i]
			sec.localeCode = body[i+1:]
		} else {
			sec.currency = body
		}
		return true
	}
	// [h], [m], [s] and anything unrecognized stay in the clause.
	return false
}

// extractLiterals replaces quoted strings, backslash escapes, fixed-width
// spaces and repeat-fill markers with private placeholder runes.
func (sec *formatSection) extractLiterals(raw string) {
	var b strings.Builder
	rs := []rune(raw)
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '"':
			j := i + 1
			for j < len(rs) && rs[j] != '"' {
				j++
			}
			sec.literals = append(sec.literals, string(rs[i+1:j]))
			b.WriteRune(rune(literalRuneBase + len(sec.literals) - 1))
			i = j
		case '\\':
			if i+1 < len(rs) {
				sec.literals = append(sec.literals, string(rs[i+1]))
				b.WriteRune(rune(literalRuneBase + len(sec.literals) - 1))
				i++
			}
		case '_':
			// A fixed-width space sized to the following character;
			// approximated by a plain space.
			if i+1 < len(rs) {
				sec.literals = append(sec.literals, " ")
				b.WriteRune(rune(literalRuneBase + len(sec.literals) - 1))
				i++
			}
		case '*':
			if i+1 < len(rs) {
				sec.fills = append(sec.fills, rs[i+1])
				b.WriteRune(rune(fillRuneBase + len(sec.fills) - 1))
				i++
			}
		default:
			b.WriteRune(rs[i])
		}
	}
	sec.code = b.String()
}

// encodesSign reports whether the clause itself renders the sign, so the
// engine must not prepend a minus for negative values.
func (sec *formatSection) encodesSign() bool {
	if strings.ContainsAny(sec.code, "-(") {
		return true
	}
	for _, lit := range sec.literals {
		if strings.ContainsAny(lit, "-(") {
			return true
		}
	}
	return false
}

// restore swaps placeholder runes back for their literal text and expands
// repeat-fill markers against the available width.
func (sec *formatSection) restore(rendered string, opts *FormatOptions) string {
	for i, lit := range sec.literals {
		rendered = strings.ReplaceAll(rendered, string(rune(literalRuneBase+i)), lit)
	}
	if len(sec.fills) == 0 {
		return rendered
	}
	plain := rendered
	for i := range sec.fills {
		plain = strings.ReplaceAll(plain, string(rune(fillRuneBase+i)), "")
	}
	hasHint := opts != nil && opts.AvailableWidth > 0
	pad := 0
	if hasHint {
		cw := opts.CharWidth
		if cw <= 0 {
			cw = defaultCharWidth
		}
		pad = int(opts.AvailableWidth/cw) - utf8.RuneCountInString(plain)
		if pad < 0 {
			pad = 0
		}
	}
	for i, fill := range sec.fills {
		repeat := ""
		if i == 0 {
			if hasHint {
				repeat = strings.Repeat(string(fill), pad)
			} else {
				// Without a width hint the fill degrades to a single
				// space.
				repeat = " "
			}
		}
		rendered = strings.ReplaceAll(rendered, string(rune(fillRuneBase+i)), repeat)
	}
	return rendered
}

// sectionFor selects the clause for a numeric value. Bracket conditions are
// evaluated in order and override sign-based selection; the first
// unconditional clause is the fallback. The second result reports whether
// the engine must prepend a minus sign itself.
func (cf *compiledFormat) sectionFor(v float64) (*formatSection, bool) {
	conditional := false
	for _, sec := range cf.sections {
		if sec.cond != nil {
			conditional = true
			break
		}
	}
	if conditional {
		for _, sec := range cf.sections {
			if sec.cond != nil && sec.cond.matches(v) {
				return sec, false
			}
		}
		for _, sec := range cf.sections {
			if sec.cond == nil {
				return sec, v < 0 && !sec.encodesSign()
			}
		}
		return nil, false
	}
	switch len(cf.sections) {
	case 1:
		sec := cf.sections[0]
		return sec, v < 0 && !sec.encodesSign()
	case 2:
		if v < 0 {
			return cf.sections[1], false
		}
		return cf.sections[0], false
	default:
		switch {
		case v > 0:
			return cf.sections[0], false
		case v < 0:
			return cf.sections[1], false
		default:
			return cf.sections[2], false
		}
	}
}

// textSection selects the clause used for text values: the fourth clause of
// a multi-section code, or the only clause when it carries a text
// placeholder or the whole format is a text format.
func (cf *compiledFormat) textSection(category FormatCategory) *formatSection {
	if len(cf.sections) >= 4 {
		return cf.sections[3]
	}
	if len(cf.sections) > 0 && (category == CategoryText || cf.sections[0].hasText) {
		return cf.sections[0]
	}
	return nil
}

// FormatOptions carries the optional rendering context for FormatValue.
type FormatOptions struct {
	// Locale supplies separators and month/day names; nil means en-US.
	Locale *FormatLocale
	// AvailableWidth is the horizontal space hint consumed by *X
	// repeat-fill characters. Zero means no hint.
	AvailableWidth float64
	// CharWidth is the estimated width of one character; zero selects a
	// built-in estimate.
	CharWidth float64
}

// FormatValue renders a cell value to display text under the given format.
// It returns the text plus an optional color hint ("#RRGGBB", empty when the
// selected section carries no color). The engine never fails: inputs that do
// not match an expected shape degrade to the most literal reasonable
// rendering.
func FormatValue(v *CellValue, format CellFormat, opts *FormatOptions) (string, string) {
	if v == nil {
		return "", ""
	}
	loc := DefaultLocale()
	if opts != nil && opts.Locale != nil {
		loc = opts.Locale
	}
	category := format.Category
	if category == CategoryGeneral && format.Code != "" && !strings.EqualFold(format.Code, "General") {
		category = DetectFormatCategory(format.Code)
	}
	if format.Code == "" || strings.EqualFold(format.Code, "General") {
		return renderGeneralValue(v, loc), ""
	}

	switch v.kind {
	case KindBool, KindFormula, KindError:
		// Opaque and logical payloads render literally under every format.
		return v.String(), ""
	case KindText:
		cf := compiledFormatFor(format.Code)
		sec := cf.textSection(category)
		if sec == nil {
			return v.text, ""
		}
		out := strings.ReplaceAll(sec.code, "@", v.text)
		return sec.restore(out, opts), sec.color
	}

	cf := compiledFormatFor(format.Code)
	serial := valueAsSerial(v)
	if category == CategoryPercentage {
		serial *= 100
	}
	sec, addMinus := cf.sectionFor(serial)
	if sec == nil {
		return renderGeneralValue(v, loc), ""
	}
	// Sign-selected negative clauses and single-clause negatives format the
	// magnitude; clauses matched by an explicit condition format the value
	// as given.
	if serial < 0 && sec.cond == nil {
		serial = -serial
	}

	secLoc := loc
	if sec.localeCode != "" {
		secLoc = LocaleForCode(sec.localeCode)
	}

	var out string
	switch category {
	case CategoryScientific:
		out = renderScientificSection(sec, serial, secLoc)
	case CategoryFraction:
		out = renderFractionSection(sec, serial)
	case CategoryDuration:
		out = renderDurationSection(sec, valueAsDuration(v))
		addMinus = valueAsDuration(v) < 0
	case CategoryDate, CategoryTime, CategoryDateTime:
		out = renderDateTimeSection(sec, valueAsDate(v), secLoc)
		addMinus = false
	default:
		// Number, currency, accounting, percentage and anything that
		// degenerated to a numeric clause.
		out = renderNumberSection(sec, serial, secLoc)
	}
	out = sec.restore(out, opts)
	if sec.currency != "" {
		out = overrideCurrency(out, sec.currency, secLoc)
	}
	if addMinus {
		out = "-" + out
	}
	return out, sec.color
}

// overrideCurrency swaps the first currency glyph in the rendered text for
// the [$...] override, or prefixes the override when the pattern had none.
func overrideCurrency(text, symbol string, loc *FormatLocale) string {
	candidates := []string{loc.CurrencySymbol, "$", "€", "£", "¥", "R$", "kr", "₹"}
	for _, glyph := range candidates {
		if glyph == "" {
			continue
		}
		if i := strings.Index(text, glyph); i >= 0 {
			return text[:i] + symbol + text[i+len(glyph):]
		}
	}
	return symbol + text
}

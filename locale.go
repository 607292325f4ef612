package gridcore

import (
	"strings"

	"golang.org/x/text/language"
)

// FormatLocale holds the static tables the format engine needs to render
// month and day names, separators and the currency symbol for one locale.
type FormatLocale struct {
	// Code is the 4-hex-digit Windows LCID used by [$-code] brackets.
	Code string
	// Tag is the BCP-47 tag of the locale.
	Tag            language.Tag
	MonthNames     [12]string
	MonthAbbrevs   [12]string
	DayNames       [7]string // Sunday first
	DayAbbrevs     [7]string
	DecimalSep     string
	ThousandsSep   string
	CurrencySymbol string
	// DayFirst is the d/m/y convention hint exposed to injected date
	// parsers; the format engine itself renders whatever the code says.
	DayFirst bool
}

var enUS = &FormatLocale{
	Code: "0409",
	Tag:  language.AmericanEnglish,
	MonthNames: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	MonthAbbrevs: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	DayNames:       [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	DayAbbrevs:     [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	DecimalSep:     ".",
	ThousandsSep:   ",",
	CurrencySymbol: "$",
}

var builtinLocales = map[string]*FormatLocale{
	"0409": enUS,
	"0809": {
		Code:           "0809",
		Tag:            language.BritishEnglish,
		MonthNames:     enUS.MonthNames,
		MonthAbbrevs:   enUS.MonthAbbrevs,
		DayNames:       enUS.DayNames,
		DayAbbrevs:     enUS.DayAbbrevs,
		DecimalSep:     ".",
		ThousandsSep:   ",",
		CurrencySymbol: "£",
		DayFirst:       true,
	},
	"040c": {
		Code: "040C",
		Tag:  language.French,
		MonthNames: [12]string{"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		MonthAbbrevs: [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin",
			"juil.", "août", "sept.", "oct.", "nov.", "déc."},
		DayNames:       [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		DayAbbrevs:     [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
		DecimalSep:     ",",
		ThousandsSep:   " ",
		CurrencySymbol: "€",
		DayFirst:       true,
	},
	"0407": {
		Code: "0407",
		Tag:  language.German,
		MonthNames: [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember"},
		MonthAbbrevs: [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun",
			"Jul", "Aug", "Sep", "Okt", "Nov", "Dez"},
		DayNames:       [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		DayAbbrevs:     [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
		DecimalSep:     ",",
		ThousandsSep:   ".",
		CurrencySymbol: "€",
		DayFirst:       true,
	},
	"0c0a": {
		Code: "0C0A",
		Tag:  language.EuropeanSpanish,
		MonthNames: [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		MonthAbbrevs: [12]string{"ene", "feb", "mar", "abr", "may", "jun",
			"jul", "ago", "sep", "oct", "nov", "dic"},
		DayNames:       [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		DayAbbrevs:     [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
		DecimalSep:     ",",
		ThousandsSep:   ".",
		CurrencySymbol: "€",
		DayFirst:       true,
	},
	"0410": {
		Code: "0410",
		Tag:  language.Italian,
		MonthNames: [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
			"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
		MonthAbbrevs: [12]string{"gen", "feb", "mar", "apr", "mag", "giu",
			"lug", "ago", "set", "ott", "nov", "dic"},
		DayNames:       [7]string{"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"},
		DayAbbrevs:     [7]string{"dom", "lun", "mar", "mer", "gio", "ven", "sab"},
		DecimalSep:     ",",
		ThousandsSep:   ".",
		CurrencySymbol: "€",
		DayFirst:       true,
	},
	"0416": {
		Code: "0416",
		Tag:  language.BrazilianPortuguese,
		MonthNames: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		MonthAbbrevs: [12]string{"jan", "fev", "mar", "abr", "mai", "jun",
			"jul", "ago", "set", "out", "nov", "dez"},
		DayNames:       [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
		DayAbbrevs:     [7]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"},
		DecimalSep:     ",",
		ThousandsSep:   ".",
		CurrencySymbol: "R$",
		DayFirst:       true,
	},
	"0411": {
		Code: "0411",
		Tag:  language.Japanese,
		MonthNames: [12]string{"1月", "2月", "3月", "4月", "5月", "6月",
			"7月", "8月", "9月", "10月", "11月", "12月"},
		MonthAbbrevs: [12]string{"1月", "2月", "3月", "4月", "5月", "6月",
			"7月", "8月", "9月", "10月", "11月", "12月"},
		DayNames:       [7]string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"},
		DayAbbrevs:     [7]string{"日", "月", "火", "水", "木", "金", "土"},
		DecimalSep:     ".",
		ThousandsSep:   ",",
		CurrencySymbol: "¥",
	},
	"0804": {
		Code: "0804",
		Tag:  language.SimplifiedChinese,
		MonthNames: [12]string{"一月", "二月", "三月", "四月", "五月", "六月",
			"七月", "八月", "九月", "十月", "十一月", "十二月"},
		MonthAbbrevs: [12]string{"1月", "2月", "3月", "4月", "5月", "6月",
			"7月", "8月", "9月", "10月", "11月", "12月"},
		DayNames:       [7]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"},
		DayAbbrevs:     [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"},
		DecimalSep:     ".",
		ThousandsSep:   ",",
		CurrencySymbol: "¥",
	},
	"0413": {
		Code: "0413",
		Tag:  language.Dutch,
		MonthNames: [12]string{"januari", "februari", "maart", "april", "mei", "juni",
			"juli", "augustus", "september", "oktober", "november", "december"},
		MonthAbbrevs: [12]string{"jan", "feb", "mrt", "apr", "mei", "jun",
			"jul", "aug", "sep", "okt", "nov", "dec"},
		DayNames:       [7]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"},
		DayAbbrevs:     [7]string{"zo", "ma", "di", "wo", "do", "vr", "za"},
		DecimalSep:     ",",
		ThousandsSep:   ".",
		CurrencySymbol: "€",
		DayFirst:       true,
	},
	"0419": {
		Code: "0419",
		Tag:  language.Russian,
		MonthNames: [12]string{"января", "февраля", "марта", "апреля", "мая", "июня",
			"июля", "августа", "сентября", "октября", "ноября", "декабря"},
		MonthAbbrevs: [12]string{"янв", "фев", "мар", "апр", "май", "июн",
			"июл", "авг", "сен", "окт", "ноя", "дек"},
		DayNames:       [7]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"},
		DayAbbrevs:     [7]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"},
		DecimalSep:     ",",
		ThousandsSep:   " ",
		CurrencySymbol: "₽",
		DayFirst:       true,
	},
	"041d": {
		Code: "041D",
		Tag:  language.Swedish,
		MonthNames: [12]string{"januari", "februari", "mars", "april", "maj", "juni",
			"juli", "augusti", "september", "oktober", "november", "december"},
		MonthAbbrevs: [12]string{"jan", "feb", "mar", "apr", "maj", "jun",
			"jul", "aug", "sep", "okt", "nov", "dec"},
		DayNames:       [7]string{"söndag", "måndag", "tisdag", "onsdag", "torsdag", "fredag", "lördag"},
		DayAbbrevs:     [7]string{"sön", "mån", "tis", "ons", "tor", "fre", "lör"},
		DecimalSep:     ",",
		ThousandsSep:   " ",
		CurrencySymbol: "kr",
		DayFirst:       true,
	},
}

// DefaultLocale returns the built-in US English locale used whenever no
// locale is supplied or a lookup fails.
func DefaultLocale() *FormatLocale { return enUS }

// LocaleForCode resolves a Windows LCID hex code such as "0409" (leading
// zeros optional, case-insensitive) to a built-in locale. Unknown codes fall
// back to the default locale.
func LocaleForCode(code string) *FormatLocale {
	code = strings.ToLower(strings.TrimSpace(code))
	for len(code) < 4 {
		code = "0" + code
	}
	if loc, ok := builtinLocales[code]; ok {
		return loc
	}
	return enUS
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(builtinLocales)+1)
	tags = append(tags, enUS.Tag)
	for code, loc := range builtinLocales {
		if code != "0409" {
			tags = append(tags, loc.Tag)
		}
	}
	return language.NewMatcher(tags)
}()

// MatchLocale resolves an arbitrary BCP-47 tag such as "fr" or "de-AT" to
// the closest built-in locale. Unparseable or unmatched tags fall back to
// the default locale.
func MatchLocale(tag string) *FormatLocale {
	parsed, err := language.Parse(tag)
	if err != nil {
		return enUS
	}
	matched, _, conf := localeMatcher.Match(parsed)
	if conf == language.No {
		return enUS
	}
	for _, loc := range builtinLocales {
		if loc.Tag == matched {
			return loc
		}
	}
	// The matcher can return a tag derived from, rather than equal to, a
	// registered tag. Fall back to base-language comparison.
	base, _ := matched.Base()
	for _, loc := range builtinLocales {
		if b, _ := loc.Tag.Base(); b == base {
			return loc
		}
	}
	return enUS
}

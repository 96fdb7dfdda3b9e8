package i18n

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// LocaleFormat describes how a locale renders numbers, currency, and
// dates. The predefined constructors cover the common cases; build a
// custom value for anything else.
type LocaleFormat struct {
	DecimalSep     string
	ThousandsSep   string
	CurrencySymbol string
	DateLayout     string
	TimeLayout     string
	DateTimeLayout string
	CurrencyAfter  bool
}

// FormatEnUS returns US English conventions: 1,234.56 and $99.99.
func FormatEnUS() *LocaleFormat {
	return &LocaleFormat{
		DecimalSep:     ".",
		ThousandsSep:   ",",
		CurrencySymbol: "$",
		DateLayout:     "01/02/2006",
		TimeLayout:     "3:04 PM",
		DateTimeLayout: "01/02/2006 3:04 PM",
	}
}

// FormatEnGB returns British conventions: 1,234.56 and £99.99.
func FormatEnGB() *LocaleFormat {
	return &LocaleFormat{
		DecimalSep:     ".",
		ThousandsSep:   ",",
		CurrencySymbol: "£",
		DateLayout:     "02/01/2006",
		TimeLayout:     "15:04",
		DateTimeLayout: "02/01/2006 15:04",
	}
}

// FormatDeDE returns German conventions: 1.234,56 and 99,99 €.
func FormatDeDE() *LocaleFormat {
	return &LocaleFormat{
		DecimalSep:     ",",
		ThousandsSep:   ".",
		CurrencySymbol: "€",
		CurrencyAfter:  true,
		DateLayout:     "02.01.2006",
		TimeLayout:     "15:04",
		DateTimeLayout: "02.01.2006 15:04",
	}
}

// FormatNumber renders n with the locale's separators, keeping up to
// two fractional digits and dropping a trailing ".00".
func (t *Translator) FormatNumber(n float64) string {
	return t.format.number(n, false)
}

// FormatCurrency renders an amount with the locale's currency symbol
// and always two fractional digits.
func (t *Translator) FormatCurrency(amount float64) string {
	value := t.format.number(amount, true)
	if t.format.CurrencyAfter {
		return value + " " + t.format.CurrencySymbol
	}
	return t.format.CurrencySymbol + value
}

// FormatPercent renders a ratio as a percentage: 0.5 becomes "50%".
func (t *Translator) FormatPercent(n float64) string {
	return t.format.number(n*100, false) + "%"
}

// FormatDate renders a date with the locale's date layout.
func (t *Translator) FormatDate(date time.Time) string {
	return date.Format(t.format.DateLayout)
}

// FormatTime renders a time of day with the locale's time layout.
func (t *Translator) FormatTime(tm time.Time) string {
	return tm.Format(t.format.TimeLayout)
}

// FormatDateTime renders a timestamp with the locale's combined layout.
func (t *Translator) FormatDateTime(dt time.Time) string {
	return dt.Format(t.format.DateTimeLayout)
}

func (f *LocaleFormat) number(n float64, forceFraction bool) string {
	neg := math.Signbit(n)
	s := strconv.FormatFloat(math.Abs(n), 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(f.ThousandsSep)
		}
		b.WriteRune(digit)
	}
	if forceFraction || frac != "00" {
		b.WriteString(f.DecimalSep)
		b.WriteString(frac)
	}
	return b.String()
}

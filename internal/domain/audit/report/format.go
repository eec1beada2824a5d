package report

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// NumberFormat renders money amounts without touching process-wide locale state.
type NumberFormat struct {
	Symbol    string // prefix, e.g. "R$"; empty for plain numbers
	Decimal   string
	Grouping  string // thousands separator; empty disables grouping
	Precision int32
}

var (
	// BrazilianReal renders amounts as "R$ 1.234,56" and "-R$ 50,00".
	BrazilianReal = NumberFormat{Symbol: "R$", Decimal: ",", Grouping: ".", Precision: 2}

	// Plain is the fallback when no locale format is available: "1234.56".
	Plain = NumberFormat{Decimal: ".", Precision: 2}
)

// Supported locales; the index into localeFormats matches the matcher order.
var (
	localeTags    = []language.Tag{language.BrazilianPortuguese}
	localeFormats = []NumberFormat{BrazilianReal}
	localeMatcher = language.NewMatcher(localeTags)
)

// ForLocale resolves a locale name such as "pt-BR" or "pt_BR.UTF-8" to a
// format. It reports false, returning Plain, when the locale is unknown.
func ForLocale(name string) (NumberFormat, bool) {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, "_", "-")
	if name == "" {
		return Plain, false
	}

	tag, err := language.Parse(name)
	if err != nil {
		return Plain, false
	}

	_, index, confidence := localeMatcher.Match(tag)
	if confidence < language.High {
		return Plain, false
	}
	return localeFormats[index], true
}

// Amount formats v rounded half away from zero to the format precision.
func (f NumberFormat) Amount(v float64) string {
	d := decimal.NewFromFloat(v).Round(f.Precision)
	negative := d.IsNegative()

	fixed := d.Abs().StringFixed(f.Precision)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	if f.Symbol != "" {
		b.WriteString(f.Symbol)
		b.WriteByte(' ')
	}
	b.WriteString(group(intPart, f.Grouping))
	if fracPart != "" {
		b.WriteString(f.Decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}

func group(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

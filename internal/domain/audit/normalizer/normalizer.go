// Package normalizer converts Brazilian Real currency text into numbers.
// Malformed cells degrade to zero instead of failing the audit.
package normalizer

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// CurrencyMarker is stripped from every cell before parsing.
const CurrencyMarker = "R$"

var (
	ErrEmptyAmount   = errors.New("empty amount")
	ErrInvalidAmount = errors.New("invalid amount format")
)

// Accepts an optional sign, digits with at most one decimal point and an
// optional exponent. Rejects inf, nan, hex and bare signs.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Parse converts currency text such as "R$ 1.234,56" or "R$ -50.25 (pago a menos)"
// into a float. It reports why the text could not be parsed.
//
// The separator rule is a heuristic: with both ',' and '.' present, '.' groups
// thousands and ',' is the decimal mark; with only ',' present it is always the
// decimal mark, so "1,234" yields 1.234 and never 1234.
func Parse(raw string) (float64, error) {
	// Drop annotations like " (pago a mais)"
	if idx := strings.IndexByte(raw, '('); idx >= 0 {
		raw = raw[:idx]
	}

	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, CurrencyMarker, ""))
	if cleaned == "" {
		return 0, ErrEmptyAmount
	}

	hasComma := strings.Contains(cleaned, ",")
	hasPeriod := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasPeriod:
		// Brazilian: 1.234,56 -> 1234.56
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma:
		// Brazilian without grouping: 1234,56 -> 1234.56
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	if !numberPattern.MatchString(cleaned) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	return val, nil
}

// Normalize is Parse with the audit fallback: anything unparsable counts as zero.
func Normalize(raw string) float64 {
	val, err := Parse(raw)
	if err != nil {
		return 0
	}
	return val
}

// NormalizeValue coerces loosely typed cell content before normalizing it.
// nil and nil pointers yield zero; numeric kinds pass through unchanged.
func NormalizeValue(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case string:
		return Normalize(t)
	case *string:
		if t == nil {
			return 0
		}
		return Normalize(*t)
	case fmt.Stringer:
		if isNilPointer(v) {
			return 0
		}
		return Normalize(t.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return 0
		}
		return NormalizeValue(rv.Elem().Interface())
	}

	return Normalize(fmt.Sprint(v))
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

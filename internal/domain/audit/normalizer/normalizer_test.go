package normalizer

import (
	"errors"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"R$ 1.234,56", 1234.56},
		{"R$ 0,00", 0.0},
		{"R$ 199.99", 199.99},
		{"R$ -50.25 (pago a menos)", -50.25},
		{"R$ -50,00", -50.0},
		{"R$ 100,00 (pago a mais)", 100.0},
		{"R$ 1.000.000,00", 1000000.0},
		{"1234,56", 1234.56},
		{"  R$   12,99  ", 12.99},
		{"R$12,99", 12.99},
		{"+7,50", 7.5},
		{"R$ .5", 0.5},
		{"1,234", 1.234}, // comma alone is always the decimal mark
		{"", 0.0},
		{"texto inválido", 0.0},
		{"R$", 0.0},
		{"-", 0.0},
		{"R$ - (sem valor)", 0.0},
		{"(estornado)", 0.0},
		{"inf", 0.0},
		{"NaN", 0.0},
		{"0x10", 0.0},
		{"1e999", 0.0},
		{"R$ 1 234,56", 0.0},
	}

	for _, tc := range tests {
		got := Normalize(tc.input)
		if got != tc.expected {
			t.Errorf("Normalize(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"", ErrEmptyAmount},
		{"   ", ErrEmptyAmount},
		{"R$ ", ErrEmptyAmount},
		{"(pago a mais)", ErrEmptyAmount},
		{"abc", ErrInvalidAmount},
		{"R$ -", ErrInvalidAmount},
		{"1.2.3", ErrInvalidAmount},
		{"1,2,3", ErrInvalidAmount},
	}

	for _, tc := range tests {
		_, err := Parse(tc.input)
		if !errors.Is(err, tc.want) {
			t.Errorf("Parse(%q) error = %v, want %v", tc.input, err, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"R$ 1.234,56", "R$ -50.25 (pago a menos)", "lixo", ""}
	for _, in := range inputs {
		first := Normalize(in)
		second := Normalize(in)
		if first != second {
			t.Errorf("Normalize(%q) not stable: %v then %v", in, first, second)
		}
	}
}

type label string

func (l label) String() string { return string(l) }

func TestNormalizeValue(t *testing.T) {
	text := "R$ 10,50"
	var nilText *string
	var nilLabel *label

	tests := []struct {
		name     string
		input    any
		expected float64
	}{
		{"nil", nil, 0},
		{"string", "R$ 1.234,56", 1234.56},
		{"string pointer", &text, 10.5},
		{"nil string pointer", nilText, 0},
		{"int", 42, 42},
		{"int64", int64(-7), -7},
		{"uint8", uint8(3), 3},
		{"float64", 199.99, 199.99},
		{"NaN", math.NaN(), 0},
		{"infinity", math.Inf(-1), 0},
		{"stringer", label("R$ -5,00"), -5},
		{"nil stringer", nilLabel, 0},
		{"bool", true, 0},
	}

	for _, tc := range tests {
		got := NormalizeValue(tc.input)
		if got != tc.expected {
			t.Errorf("NormalizeValue(%s) = %v, want %v", tc.name, got, tc.expected)
		}
	}
}

package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEuroInputMask(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"25", "25"},
		{"25,5", "25,5"},
		{"25,555", "25,55"},
		{"€ 1.234,56", "1234,56"},
		{"1,2,3", "1,23"},
		{",,", ","},
		{"abc", ""},
		{"12a,b3", "12,3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EuroInputMask(tt.raw), "EuroInputMask(%q)", tt.raw)
	}
}

func TestEuroInputMask_Idempotent(t *testing.T) {
	inputs := []string{"", "1", "1,", ",5", "12,345", "1.234,5", "€ 9,99,9", "x,y,z", "100,00", "-25,50", ",,,1,2,3"}
	for _, s := range inputs {
		once := EuroInputMask(s)
		assert.Equal(t, once, EuroInputMask(once), "mask not idempotent for %q", s)
		assert.LessOrEqual(t, countRune(once, ','), 1)
	}
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}

func TestParseEuroInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"25,50", "25.5"},
		{"", "0"},
		{"abc", "0"},
		{"1.234,56", "1234.56"},
		{"0,5", "0.5"},
		{",5", "0.5"},
		{"7,", "7"},
		{"-25,50", "25.5"},
		{",", "0"},
		{"3,999", "3.99"},
	}
	for _, tt := range tests {
		got := ParseEuroInput(tt.in)
		assert.True(t, dec(tt.want).Equal(got), "ParseEuroInput(%q) = %s, want %s", tt.in, got, tt.want)
	}
	assert.InDelta(t, 25.5, ParseEuroInputFloat("25,50"), 0.0001)
}

func TestMaskParseFormatStable(t *testing.T) {
	for _, s := range []string{"1234,5", "0,99", "12", "1.000.000,01"} {
		v := ParseEuroInput(EuroInputMask(s))
		again := ParseEuroInput(EuroInputMask(FormatAmountBE(v)))
		assert.True(t, v.Equal(again), "unstable for %q: %s vs %s", s, v, again)
	}
}

func TestFormatCurrencyBE(t *testing.T) {
	assert.Equal(t, "€ 1.234,50", FormatCurrencyBE(dec("1234.5")))
	assert.Equal(t, "€ 0,00", FormatCurrencyBE(decimal.Zero))
	assert.Equal(t, "€ 25,00", FormatCurrencyBE(dec("25")))
	assert.Equal(t, "€ 1.000.000,00", FormatCurrencyBE(dec("1000000")))
	assert.Equal(t, "€ 123,46", FormatCurrencyBE(dec("123.455")))
	assert.Equal(t, "€ -5,00", FormatCurrencyBE(dec("-5")))
}

func TestFormatAmountBE(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.5", "0,50"},
		{"999.999", "1.000,00"},
		{"12345.67", "12.345,67"},
		{"-1234.565", "-1.234,57"},
		{"0.005", "0,01"},
		{"987654321.1", "987.654.321,10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmountBE(dec(tt.in)))
		})
	}
}

func TestIBAN(t *testing.T) {
	assert.True(t, ValidIBAN("BE68539007547034"))
	assert.True(t, ValidIBAN("be68 5390 0754 7034"))
	assert.True(t, ValidIBAN("NL91ABNA0417164300"))
	assert.True(t, ValidIBAN("DE89 3704 0044 0532 0130 00"))
	assert.True(t, ValidIBAN("GB82 WEST 1234 5698 7654 32"))
	assert.True(t, ValidIBAN("SA03 8000 0000 6080 1016 7519"))

	assert.False(t, ValidIBAN("BE68539007547035"))
	assert.False(t, ValidIBAN("BE6853900754703"))
	assert.False(t, ValidIBAN("XX68539007547034"))
	assert.False(t, ValidIBAN(""))
	assert.False(t, ValidIBAN("GB82 WEST 1234 5698 7654 3"))
	assert.False(t, ValidIBAN("BE68 5390 0754 7034 00"))

	assert.Equal(t, "BE68 5390 0754 7034", IBANInputMask("be68-5390.0754 7034"))
	assert.Equal(t, "BE68539007547034", NormalizeIBAN(" be68 5390 0754 7034 "))
}

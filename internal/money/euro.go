// Package money parses and formats euro amounts and IBANs the Belgian way:
// comma as decimal separator, dot as thousands separator.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const maxFractionDigits = 2

// EuroInputMask keeps digits and a single comma, and truncates the
// fractional part to two digits. Text after a second comma is folded into
// the fraction. The mask is idempotent.
func EuroInputMask(raw string) string {
	var intPart, frac strings.Builder
	seenComma := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			if !seenComma {
				intPart.WriteRune(r)
			} else if frac.Len() < maxFractionDigits {
				frac.WriteRune(r)
			}
		case r == ',':
			seenComma = true
		}
	}
	if !seenComma {
		return intPart.String()
	}
	return intPart.String() + "," + frac.String()
}

// ParseEuroInput converts masked input into an amount. Dots are treated as
// thousands separators and dropped. Empty or unparseable input yields zero;
// callers check for a positive amount where one is required.
func ParseEuroInput(masked string) decimal.Decimal {
	var b strings.Builder
	for _, r := range masked {
		if (r >= '0' && r <= '9') || r == ',' {
			b.WriteRune(r)
		}
	}
	parts := strings.Split(b.String(), ",")
	intPart := parts[0]
	frac := ""
	if len(parts) > 1 {
		frac = parts[1]
	}
	if intPart == "" && frac == "" {
		return decimal.Zero
	}
	if intPart == "" {
		intPart = "0"
	}
	num := intPart
	if frac != "" {
		num += "." + frac
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d.Truncate(maxFractionDigits)
}

// ParseEuroInputFloat is ParseEuroInput for callers that want a float64.
func ParseEuroInputFloat(masked string) float64 {
	f, _ := ParseEuroInput(masked).Float64()
	return f
}

var belgianDutch = language.MustParse("nl-BE")

// FormatAmountBE renders an amount with two decimals in nl-BE notation,
// e.g. 1234.5 -> "1.234,50". Halves round away from zero.
func FormatAmountBE(amount decimal.Decimal) string {
	f, _ := amount.Round(maxFractionDigits).Float64()
	p := message.NewPrinter(belgianDutch)
	return p.Sprint(number.Decimal(f, number.Scale(maxFractionDigits)))
}

// FormatCurrencyBE renders an amount as Belgian-Dutch euro currency,
// e.g. 1234.5 -> "€ 1.234,50" and -5 -> "€ -5,00".
func FormatCurrencyBE(amount decimal.Decimal) string {
	return "€ " + FormatAmountBE(amount)
}

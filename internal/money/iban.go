package money

import (
	"strings"

	"github.com/jbub/banking/iban"
)

const maxIBANLength = 34

// NormalizeIBAN uppercases raw and drops everything but letters and digits.
func NormalizeIBAN(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IBANInputMask normalizes raw and groups it by four characters for display
// while typing, e.g. "be68 5390-0754 7034" -> "BE68 5390 0754 7034".
func IBANInputMask(raw string) string {
	s := NormalizeIBAN(raw)
	if len(s) > maxIBANLength {
		s = s[:maxIBANLength]
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ValidIBAN checks the country format and the ISO 13616 checksum of raw
// after normalization.
func ValidIBAN(raw string) bool {
	return iban.Validate(NormalizeIBAN(raw)) == nil
}

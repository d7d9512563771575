// Package id formats fee identifiers and Belgian structured communications.
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatFeeID returns a fee ID like "2025-01-001".
func FormatFeeID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// ParseFeeID parses "2025-01-001" into year, month, seq.
func ParseFeeID(id string) (year, month, seq int, err error) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid fee ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in fee ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in fee ID %q: %w", id, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month in fee ID %q", id)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in fee ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

const (
	maxStructuredBase = 9_999_999_999
	maxReferenceSeq   = 999
)

// StructuredReference returns the Belgian structured communication
// ("gestructureerde mededeling") for a ten-digit base number:
// +++ddd/dddd/dddcc+++ where cc is base mod 97, or 97 when that is zero.
func StructuredReference(base uint64) (string, error) {
	if base > maxStructuredBase {
		return "", fmt.Errorf("structured reference base %d exceeds 10 digits", base)
	}
	check := base % 97
	if check == 0 {
		check = 97
	}
	s := fmt.Sprintf("%010d%02d", base, check)
	return FormatStructured(s), nil
}

// FeeReference derives the structured communication for a fee ID. The
// sequence gets three digits of the base, so IDs past 999 in a month have
// no reference of their own and are refused.
func FeeReference(feeID string) (string, error) {
	year, month, seq, err := ParseFeeID(feeID)
	if err != nil {
		return "", err
	}
	if seq < 0 || seq > maxReferenceSeq {
		return "", fmt.Errorf("fee ID %q: sequence %d does not fit a structured reference (max %d)", feeID, seq, maxReferenceSeq)
	}
	base := uint64(year)*100_000 + uint64(month)*1_000 + uint64(seq)
	return StructuredReference(base)
}

// FormatStructured renders twelve digits as +++ddd/dddd/ddddd+++.
// Other input is returned unchanged.
func FormatStructured(digits string) string {
	if len(digits) != 12 || !allDigits(digits) {
		return digits
	}
	return "+++" + digits[:3] + "/" + digits[3:7] + "/" + digits[7:] + "+++"
}

// ValidStructuredReference checks the mod-97 check digits of a structured
// communication in +++ or *** notation, or as twelve bare digits.
func ValidStructuredReference(s string) bool {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == '*' || r == '/' || r == ' ':
		default:
			return false
		}
	}
	digits := b.String()
	if len(digits) != 12 {
		return false
	}
	base, err := strconv.ParseUint(digits[:10], 10, 64)
	if err != nil {
		return false
	}
	check, err := strconv.ParseUint(digits[10:], 10, 64)
	if err != nil {
		return false
	}
	want := base % 97
	if want == 0 {
		want = 97
	}
	return check == want
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

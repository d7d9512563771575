package model

import (
	"strings"
	"time"
)

// Member is a registered member of the association.
type Member struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	IBAN          string // compact form, no spaces
	MandateID     string // SEPA direct-debit mandate reference, empty if none
	MandateSigned time.Time
	JoinedOn      time.Time
	Active        bool
}

// FullName returns "First Last", trimmed.
func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// HasMandate reports whether a signed SEPA mandate is on file.
func (m Member) HasMandate() bool {
	return m.MandateID != "" && !m.MandateSigned.IsZero()
}

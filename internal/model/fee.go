package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/period"
)

// FeeStatus is the lifecycle state of a membership fee.
type FeeStatus string

const (
	FeeOpen      FeeStatus = "OPEN"
	FeePaid      FeeStatus = "PAID"
	FeeCancelled FeeStatus = "CANCELLED"
)

// ParseFeeStatus accepts a status name case-insensitively.
func ParseFeeStatus(s string) (FeeStatus, error) {
	switch st := FeeStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case FeeOpen, FeePaid, FeeCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown fee status %q", s)
	}
}

// Fee is one membership charge covering the inclusive range Start..End.
type Fee struct {
	ID        string // "YYYY-MM-NNN", month of Start
	MemberID  string
	Amount    decimal.Decimal
	Term      period.Term
	Start     time.Time
	End       time.Time
	Method    PaymentMethod
	Status    FeeStatus
	Reference string // Belgian structured communication, +++xxx/xxxx/xxxxx+++
	PaidOn    time.Time
	Notes     string
}

// Bounds returns the covered range.
func (f Fee) Bounds() (time.Time, time.Time) {
	return f.Start, f.End
}

// Period returns the covered range as a period.Period.
func (f Fee) Period() period.Period {
	return period.Period{Start: f.Start, End: f.End}
}

// Billable reports whether the fee still counts towards coverage.
func (f Fee) Billable() bool {
	return f.Status != FeeCancelled
}

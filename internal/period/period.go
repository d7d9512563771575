// Package period derives fee coverage periods and formats calendar dates.
//
// Dates are calendar dates, not instants: every function drops the
// time-of-day and keeps the location of its input.
package period

import (
	"fmt"
	"strings"
	"time"
)

// Term is the billing term of a membership fee.
type Term string

const (
	Monthly Term = "MONTHLY"
	Yearly  Term = "YEARLY"
)

// ISOLayout is the canonical calendar-date layout.
const ISOLayout = "2006-01-02"

const beLayout = "02/01/2006"

// ParseTerm accepts a term name case-insensitively.
func ParseTerm(s string) (Term, error) {
	switch Term(strings.ToUpper(strings.TrimSpace(s))) {
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", fmt.Errorf("unknown term %q", s)
	}
}

// Valid reports whether t is a known term.
func (t Term) Valid() bool {
	return t == Monthly || t == Yearly
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfMonthlyPeriod returns the last day of the month containing start.
func EndOfMonthlyPeriod(start time.Time) time.Time {
	y, m, _ := start.Date()
	// Day 0 of the next month is the last day of this one.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, start.Location())
}

// EndOfYearlyPeriod returns the day before the first anniversary of start.
// A Feb 29 start ends on Feb 28 of the following year.
func EndOfYearlyPeriod(start time.Time) time.Time {
	return DateOnly(start).AddDate(1, 0, -1)
}

// CalculateEndDate derives the end of the period that starts on start.
// It panics on an unknown term; callers validate terms with ParseTerm.
func CalculateEndDate(start time.Time, term Term) time.Time {
	switch term {
	case Monthly:
		return EndOfMonthlyPeriod(start)
	case Yearly:
		return EndOfYearlyPeriod(start)
	default:
		panic(fmt.Sprintf("period: unknown term %q", term))
	}
}

// ToISO renders t as YYYY-MM-DD.
func ToISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// FromISO parses a YYYY-MM-DD string as a calendar date in the local calendar.
func FromISO(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ISOLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// MustFromISO is FromISO for constants and tests.
func MustFromISO(s string) time.Time {
	t, err := FromISO(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDateBE renders t as DD/MM/YYYY. The zero time renders as "Invalid Date".
func FormatDateBE(t time.Time) string {
	if t.IsZero() {
		return "Invalid Date"
	}
	return t.Format(beLayout)
}

// ParseDateBE parses DD/MM/YYYY in the local calendar.
func ParseDateBE(s string) (time.Time, error) {
	t, err := time.ParseInLocation(beLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// Period is an inclusive range of calendar days.
type Period struct {
	Start time.Time
	End   time.Time
}

// New derives a period from start and term.
func New(start time.Time, term Term) Period {
	start = DateOnly(start)
	return Period{Start: start, End: CalculateEndDate(start, term)}
}

// Bounds returns the inclusive start and end.
func (p Period) Bounds() (time.Time, time.Time) {
	return p.Start, p.End
}

// Valid reports whether both ends are set and End is not before Start.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && !p.End.Before(p.Start)
}

// Contains reports whether day falls within the period, boundaries included.
func (p Period) Contains(day time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(p.Start)) && !d.After(DateOnly(p.End))
}

// CoversMonth reports whether the period shares at least one day with the given month.
func (p Period) CoversMonth(year int, month time.Month) bool {
	first := time.Date(year, month, 1, 0, 0, 0, 0, p.Start.Location())
	last := EndOfMonthlyPeriod(first)
	return !DateOnly(p.Start).After(last) && !DateOnly(p.End).Before(first)
}

func (p Period) String() string {
	return ToISO(p.Start) + ".." + ToISO(p.End)
}

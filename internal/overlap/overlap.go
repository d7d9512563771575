// Package overlap decides whether closed date ranges share a calendar day.
package overlap

import (
	"strings"
	"time"
)

// Interval is anything with inclusive start and end dates.
type Interval interface {
	Bounds() (start, end time.Time)
}

// Overlaps reports whether [start1,end1] and [start2,end2] intersect.
// Ranges that touch on a single boundary day overlap. A zero time on any
// side never overlaps.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	if start1.IsZero() || end1.IsZero() || start2.IsZero() || end2.IsZero() {
		return false
	}
	return !start1.After(end2) && !start2.After(end1)
}

// OverlapsISO is Overlaps over date strings. It accepts YYYY-MM-DD and
// RFC 3339 timestamps; unparseable input never overlaps.
func OverlapsISO(start1, end1, start2, end2 string) bool {
	return Overlaps(parse(start1), parse(end1), parse(start2), parse(end2))
}

// Between is Overlaps over two Intervals.
func Between(a, b Interval) bool {
	s1, e1 := a.Bounds()
	s2, e2 := b.Bounds()
	return Overlaps(s1, e1, s2, e2)
}

// Conflicts returns the entries of existing that overlap candidate.
func Conflicts[T Interval](candidate Interval, existing []T) []T {
	var out []T
	for _, e := range existing {
		if Between(candidate, e) {
			out = append(out, e)
		}
	}
	return out
}

func parse(s string) time.Time {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

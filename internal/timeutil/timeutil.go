// Package timeutil normalizes date-like values for comparison.
package timeutil

import "time"

// dateLayouts are the wire formats accepted for event dates, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UTCMidnight truncates t to midnight of its calendar day in UTC.
func UTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameLocalDay reports whether a and b fall on the same calendar day in the
// local time zone. Day filters use local calendar semantics, not UTC.
func SameLocalDay(a, b time.Time) bool {
	al, bl := a.Local(), b.Local()
	ay, am, ad := al.Date()
	by, bm, bd := bl.Date()
	return ay == by && am == bm && ad == bd
}

// IsPast reports whether an event with the given start and end lies entirely
// before the current UTC day. An event with a zero start is never past. An
// event whose start is past but whose end is today or later is not past.
func IsPast(start, end, now time.Time) bool {
	if start.IsZero() {
		return false
	}
	today := UTCMidnight(now)
	if !UTCMidnight(start).Before(today) {
		return false
	}
	if end.IsZero() {
		return true
	}
	return UTCMidnight(end).Before(today)
}

// Parse converts a wire date string to an instant. Returns the zero time for
// empty or unrecognized input.
func Parse(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

package model

import (
	"fmt"
	"time"
)

// DateLayout is the textual date format used at every boundary.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date as a naive UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, s)
	}
	return d, nil
}

// FormatDate formats t as YYYY-MM-DD using its own calendar fields.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the calendar date of now as a naive UTC midnight.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDateRange parses both ends and checks start <= end.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	from, err := ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	return from, to, nil
}

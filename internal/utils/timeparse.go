package utils

import (
	"errors"
	"time"
)

// ErrInvalidDate is returned when a date string matches none of the accepted
// ISO 8601 layouts.
var ErrInvalidDate = errors.New("invalid date format")

// ParseDate parses an ISO 8601 date (YYYY-MM-DD) or RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate formats a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTimestamp formats a time as RFC3339 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

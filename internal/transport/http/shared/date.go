package shared

import (
	"time"

	"ems/internal/domain/ledger"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD. Empty input is the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(ledger.DateLayout, value)
}

// ParseClock reads an HH:MM:SS time on the given day. Empty input is the
// zero time.
func ParseClock(day time.Time, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	c, err := time.Parse(ledger.ClockLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, day.Location()), nil
}

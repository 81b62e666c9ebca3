// Package timerange parses the date filters accepted by list endpoints.
// All timestamps in the system are stored and compared in UTC; a date-only
// filter covers the entire calendar day.
package timerange

import (
	"errors"
	"strings"
	"time"
)

const dateOnly = "2006-01-02"

var ErrInvalidDate = errors.New("invalid_date")

// ParseStart parses a lower bound. Date-only values map to midnight UTC.
func ParseStart(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateOnly, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, ErrInvalidDate
}

// ParseEnd parses an upper bound. Date-only values are end-of-day inclusive.
func ParseEnd(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateOnly, value); err == nil {
		t = t.UTC().Add(24*time.Hour - time.Nanosecond)
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, ErrInvalidDate
}

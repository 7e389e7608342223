package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of every date
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD in t's location
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidateRange checks both dates and that start is not after end
func ValidateRange(start, end string) error {
	s, err := ParseDate(start)
	if err != nil {
		return err
	}
	e, err := ParseDate(end)
	if err != nil {
		return err
	}
	if s.After(e) {
		return fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return nil
}

package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the short form accepted for item dates.
const DateLayout = "2006-01-02"

// Date accepts either "2006-01-02" or RFC 3339 in JSON.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	t, err := ParseDate(s)
	if err != nil {
		return err
	}

	d.Time = t
	return nil
}

// ParseDate parses s as a calendar date or an RFC 3339 timestamp, in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}

	return t.UTC(), nil
}

// ParseRangeEnd parses the upper bound of a date range. A calendar date
// covers that whole day, so it resolves to the last instant before midnight.
func ParseRangeEnd(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}

	return ParseDate(s)
}

// Ptr returns nil for a nil Date, otherwise a pointer to its time.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

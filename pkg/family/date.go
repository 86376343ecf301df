package family

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the full-date formats accepted in date fields.
var dateLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	"2006/1/2",
	"2006-1-2",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseYear extracts the year from a date field. A four character value is
// read as a bare year; anything else must be a full date in one of the
// accepted layouts.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 {
		y, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("parse year %q: %w", s, err)
		}
		return y, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}

// ParseDate parses a full date. Bare years are rejected.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unrecognised format", s)
}

// FormatDate renders a date field for display: bare years are returned
// unchanged and full dates as "02 January 2006".
func FormatDate(s string) string {
	if len(strings.TrimSpace(s)) == 4 {
		return strings.TrimSpace(s)
	}
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("02 January 2006")
}

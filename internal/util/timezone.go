package util

import (
	"fmt"
	"time"
)

// LoadLocation resolves an IANA timezone name, falling back to UTC when
// the name is empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// MonthWindow returns the first instant of the month containing now and
// the first instant of the following month, in the given location.
func MonthWindow(now time.Time, loc *time.Location) (start, end time.Time) {
	local := now.In(loc)
	start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// ParseSQLiteTimestamp parses SQLite's datetime('now') format.
func ParseSQLiteTimestamp(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}

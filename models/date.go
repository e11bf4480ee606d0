package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date where the month and day may be unknown.
// Zero fields mean "unknown".
type Date struct {
	Year  int
	Month int
	Day   int
}

// Timestamp layouts accepted after the date forms. Zone-less times keep the
// calendar date as written.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseDate parses "YYYY", "YYYY-MM", "YYYY-MM-DD", an RFC 3339 timestamp
// or a local date-time such as "2023-05-17T10:00:00"
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if len(s) > 10 {
		var err error
		for _, layout := range timestampLayouts {
			var t time.Time
			if t, err = time.Parse(layout, s); err == nil {
				return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
			}
		}
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}

	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return Date{}, fmt.Errorf("invalid date %q", s)
		}
		fields[i] = n
	}
	d := Date{Year: fields[0], Month: fields[1], Day: fields[2]}
	if d.Month > 12 {
		return Date{}, fmt.Errorf("invalid month in date %q", s)
	}
	if d.Day > 0 {
		t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
		if t.Day() != d.Day {
			return Date{}, fmt.Errorf("invalid day in date %q", s)
		}
	}
	return d, nil
}

// IsComplete reports whether year, month and day are all known
func (d Date) IsComplete() bool {
	return d.Year > 0 && d.Month > 0 && d.Day > 0
}

// IsZero reports whether nothing about the date is known
func (d Date) IsZero() bool {
	return d.Year == 0
}

// Compare orders dates chronologically; unknown components sort first
func (d Date) Compare(o Date) int {
	if d.Year != o.Year {
		return d.Year - o.Year
	}
	if d.Month != o.Month {
		return d.Month - o.Month
	}
	return d.Day - o.Day
}

// Time returns the earliest instant the date can refer to, in UTC
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	month, day := max(d.Month, 1), max(d.Day, 1)
	return time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	switch {
	case d.IsZero():
		return ""
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Patch identifies the game version a run was played on. Patches are
// ordered lexically, so release dates should be written as YYYY-MM-DD.
type Patch string

// ComparePatch orders patches lexically
func ComparePatch(a, b Patch) int {
	return strings.Compare(string(a), string(b))
}

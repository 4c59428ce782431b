package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
)

var isoLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	"2006/01/02",
	"20060102",
}

// ParseDate reads a calendar date in the given field order. Any time of day
// is dropped and the result is a UTC midnight.
func ParseDate(s string, format mapping.DateFormat) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if format == mapping.DateISO {
		return parseISO(s)
	}

	// Drop a trailing time component such as "30/04/2024 10:22".
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return time.Time{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, false
		}

		nums[i] = n
	}

	var year, month, day int

	switch format {
	case mapping.DateMDYSlash:
		month, day, year = nums[0], nums[1], nums[2]
	default:
		day, month, year = nums[0], nums[1], nums[2]
	}

	if len(parts[2]) <= 2 {
		year = WindowYear(year)
	}

	return calendarDate(year, month, day)
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}

		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

// WindowYear maps a two-digit year onto 1970-2069.
func WindowYear(y int) int {
	if y >= 100 {
		return y
	}

	if y < 70 {
		return 2000 + y
	}

	return 1900 + y
}

func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}

	return t, true
}

// Package servicedate normalizes date strings returned by the data service.
package servicedate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DisplayLayout is the default layout used by Format
const DisplayLayout = "02-Jan-2006"

// /Date(1700000000000)/ and /Date(1700000000000+0530)/
var msDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-Jan-2006",
	"02-01-2006",
}

// Parse converts a service date string to a time in loc. The bool is false
// for empty or unrecognised input.
func Parse(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := msDatePattern.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).In(loc), true
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}

	return time.Time{}, false
}

// Format renders a service date with layout, or "" when it cannot be parsed
func Format(raw, layout string, loc *time.Location) string {
	t, ok := Parse(raw, loc)
	if !ok {
		return ""
	}
	if layout == "" {
		layout = DisplayLayout
	}
	return t.Format(layout)
}

// CivilDays returns the calendar-day difference to - from, ignoring time of day
func CivilDays(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// Package timetricks converts between wall-clock times and the
// hours-since-New-Year axis the tide constituents are tabulated on.
package timetricks

import (
	"time"
)

const dayFormat = "20060102"

// SameDay reports whether t and t2 fall on the same calendar day, each in its
// own location.
func SameDay(t time.Time, t2 time.Time) bool {
	return t.Format(dayFormat) == t2.Format(dayFormat)
}

// IsLeap applies the Gregorian leap year rule.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// HoursInYear is 8784 for leap years and 8760 otherwise.
func HoursInYear(year int) int {
	if IsLeap(year) {
		return 366 * 24
	}
	return 365 * 24
}

// HourOfYear returns the wall-clock hours elapsed since January 1 00:00 of
// t's year, read in t's own location. Offsets are not applied, so a station
// kept on local standard time gets its local hour.
func HourOfYear(t time.Time) float64 {
	y, m, d := t.Date()
	h, mi, s := t.Clock()
	wall := time.Date(y, m, d, h, mi, s, t.Nanosecond(), time.UTC)
	return wall.Sub(time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)).Hours()
}

// AtHour is the inverse of HourOfYear: the wall-clock time hours after New
// Year of year, in loc. Hours past the end of the year roll into the next.
func AtHour(year int, hours float64, loc *time.Location) time.Time {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	wall := start.Add(time.Duration(hours * float64(time.Hour)))
	y, m, d := wall.Date()
	h, mi, s := wall.Clock()
	return time.Date(y, m, d, h, mi, s, wall.Nanosecond(), loc)
}

// Package timeutil provides timezone helpers for Polish local time. Registry
// dates render in Europe/Warsaw; month-close boundaries follow the location
// the caller runs the check in.
package timeutil

import (
	"sync"
	"time"
)

// DefaultTimezone is the IANA name of the registry's timezone.
const DefaultTimezone = "Europe/Warsaw"

var (
	warsawOnce sync.Once
	warsaw     *time.Location
)

// Warsaw returns the Europe/Warsaw location. Falls back to a fixed CET zone
// when the tzdata is unavailable; the fallback ignores DST.
func Warsaw() *time.Location {
	warsawOnce.Do(func() {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			loc = time.FixedZone("CET", 1*60*60)
		}
		warsaw = loc
	})
	return warsaw
}

// ToWarsaw converts a time to Warsaw local time.
func ToWarsaw(t time.Time) time.Time {
	return t.In(Warsaw())
}

// StartOfMonth returns the first day of t's month at midnight in loc.
// A nil location means Warsaw.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = Warsaw()
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// PreviousMonthDay returns a time guaranteed to fall in the month before t's
// month in loc. Month-close jobs use it to name the month being closed.
func PreviousMonthDay(t time.Time, loc *time.Location) time.Time {
	return StartOfMonth(t, loc).AddDate(0, 0, -1)
}

// FormatDate renders a date the way the registry displays it.
func FormatDate(t time.Time) string {
	return ToWarsaw(t).Format("2006-01-02")
}

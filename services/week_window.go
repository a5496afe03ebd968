package services

import "time"

// Weekday names accepted as a start_week_day preference, Monday first so
// the index matches Python-style weekday numbering used throughout the
// window math (Monday=0 .. Sunday=6).
var weekDayIndex = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
	"Saturday":  5,
	"Sunday":    6,
}

// DateOnly truncates a timestamp to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekdayIndex maps a time.Weekday (Sunday=0) onto Monday=0..Sunday=6.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// WindowFor returns the [start, end] bounds of the compliance week that
// contains referenceDate for the given start-of-week day. An unknown
// start day falls back to Monday. The modulo arithmetic never goes
// negative, so every date inside a window maps to the same window.
func WindowFor(referenceDate time.Time, startWeekDay string) (time.Time, time.Time) {
	target, ok := weekDayIndex[startWeekDay]
	if !ok {
		target = 0
	}

	ref := DateOnly(referenceDate)
	daysBack := (weekdayIndex(ref.Weekday()) - target + 7) % 7
	weekStart := ref.AddDate(0, 0, -daysBack)
	weekEnd := weekStart.AddDate(0, 0, 6)
	return weekStart, weekEnd
}

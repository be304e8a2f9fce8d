package util

import (
	"fmt"
	"time"
)

// DayLayout is the canonical YYYY-MM-DD form used for day-keys and custom budget dates
const DayLayout = "2006-01-02"

// MonthLayout is the YYYY-MM form used for month tags
const MonthLayout = "2006-01"

// Day-level values (interval bounds, calendar days, transaction dates) are civil
// dates held as midnight UTC. UTC has no DST, so AddDate on them always moves by
// whole calendar days, even in zones where local midnight does not exist.

// Date returns the civil date year-month-day as midnight UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the calendar date of t, as seen in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// StartOfMonth returns the first day of t's month, as seen in t's location
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return Date(y, m, 1)
}

// DaysInMonth returns the number of days of the given month,
// using day 0 of the following month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DayKey formats t as YYYY-MM-DD
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD string into a civil date
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// MonthTag formats t as YYYY-MM
func MonthTag(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseMonthTag parses a YYYY-MM tag into its year and month
func ParseMonthTag(s string) (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse month tag %q: %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

// ReferenceForMonth picks the reference instant used to evaluate a displayed
// month: now itself for the current month, the last day of a past month and
// the first day of a future month.
func ReferenceForMonth(now time.Time, year int, month time.Month) time.Time {
	first := Date(year, month, 1)
	next := first.AddDate(0, 1, 0)
	today := StartOfDay(now)
	switch {
	case today.Before(first):
		return first
	case !today.Before(next):
		return next.AddDate(0, 0, -1)
	default:
		return now
	}
}

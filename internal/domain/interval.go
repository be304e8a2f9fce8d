package domain

import "time"

// Interval is a half-open [Start, End) range of calendar days
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsEmpty reports whether the interval covers no time at all
func (i Interval) IsEmpty() bool {
	return !i.End.After(i.Start)
}

// Days returns the number of calendar days covered by the interval
func (i Interval) Days() int {
	if i.IsEmpty() {
		return 0
	}
	return int(civilDate(i.End).Sub(civilDate(i.Start)).Hours() / 24)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

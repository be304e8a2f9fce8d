package util

import "time"

// Clock supplies the reference time for every relative date computation
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a SystemClock for loc (UTC when nil)
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return &SystemClock{loc: loc}
}

// Now returns the current time in the clock's location
func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// FixedClock always returns the same instant
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.T
}

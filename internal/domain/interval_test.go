package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInterval(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	i := Interval{Start: start, End: start.AddDate(0, 1, 0)}

	assert.Equal(t, 31, i.Days())
	assert.False(t, i.IsEmpty())

	empty := Interval{Start: start, End: start}
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 0, empty.Days())
}

func TestInterval_DaysAcrossDSTChange(t *testing.T) {
	// Sao Paulo moved clocks forward at midnight on 2018-11-04
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skip("timezone database not available")
	}
	week := Interval{
		Start: time.Date(2018, 10, 31, 0, 0, 0, 0, loc),
		End:   time.Date(2018, 10, 31, 0, 0, 0, 0, loc).AddDate(0, 0, 7),
	}

	assert.Equal(t, 7, week.Days())
}

// Package timeline resolves budget timelines into concrete day ranges.
//
// Two call sites share these rules: spend aggregation, which needs a half-open
// interval per budget, and the calendar view, which needs the set of days a
// budget is active on within a displayed month. The weekly timeline means
// different things to each of them, see WeeklyAggregationWindow and
// WeeklyCalendarPattern.
package timeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
)

// WeeklyAggregationWindow is the length in days of the trailing window a weekly
// budget's spend is computed over. The window ends on the reference day, inclusive.
const WeeklyAggregationWindow = 7

var (
	// ErrNoInterval means a timeline could not be resolved to a spend interval.
	// Callers treat it as zero spend.
	ErrNoInterval = errors.New("timeline has no interval")

	// ErrMissingCustomRange is returned for a custom timeline without both dates
	ErrMissingCustomRange = fmt.Errorf("%w: custom range requires start and end dates", ErrNoInterval)

	// ErrInvalidCustomDate is returned when a custom date is not YYYY-MM-DD
	ErrInvalidCustomDate = fmt.Errorf("%w: invalid custom date", ErrNoInterval)
)

// ResolveInterval returns the half-open [start, end) day interval over which spend
// is computed for tl, relative to ref. "Today" is ref's calendar date in ref's
// location; the bounds are civil dates (see util.Date).
//
// customStart and customEnd are only read for the custom timeline; its end is
// clamped to ref so future days are never included.
func ResolveInterval(tl domain.Timeline, ref time.Time, customStart, customEnd *string) (domain.Interval, error) {
	today := util.StartOfDay(ref)

	switch domain.ParseTimeline(string(tl)) {
	case domain.TimelineDaily:
		return domain.Interval{Start: today, End: today.AddDate(0, 0, 1)}, nil

	case domain.TimelineWeekly:
		return domain.Interval{
			Start: today.AddDate(0, 0, -(WeeklyAggregationWindow - 1)),
			End:   today.AddDate(0, 0, 1),
		}, nil

	case domain.TimelineYearly:
		start := util.Date(today.Year(), time.January, 1)
		return domain.Interval{Start: start, End: start.AddDate(1, 0, 0)}, nil

	case domain.TimelineCustom:
		return resolveCustom(today, customStart, customEnd)

	default:
		start := util.StartOfMonth(today)
		return domain.Interval{Start: start, End: start.AddDate(0, 1, 0)}, nil
	}
}

// ResolveBudget resolves the spend interval of a stored budget
func ResolveBudget(b *domain.Budget, ref time.Time) (domain.Interval, error) {
	return ResolveInterval(b.Timeline, ref, b.StartDate, b.EndDate)
}

func resolveCustom(today time.Time, customStart, customEnd *string) (domain.Interval, error) {
	start, end, err := parseCustomRange(customStart, customEnd)
	if err != nil {
		return domain.Interval{}, err
	}

	last := end
	if today.Before(last) {
		last = today
	}
	endExclusive := last.AddDate(0, 0, 1)

	// A range that starts after today has nothing to aggregate yet.
	if endExclusive.Before(start) {
		endExclusive = start
	}

	return domain.Interval{Start: start, End: endExclusive}, nil
}

func parseCustomRange(customStart, customEnd *string) (time.Time, time.Time, error) {
	if isBlank(customStart) || isBlank(customEnd) {
		return time.Time{}, time.Time{}, ErrMissingCustomRange
	}

	start, err := util.ParseDay(strings.TrimSpace(*customStart))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start: %w", ErrInvalidCustomDate, err)
	}

	end, err := util.ParseDay(strings.TrimSpace(*customEnd))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end: %w", ErrInvalidCustomDate, err)
	}

	return start, end, nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

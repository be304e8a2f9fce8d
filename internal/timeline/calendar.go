package timeline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/shopspring/decimal"
)

// WeeklyCalendarPattern is the weekday on which weekly budgets are shown on the calendar
const WeeklyCalendarPattern = time.Monday

// ErrCalendarExpansion marks a failure of the whole calendar expansion
var ErrCalendarExpansion = errors.New("calendar expansion failed")

// CalendarDay holds the budgets active on one day
type CalendarDay struct {
	Date       string
	Budgets    []*domain.Budget
	TotalLimit decimal.Decimal
}

// Count returns the number of budgets active on the day
func (d *CalendarDay) Count() int {
	return len(d.Budgets)
}

// BudgetFailure records a budget that was skipped during expansion
type BudgetFailure struct {
	BudgetID int32
	Category string
	Err      error
}

// CalendarMap maps every day-key of one month to the budgets active that day.
// Err is set when the expansion as a whole failed; Days is then empty.
type CalendarMap struct {
	Year     int
	Month    time.Month
	Days     map[string]*CalendarDay
	Failures []BudgetFailure
	Err      error
}

// ActiveDays returns the sorted day-keys that have at least one budget
func (m CalendarMap) ActiveDays() []string {
	keys := make([]string, 0, len(m.Days))
	for key, day := range m.Days {
		if day.Count() > 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// BuildCalendarMap expands budgets into the days of the given month on which each
// is active. Every real day of the month gets an entry, possibly empty. Days are
// civil dates, so the map does not depend on any time zone.
//
// A budget that cannot be expanded is recorded in Failures and the rest are still
// mapped. Any other fault leaves an empty map with Err set.
func BuildCalendarMap(budgets []*domain.Budget, year int, month time.Month) (result CalendarMap) {
	defer func() {
		if r := recover(); r != nil {
			result = CalendarMap{
				Year:  year,
				Month: month,
				Days:  map[string]*CalendarDay{},
				Err:   fmt.Errorf("%w: %v", ErrCalendarExpansion, r),
			}
		}
	}()

	result = CalendarMap{Year: year, Month: month, Days: map[string]*CalendarDay{}}
	if month < time.January || month > time.December {
		result.Err = fmt.Errorf("%w: month %d out of range", ErrCalendarExpansion, month)
		return result
	}

	first := util.Date(year, month, 1)
	last := first.AddDate(0, 0, util.DaysInMonth(year, month)-1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := util.DayKey(d)
		result.Days[key] = &CalendarDay{Date: key, TotalLimit: decimal.Zero}
	}

	for _, b := range budgets {
		if b == nil {
			result.Failures = append(result.Failures, BudgetFailure{Err: domain.ErrInvalidInput})
			continue
		}

		days, err := expandBudget(b, first, last)
		if err != nil {
			result.Failures = append(result.Failures, BudgetFailure{
				BudgetID: b.ID,
				Category: b.Category,
				Err:      err,
			})
			continue
		}

		for _, d := range days {
			day := result.Days[util.DayKey(d)]
			day.Budgets = append(day.Budgets, b)
			day.TotalLimit = day.TotalLimit.Add(b.Limit)
		}
	}

	return result
}

// expandBudget is the per-budget expansion step of BuildCalendarMap
var expandBudget = activeDays

// activeDays lists the days within [first, last] on which b is active
func activeDays(b *domain.Budget, first, last time.Time) ([]time.Time, error) {
	switch domain.ParseTimeline(string(b.Timeline)) {
	case domain.TimelineDaily:
		return daysBetween(first, last, nil), nil

	case domain.TimelineWeekly:
		return daysBetween(first, last, func(d time.Time) bool {
			return d.Weekday() == WeeklyCalendarPattern
		}), nil

	case domain.TimelineYearly:
		if first.Month() != time.January {
			return nil, nil
		}
		return []time.Time{first}, nil

	case domain.TimelineCustom:
		start, end, err := parseCustomRange(b.StartDate, b.EndDate)
		if err != nil {
			return nil, err
		}
		if start.After(end) {
			return nil, domain.ErrInvalidDateRange
		}
		if start.Before(first) {
			start = first
		}
		if end.After(last) {
			end = last
		}
		return daysBetween(start, end, nil), nil

	default:
		return []time.Time{first}, nil
	}
}

// daysBetween returns the days from start to end inclusive that satisfy keep
func daysBetween(start, end time.Time, keep func(time.Time) bool) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if keep == nil || keep(d) {
			days = append(days, d)
		}
	}
	return days
}

package service

import (
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/timeline"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/rs/zerolog/log"
)

// CalendarService builds the per-day budget view of a month
type CalendarService struct {
	budgetRepo domain.BudgetRepository
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(budgetRepo domain.BudgetRepository) *CalendarService {
	return &CalendarService{budgetRepo: budgetRepo}
}

// GetCalendar maps the workspace's budgets onto the days of year/month.
// Budgets that cannot be expanded are reported in the map's Failures; only a
// store failure is returned as an error.
func (s *CalendarService) GetCalendar(workspaceID int32, year int, month time.Month) (timeline.CalendarMap, error) {
	if month < time.January || month > time.December || year < 1 {
		return timeline.CalendarMap{}, domain.ErrInvalidMonthTag
	}

	tag := util.MonthTag(util.Date(year, month, 1))
	budgets, err := s.budgetRepo.ListByMonth(workspaceID, tag)
	if err != nil {
		return timeline.CalendarMap{}, err
	}

	cal := timeline.BuildCalendarMap(budgets, year, month)

	for _, f := range cal.Failures {
		log.Warn().
			Err(f.Err).
			Int32("workspace_id", workspaceID).
			Int32("budget_id", f.BudgetID).
			Str("category", f.Category).
			Str("month", tag).
			Msg("Budget skipped in calendar")
	}
	if cal.Err != nil {
		log.Error().Err(cal.Err).Int32("workspace_id", workspaceID).Str("month", tag).Msg("Calendar expansion failed")
	}

	return cal, nil
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/middleware"
	"github.com/dafibh/budgetly/budgetly-backend/internal/service"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
	calendarService  *service.CalendarService
	clock            util.Clock
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService, calendarService *service.CalendarService, clock util.Clock) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		calendarService:  calendarService,
		clock:            clock,
	}
}

// CategoryTotalResponse represents one category of the expense breakdown
type CategoryTotalResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

// DashboardSummaryResponse represents the dashboard summary API response
type DashboardSummaryResponse struct {
	Year              int                       `json:"year"`
	Month             int                       `json:"month"`
	Balance           string                    `json:"balance"`
	TotalIncome       string                    `json:"totalIncome"`
	TotalExpenses     string                    `json:"totalExpenses"`
	CategoryBreakdown []CategoryTotalResponse   `json:"categoryBreakdown"`
	Budgets           []BudgetWithSpentResponse `json:"budgets"`
}

// TrendPointResponse is the expense total of one day
type TrendPointResponse struct {
	Date  string `json:"date"`
	Total string `json:"total"`
}

// SpendingTrendResponse represents the daily expense series
type SpendingTrendResponse struct {
	StartDate string               `json:"startDate"`
	EndDate   string               `json:"endDate"` // inclusive
	Points    []TrendPointResponse `json:"points"`
}

// CalendarBudgetResponse is a budget as shown on a calendar day
type CalendarBudgetResponse struct {
	ID       int32  `json:"id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
	Timeline string `json:"timeline"`
}

// CalendarDayResponse lists the budgets active on one day
type CalendarDayResponse struct {
	Count      int                      `json:"count"`
	TotalLimit string                   `json:"totalLimit"`
	Budgets    []CalendarBudgetResponse `json:"budgets"`
}

// CalendarFailureResponse describes a budget left off the calendar
type CalendarFailureResponse struct {
	BudgetID int32  `json:"budgetId"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// CalendarResponse maps YYYY-MM-DD day keys to the budgets active that day.
// ActiveDays lists, in order, the keys with at least one budget.
type CalendarResponse struct {
	Year       int                            `json:"year"`
	Month      int                            `json:"month"`
	Days       map[string]CalendarDayResponse `json:"days"`
	ActiveDays []string                       `json:"activeDays"`
	Failures   []CalendarFailureResponse      `json:"failures"`
	Error      *string                        `json:"error,omitempty"`
}

// GetSummary handles GET /api/v1/dashboard/summary
// Accepts optional year and month query params for historical navigation
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	year, month, err := h.parseYearMonth(c)
	if err != nil {
		return respondRequestError(c, err)
	}

	summary, err := h.dashboardService.GetSummaryForMonth(workspaceID, year, month)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("year", year).Int("month", month).Msg("Failed to get dashboard summary")
		return NewInternalError(c, "Failed to get dashboard summary")
	}

	breakdown := make([]CategoryTotalResponse, 0, len(summary.CategoryBreakdown))
	for _, ct := range summary.CategoryBreakdown {
		breakdown = append(breakdown, CategoryTotalResponse{
			Category: ct.Category,
			Total:    formatMoney(ct.Total),
		})
	}

	return c.JSON(http.StatusOK, DashboardSummaryResponse{
		Year:              summary.Year,
		Month:             summary.Month,
		Balance:           formatMoney(summary.Balance),
		TotalIncome:       formatMoney(summary.TotalIncome),
		TotalExpenses:     formatMoney(summary.TotalExpenses),
		CategoryBreakdown: breakdown,
		Budgets:           toBudgetWithSpentResponses(summary.Budgets),
	})
}

// GetSpendingTrend handles GET /api/v1/dashboard/trend?days=N
func (h *DashboardHandler) GetSpendingTrend(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	days := 0
	if v := c.QueryParam("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "Invalid days format", []ValidationError{{Field: "days", Message: "Must be a valid integer"}})
		}
		days = parsed
	}
	if days < 0 || days > domain.MaxTrendDays {
		return NewValidationError(c, "Days out of range", []ValidationError{{Field: "days", Message: "Must be between 1 and 366"}})
	}

	trend, err := h.dashboardService.GetSpendingTrend(workspaceID, days)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Days out of range", []ValidationError{{Field: "days", Message: "Must be between 1 and 366"}})
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("days", days).Msg("Failed to get spending trend")
		return NewInternalError(c, "Failed to get spending trend")
	}

	points := make([]TrendPointResponse, 0, len(trend.Points))
	for _, p := range trend.Points {
		points = append(points, TrendPointResponse{
			Date:  util.DayKey(p.Date),
			Total: formatMoney(p.Total),
		})
	}

	return c.JSON(http.StatusOK, SpendingTrendResponse{
		StartDate: util.DayKey(trend.Start),
		EndDate:   util.DayKey(trend.End.AddDate(0, 0, -1)),
		Points:    points,
	})
}

// GetCalendar handles GET /api/v1/dashboard/calendar
// Budgets that could not be placed are listed under failures; the rest of the
// month is still returned.
func (h *DashboardHandler) GetCalendar(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	year, month, err := h.parseYearMonth(c)
	if err != nil {
		return respondRequestError(c, err)
	}

	cal, err := h.calendarService.GetCalendar(workspaceID, year, time.Month(month))
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("year", year).Int("month", month).Msg("Failed to get calendar")
		return NewInternalError(c, "Failed to get calendar")
	}

	resp := CalendarResponse{
		Year:       year,
		Month:      month,
		Days:       make(map[string]CalendarDayResponse, len(cal.Days)),
		ActiveDays: cal.ActiveDays(),
		Failures:   make([]CalendarFailureResponse, 0, len(cal.Failures)),
	}
	for key, day := range cal.Days {
		budgets := make([]CalendarBudgetResponse, 0, day.Count())
		for _, b := range day.Budgets {
			budgets = append(budgets, CalendarBudgetResponse{
				ID:       b.ID,
				Category: b.Category,
				Limit:    formatMoney(b.Limit),
				Timeline: string(b.Timeline),
			})
		}
		resp.Days[key] = CalendarDayResponse{
			Count:      day.Count(),
			TotalLimit: formatMoney(day.TotalLimit),
			Budgets:    budgets,
		}
	}
	for _, f := range cal.Failures {
		resp.Failures = append(resp.Failures, CalendarFailureResponse{
			BudgetID: f.BudgetID,
			Category: f.Category,
			Reason:   f.Err.Error(),
		})
	}
	if cal.Err != nil {
		msg := cal.Err.Error()
		resp.Error = &msg
	}

	return c.JSON(http.StatusOK, resp)
}

// parseYearMonth reads optional year and month query params, defaulting to the
// reference clock's current month.
func (h *DashboardHandler) parseYearMonth(c echo.Context) (int, int, error) {
	now := h.clock.Now()
	year := now.Year()
	month := int(now.Month())

	if yearStr := c.QueryParam("year"); yearStr != "" {
		parsedYear, err := strconv.Atoi(yearStr)
		if err != nil {
			return 0, 0, newRequestError("Invalid year format", "year", "Must be a valid integer")
		}
		if parsedYear < 2000 || parsedYear > 2100 {
			return 0, 0, newRequestError("Year must be between 2000 and 2100", "year", "Must be between 2000 and 2100")
		}
		year = parsedYear
	}
	if monthStr := c.QueryParam("month"); monthStr != "" {
		parsedMonth, err := strconv.Atoi(monthStr)
		if err != nil {
			return 0, 0, newRequestError("Invalid month format", "month", "Must be a valid integer")
		}
		if parsedMonth < 1 || parsedMonth > 12 {
			return 0, 0, newRequestError("Month must be between 1 and 12", "month", "Must be between 1 and 12")
		}
		month = parsedMonth
	}

	return year, month, nil
}

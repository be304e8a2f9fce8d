package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/middleware"
	"github.com/dafibh/budgetly/budgetly-backend/internal/service"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
	}
}

// BudgetRequest represents the create and update budget request body
type BudgetRequest struct {
	Category  string  `json:"category"`
	Limit     string  `json:"limit"`
	Timeline  string  `json:"timeline"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
}

// BudgetResponse represents a stored budget in API responses
type BudgetResponse struct {
	ID          int32   `json:"id"`
	WorkspaceID int32   `json:"workspaceId"`
	Category    string  `json:"category"`
	Limit       string  `json:"limit"`
	Timeline    string  `json:"timeline"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Month       string  `json:"month"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// BudgetWithSpentResponse is a budget with its spend over the resolved interval.
// IntervalStart, IntervalEnd and IntervalDays are null when the interval could
// not be resolved; IntervalEnd is exclusive.
type BudgetWithSpentResponse struct {
	BudgetResponse
	Spent         string  `json:"spent"`
	Remaining     string  `json:"remaining"`
	Percentage    string  `json:"percentage"`
	Status        string  `json:"status"`
	IntervalStart *string `json:"intervalStart"`
	IntervalEnd   *string `json:"intervalEnd"`
	IntervalDays  *int    `json:"intervalDays"`
}

var budgetFieldErrors = []fieldError{
	{domain.ErrCategoryRequired, "category", "Category is required"},
	{domain.ErrCategoryTooLong, "category", "Category must be 100 characters or less"},
	{domain.ErrInvalidAmount, "limit", "Limit must be zero or positive"},
	{domain.ErrInvalidTimeline, "timeline", "Timeline must be one of: daily, weekly, monthly, yearly, custom"},
	{domain.ErrDatesRequired, "startDate", "Custom budgets require startDate and endDate"},
	{domain.ErrInvalidDate, "startDate", "Dates must be in YYYY-MM-DD format"},
	{domain.ErrInvalidDateRange, "endDate", "End date must be after start date"},
	{domain.ErrInvalidMonthTag, "month", "Must be in YYYY-MM format"},
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	input, err := bindBudgetInput(c)
	if err != nil {
		return respondRequestError(c, err)
	}

	budget, err := h.budgetService.CreateBudget(workspaceID, *input)
	if err != nil {
		return respondServiceError(c, err, "create budget", budgetFieldErrors)
	}

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// ListBudgets handles GET /api/v1/budgets?month=YYYY-MM
func (h *BudgetHandler) ListBudgets(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	budgets, err := h.budgetService.ListBudgets(workspaceID, c.QueryParam("month"))
	if err != nil {
		return respondServiceError(c, err, "list budgets", budgetFieldErrors)
	}

	return c.JSON(http.StatusOK, toBudgetWithSpentResponses(budgets))
}

// GetBudget handles GET /api/v1/budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondRequestError(c, err)
	}

	budget, err := h.budgetService.GetBudget(workspaceID, id)
	if err != nil {
		return respondServiceError(c, err, "get budget", nil)
	}

	return c.JSON(http.StatusOK, toBudgetWithSpentResponse(budget))
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondRequestError(c, err)
	}

	input, err := bindBudgetInput(c)
	if err != nil {
		return respondRequestError(c, err)
	}

	budget, err := h.budgetService.UpdateBudget(workspaceID, id, *input)
	if err != nil {
		return respondServiceError(c, err, "update budget", budgetFieldErrors)
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondRequestError(c, err)
	}

	if err := h.budgetService.DeleteBudget(workspaceID, id); err != nil {
		return respondServiceError(c, err, "delete budget", nil)
	}

	return c.NoContent(http.StatusNoContent)
}

func bindBudgetInput(c echo.Context) (*service.BudgetInput, error) {
	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return nil, newRequestError("Invalid request body", "", "")
	}

	limit, err := decimal.NewFromString(req.Limit)
	if err != nil {
		return nil, newRequestError("Invalid limit", "limit", "Must be a valid decimal number")
	}

	return &service.BudgetInput{
		Category:  req.Category,
		Limit:     limit,
		Timeline:  req.Timeline,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}, nil
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          b.ID,
		WorkspaceID: b.WorkspaceID,
		Category:    b.Category,
		Limit:       formatMoney(b.Limit),
		Timeline:    string(b.Timeline),
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Month:       b.Month,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	}
}

func toBudgetWithSpentResponse(b *domain.BudgetWithSpent) BudgetWithSpentResponse {
	resp := BudgetWithSpentResponse{
		BudgetResponse: toBudgetResponse(b.Budget),
		Spent:          formatMoney(b.Spent),
		Remaining:      formatMoney(b.Remaining),
		Percentage:     formatMoney(b.Percentage),
		Status:         string(b.Status),
	}
	if b.Interval != nil {
		start := util.DayKey(b.Interval.Start)
		end := util.DayKey(b.Interval.End)
		days := b.Interval.Days()
		resp.IntervalStart = &start
		resp.IntervalEnd = &end
		resp.IntervalDays = &days
	}
	return resp
}

func toBudgetWithSpentResponses(budgets []*domain.BudgetWithSpent) []BudgetWithSpentResponse {
	out := make([]BudgetWithSpentResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetWithSpentResponse(b))
	}
	return out
}

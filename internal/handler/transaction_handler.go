package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/middleware"
	"github.com/dafibh/budgetly/budgetly-backend/internal/service"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// TransactionRequest represents the create and update transaction request body
type TransactionRequest struct {
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Date        *string `json:"date,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              int32  `json:"id"`
	WorkspaceID     int32  `json:"workspaceId"`
	Description     string `json:"description"`
	Amount          string `json:"amount"`
	Type            string `json:"type"`
	Category        string `json:"category"`
	TransactionDate string `json:"transactionDate"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents a page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

var transactionFieldErrors = []fieldError{
	{domain.ErrInvalidAmount, "amount", "Amount must be zero or positive"},
	{domain.ErrInvalidTransactionType, "type", "Type must be one of: income, expense"},
	{domain.ErrCategoryRequired, "category", "Category is required"},
	{domain.ErrCategoryTooLong, "category", "Category must be 100 characters or less"},
	{domain.ErrDescriptionTooLong, "description", "Description must be 255 characters or less"},
	{domain.ErrInvalidDate, "date", "Must be in YYYY-MM-DD format"},
	{domain.ErrInvalidDateRange, "startDate", "Start date must not be after end date"},
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var transactionDate *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := util.ParseDay(*req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		transactionDate = &parsed
	}

	transaction, err := h.transactionService.CreateTransaction(workspaceID, service.CreateTransactionInput{
		Description:     req.Description,
		Amount:          amount,
		Type:            domain.TransactionType(req.Type),
		Category:        req.Category,
		TransactionDate: transactionDate,
	})
	if err != nil {
		return respondServiceError(c, err, "create transaction", transactionFieldErrors)
	}

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	filters := &domain.TransactionFilters{
		Page:     1,
		PageSize: domain.DefaultPageSize,
	}

	if v := c.QueryParam("type"); v != "" {
		txType := domain.TransactionType(v)
		filters.Type = &txType
	}
	if v := c.QueryParam("category"); v != "" {
		filters.Category = &v
	}
	if v := c.QueryParam("startDate"); v != "" {
		start, err := util.ParseDay(v)
		if err != nil {
			return NewValidationError(c, "Invalid startDate", []ValidationError{
				{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		filters.StartDate = &start
	}
	if v := c.QueryParam("endDate"); v != "" {
		end, err := util.ParseDay(v)
		if err != nil {
			return NewValidationError(c, "Invalid endDate", []ValidationError{
				{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		filters.EndDate = &end
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return NewValidationError(c, "Invalid page", []ValidationError{
				{Field: "page", Message: "Must be a positive integer"},
			})
		}
		filters.Page = int32(page)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		pageSize, err := strconv.Atoi(v)
		if err != nil || pageSize < 1 {
			return NewValidationError(c, "Invalid pageSize", []ValidationError{
				{Field: "pageSize", Message: "Must be a positive integer"},
			})
		}
		if pageSize > domain.MaxPageSize {
			pageSize = domain.MaxPageSize
		}
		filters.PageSize = int32(pageSize)
	}

	result, err := h.transactionService.GetTransactions(workspaceID, filters)
	if err != nil {
		return respondServiceError(c, err, "get transactions", transactionFieldErrors)
	}

	data := make([]TransactionResponse, 0, len(result.Data))
	for _, t := range result.Data {
		data = append(data, toTransactionResponse(t))
	}

	return c.JSON(http.StatusOK, PaginatedTransactionsResponse{
		Data:       data,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondRequestError(c, err)
	}

	transaction, err := h.transactionService.GetTransactionByID(workspaceID, id)
	if err != nil {
		return respondServiceError(c, err, "get transaction", nil)
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondRequestError(c, err)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	if req.Date == nil || *req.Date == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "date", Message: "Date is required"},
		})
	}
	transactionDate, err := util.ParseDay(*req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	transaction, err := h.transactionService.UpdateTransaction(workspaceID, id, service.UpdateTransactionInput{
		Description:     req.Description,
		Amount:          amount,
		Type:            domain.TransactionType(req.Type),
		Category:        req.Category,
		TransactionDate: transactionDate,
	})
	if err != nil {
		return respondServiceError(c, err, "update transaction", transactionFieldErrors)
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondRequestError(c, err)
	}

	if err := h.transactionService.DeleteTransaction(workspaceID, id); err != nil {
		return respondServiceError(c, err, "delete transaction", nil)
	}

	return c.NoContent(http.StatusNoContent)
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		WorkspaceID:     t.WorkspaceID,
		Description:     t.Description,
		Amount:          formatMoney(t.Amount),
		Type:            string(t.Type),
		Category:        t.Category,
		TransactionDate: util.DayKey(t.TransactionDate),
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.Format(time.RFC3339),
	}
}

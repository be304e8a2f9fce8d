package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://budgetly.app/errors/validation"
	ErrorTypeNotFound     = "https://budgetly.app/errors/not-found"
	ErrorTypeUnauthorized = "https://budgetly.app/errors/unauthorized"
	ErrorTypeInternal     = "https://budgetly.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldError binds a domain error to the request field it describes
type fieldError struct {
	err   error
	field string
	msg   string
}

// respondServiceError maps a service error to a Problem Details response.
// Errors listed in fields become validation errors on that field; not-found
// errors become 404; anything else is logged and reported as internal.
func respondServiceError(c echo.Context, err error, action string, fields []fieldError) error {
	for _, f := range fields {
		if errors.Is(err, f.err) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: f.field, Message: f.msg},
			})
		}
	}

	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	}

	log.Error().
		Err(err).
		Int32("workspace_id", middleware.GetWorkspaceID(c)).
		Str("path", c.Request().URL.Path).
		Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}

// requestError is a malformed request parameter, answered with a validation response
type requestError struct {
	detail string
	field  string
	msg    string
}

func (e *requestError) Error() string {
	return e.detail
}

func newRequestError(detail, field, msg string) error {
	return &requestError{detail: detail, field: field, msg: msg}
}

// respondRequestError writes a requestError as a validation response
func respondRequestError(c echo.Context, err error) error {
	var re *requestError
	if errors.As(err, &re) {
		var fields []ValidationError
		if re.field != "" {
			fields = []ValidationError{{Field: re.field, Message: re.msg}}
		}
		return NewValidationError(c, re.detail, fields)
	}
	return NewInternalError(c, "Failed to read request")
}

// parseIDParam parses a positive int32 path parameter
func parseIDParam(c echo.Context, name string) (int32, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, newRequestError("Invalid "+name, name, "Must be a positive integer")
	}
	return int32(id), nil
}

// formatMoney renders an amount with two fraction digits
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

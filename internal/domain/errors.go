package domain

import "errors"

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUserNotFound      = errors.New("user not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrNameRequired      = errors.New("name is required")
	ErrNameTooLong       = errors.New("name exceeds maximum length")

	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidAmount          = errors.New("amount must be zero or positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrCategoryRequired       = errors.New("category is required")
	ErrCategoryTooLong        = errors.New("category exceeds maximum length")
	ErrDescriptionTooLong     = errors.New("description exceeds maximum length")

	ErrBudgetNotFound   = errors.New("budget not found")
	ErrInvalidTimeline  = errors.New("invalid timeline")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrDatesRequired    = errors.New("custom budgets require start and end dates")
	ErrInvalidMonthTag  = errors.New("invalid month tag")
)

// Validation constants
const (
	MaxNameLength        = 255
	MaxCategoryLength    = 100
	MaxDescriptionLength = 255
)

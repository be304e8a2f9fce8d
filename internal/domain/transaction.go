package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is one of the known transaction types
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type Transaction struct {
	ID              int32           `json:"id"`
	WorkspaceID     int32           `json:"workspaceId"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	Category        string          `json:"category"`
	TransactionDate time.Time       `json:"transactionDate"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`
}

type TransactionFilters struct {
	Type      *TransactionType
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time // inclusive
	Page      int32
	PageSize  int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// UpdateTransactionData contains the fields that can be updated on a transaction
type UpdateTransactionData struct {
	Description     string
	Amount          decimal.Decimal
	Type            TransactionType
	Category        string
	TransactionDate time.Time
}

// CategoryTotal is the summed expense amount of one category
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// DailyTotal is the summed expense amount of one calendar day
type DailyTotal struct {
	Date  time.Time
	Total decimal.Decimal
}

type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(workspaceID int32, id int32) (*Transaction, error)
	GetByWorkspace(workspaceID int32, filters *TransactionFilters) (*PaginatedTransactions, error)
	Update(workspaceID int32, id int32, data *UpdateTransactionData) (*Transaction, error)
	SoftDelete(workspaceID int32, id int32) error

	// SumExpensesByCategory sums expense amounts of one category with
	// transaction_date in [startDate, endDate).
	SumExpensesByCategory(workspaceID int32, category string, startDate, endDate time.Time) (decimal.Decimal, error)
	// SumByType sums amounts of one type with transaction_date in [startDate, endDate).
	// Zero times leave that side of the range open.
	SumByType(workspaceID int32, txType TransactionType, startDate, endDate time.Time) (decimal.Decimal, error)
	GetExpensesByCategory(workspaceID int32, startDate, endDate time.Time) ([]*CategoryTotal, error)
	GetDailyExpenses(workspaceID int32, startDate, endDate time.Time) ([]*DailyTotal, error)
}

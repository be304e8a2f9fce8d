package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, workspace_id, description, amount, type, category, transaction_date, created_at, updated_at, deleted_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a new transaction
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (workspace_id, description, amount, type, category, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionColumns,
		transaction.WorkspaceID,
		transaction.Description,
		amount,
		string(transaction.Type),
		transaction.Category,
		timeToPgDate(transaction.TransactionDate),
	)
	return scanTransaction(row)
}

// GetByID retrieves a transaction by its ID within a workspace
func (r *TransactionRepository) GetByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// GetByWorkspace retrieves transactions for a workspace with optional filters and pagination
func (r *TransactionRepository) GetByWorkspace(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	// Set default pagination values
	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)

	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
			if pageSize > domain.MaxPageSize {
				pageSize = domain.MaxPageSize
			}
		}
	}

	offset := (page - 1) * pageSize

	where := []string{"workspace_id = $1", "deleted_at IS NULL"}
	args := []any{workspaceID}
	addFilter := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filters != nil {
		if filters.Type != nil {
			addFilter("type = $%d", string(*filters.Type))
		}
		if filters.Category != nil {
			addFilter("category = $%d", *filters.Category)
		}
		if filters.StartDate != nil {
			addFilter("transaction_date >= $%d", timeToPgDate(*filters.StartDate))
		}
		if filters.EndDate != nil {
			addFilter("transaction_date <= $%d", timeToPgDate(*filters.EndDate))
		}
	}
	whereClause := strings.Join(where, " AND ")

	var totalItems int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE `+whereClause, args...).Scan(&totalItems); err != nil {
		return nil, err
	}

	listArgs := append(append([]any{}, args...), pageSize, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE %s
		ORDER BY transaction_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, transactionColumns, whereClause, len(args)+1, len(args)+2),
		listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Transaction, 0, pageSize)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       result,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// Update updates a transaction within a workspace
func (r *TransactionRepository) Update(workspaceID int32, id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET description = $3, amount = $4, type = $5, category = $6, transaction_date = $7, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+transactionColumns,
		workspaceID, id,
		data.Description,
		amount,
		string(data.Type),
		data.Category,
		timeToPgDate(data.TransactionDate),
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// SoftDelete marks a transaction as deleted
func (r *TransactionRepository) SoftDelete(workspaceID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE transactions SET deleted_at = NOW(), updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SumExpensesByCategory sums expense amounts of one category in [startDate, endDate)
func (r *TransactionRepository) SumExpensesByCategory(workspaceID int32, category string, startDate, endDate time.Time) (decimal.Decimal, error) {
	ctx := context.Background()

	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::numeric
		FROM transactions
		WHERE workspace_id = $1
		  AND type = 'expense'
		  AND category = $2
		  AND transaction_date >= $3
		  AND transaction_date < $4
		  AND deleted_at IS NULL`,
		workspaceID, category, timeToPgDate(startDate), timeToPgDate(endDate)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SumByType sums transactions by type within [startDate, endDate); zero dates leave that side open
func (r *TransactionRepository) SumByType(workspaceID int32, txType domain.TransactionType, startDate, endDate time.Time) (decimal.Decimal, error) {
	ctx := context.Background()

	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::numeric
		FROM transactions
		WHERE workspace_id = $1
		  AND type = $2
		  AND ($3::date IS NULL OR transaction_date >= $3)
		  AND ($4::date IS NULL OR transaction_date < $4)
		  AND deleted_at IS NULL`,
		workspaceID, string(txType), optionalPgDate(startDate), optionalPgDate(endDate)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// GetExpensesByCategory returns expense totals per category in [startDate, endDate), largest first
func (r *TransactionRepository) GetExpensesByCategory(workspaceID int32, startDate, endDate time.Time) ([]*domain.CategoryTotal, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT category, SUM(amount)::numeric AS total
		FROM transactions
		WHERE workspace_id = $1
		  AND type = 'expense'
		  AND transaction_date >= $2
		  AND transaction_date < $3
		  AND deleted_at IS NULL
		GROUP BY category
		ORDER BY total DESC, category`,
		workspaceID, timeToPgDate(startDate), timeToPgDate(endDate))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []*domain.CategoryTotal
	for rows.Next() {
		var (
			category string
			total    pgtype.Numeric
		)
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		totals = append(totals, &domain.CategoryTotal{Category: category, Total: pgNumericToDecimal(total)})
	}
	return totals, rows.Err()
}

// GetDailyExpenses returns expense totals per day in [startDate, endDate).
// Days without expenses are omitted.
func (r *TransactionRepository) GetDailyExpenses(workspaceID int32, startDate, endDate time.Time) ([]*domain.DailyTotal, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT transaction_date, SUM(amount)::numeric
		FROM transactions
		WHERE workspace_id = $1
		  AND type = 'expense'
		  AND transaction_date >= $2
		  AND transaction_date < $3
		  AND deleted_at IS NULL
		GROUP BY transaction_date
		ORDER BY transaction_date`,
		workspaceID, timeToPgDate(startDate), timeToPgDate(endDate))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []*domain.DailyTotal
	for rows.Next() {
		var (
			day   pgtype.Date
			total pgtype.Numeric
		)
		if err := rows.Scan(&day, &total); err != nil {
			return nil, err
		}
		totals = append(totals, &domain.DailyTotal{Date: pgDateToTime(day), Total: pgNumericToDecimal(total)})
	}
	return totals, rows.Err()
}

// Helper functions

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t               domain.Transaction
		amount          pgtype.Numeric
		txType          string
		transactionDate pgtype.Date
		createdAt       pgtype.Timestamptz
		updatedAt       pgtype.Timestamptz
		deletedAt       pgtype.Timestamptz
	)
	err := row.Scan(
		&t.ID,
		&t.WorkspaceID,
		&t.Description,
		&amount,
		&txType,
		&t.Category,
		&transactionDate,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Amount = pgNumericToDecimal(amount)
	t.Type = domain.TransactionType(txType)
	t.TransactionDate = pgDateToTime(transactionDate)
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	t.DeletedAt = pgTimestamptzToTimePtr(deletedAt)
	return &t, nil
}

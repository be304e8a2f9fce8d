package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetColumns = `id, workspace_id, category, limit_amount, timeline, start_date, end_date, month, created_at, updated_at, deleted_at`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create creates a new budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()

	limit, err := decimalToPgNumeric(budget.Limit)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (workspace_id, category, limit_amount, timeline, start_date, end_date, month)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+budgetColumns,
		budget.WorkspaceID,
		budget.Category,
		limit,
		string(budget.Timeline),
		stringPtrToPgText(budget.StartDate),
		stringPtrToPgText(budget.EndDate),
		budget.Month,
	)
	return scanBudget(row)
}

// GetByID retrieves a budget by its ID within a workspace
func (r *BudgetRepository) GetByID(workspaceID int32, id int32) (*domain.Budget, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id)
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// ListByMonth returns the budgets tagged with month plus every non-monthly budget.
// Rows with an empty or unrecognized timeline count as monthly.
func (r *BudgetRepository) ListByMonth(workspaceID int32, month string) ([]*domain.Budget, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE workspace_id = $1
		  AND deleted_at IS NULL
		  AND (month = $2 OR LOWER(TRIM(timeline)) IN ('daily', 'weekly', 'yearly', 'custom'))
		ORDER BY category, id`,
		workspaceID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// Update updates a budget within a workspace
func (r *BudgetRepository) Update(workspaceID int32, id int32, data *domain.UpdateBudgetData) (*domain.Budget, error) {
	ctx := context.Background()

	limit, err := decimalToPgNumeric(data.Limit)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE budgets
		SET category = $3, limit_amount = $4, timeline = $5, start_date = $6, end_date = $7, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+budgetColumns,
		workspaceID, id,
		data.Category,
		limit,
		string(data.Timeline),
		stringPtrToPgText(data.StartDate),
		stringPtrToPgText(data.EndDate),
	)
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// SoftDelete marks a budget as deleted
func (r *BudgetRepository) SoftDelete(workspaceID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE budgets SET deleted_at = NOW(), updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b         domain.Budget
		limit     pgtype.Numeric
		timeline  string
		startDate pgtype.Text
		endDate   pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
		deletedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&b.ID,
		&b.WorkspaceID,
		&b.Category,
		&limit,
		&timeline,
		&startDate,
		&endDate,
		&b.Month,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Limit = pgNumericToDecimal(limit)
	b.Timeline = domain.ParseTimeline(timeline)
	b.StartDate = pgTextToStringPtr(startDate)
	b.EndDate = pgTextToStringPtr(endDate)
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	b.DeletedAt = pgTimestamptzToTimePtr(deletedAt)
	return &b, nil
}

package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/testutil"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBudgetTestService(now time.Time) (*BudgetService, *testutil.MockBudgetRepository, *testutil.MockTransactionRepository, *testutil.RecordingPublisher) {
	budgetRepo := testutil.NewMockBudgetRepository()
	txRepo := testutil.NewMockTransactionRepository()
	publisher := &testutil.RecordingPublisher{}
	svc := NewBudgetService(budgetRepo, NewSpendService(txRepo), util.FixedClock{T: now})
	svc.SetEventPublisher(publisher)
	return svc, budgetRepo, txRepo, publisher
}

func TestBudgetService_CreateBudget(t *testing.T) {
	svc, _, _, publisher := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))

	budget, err := svc.CreateBudget(1, BudgetInput{
		Category: "  Groceries ",
		Limit:    decimal.NewFromInt(400),
		Timeline: "WEEKLY",
	})
	require.NoError(t, err)

	assert.Equal(t, "Groceries", budget.Category)
	assert.Equal(t, domain.TimelineWeekly, budget.Timeline)
	assert.Equal(t, "2024-03", budget.Month)
	assert.Nil(t, budget.StartDate)
	assert.Equal(t, []string{"budget.created"}, publisher.Types())
}

func TestBudgetService_CreateBudget_DefaultsToMonthly(t *testing.T) {
	svc, _, _, _ := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))

	budget, err := svc.CreateBudget(1, BudgetInput{Category: "Food", Limit: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, domain.TimelineMonthly, budget.Timeline)
}

func TestBudgetService_CreateBudget_DropsDatesForNonCustom(t *testing.T) {
	svc, _, _, _ := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))

	budget, err := svc.CreateBudget(1, BudgetInput{
		Category:  "Food",
		Limit:     decimal.NewFromInt(1),
		Timeline:  "daily",
		StartDate: strPtr("2024-03-01"),
		EndDate:   strPtr("2024-03-31"),
	})
	require.NoError(t, err)
	assert.Nil(t, budget.StartDate)
	assert.Nil(t, budget.EndDate)
}

func TestBudgetService_CreateBudget_Validation(t *testing.T) {
	longCategory := make([]byte, domain.MaxCategoryLength+1)
	for i := range longCategory {
		longCategory[i] = 'x'
	}

	tests := []struct {
		name    string
		input   BudgetInput
		wantErr error
	}{
		{"empty category", BudgetInput{Category: "  ", Limit: decimal.NewFromInt(1)}, domain.ErrCategoryRequired},
		{"long category", BudgetInput{Category: string(longCategory), Limit: decimal.NewFromInt(1)}, domain.ErrCategoryTooLong},
		{"negative limit", BudgetInput{Category: "Food", Limit: decimal.NewFromInt(-1)}, domain.ErrInvalidAmount},
		{"unknown timeline", BudgetInput{Category: "Food", Limit: decimal.NewFromInt(1), Timeline: "fortnightly"}, domain.ErrInvalidTimeline},
		{"custom without dates", BudgetInput{Category: "Trip", Limit: decimal.NewFromInt(1), Timeline: "custom"}, domain.ErrDatesRequired},
		{"custom bad date", BudgetInput{Category: "Trip", Limit: decimal.NewFromInt(1), Timeline: "custom", StartDate: strPtr("2024-13-01"), EndDate: strPtr("2024-12-31")}, domain.ErrInvalidDate},
		{"custom reversed", BudgetInput{Category: "Trip", Limit: decimal.NewFromInt(1), Timeline: "custom", StartDate: strPtr("2024-06-30"), EndDate: strPtr("2024-06-01")}, domain.ErrInvalidDateRange},
		{"custom same day", BudgetInput{Category: "Trip", Limit: decimal.NewFromInt(1), Timeline: "custom", StartDate: strPtr("2024-06-01"), EndDate: strPtr("2024-06-01")}, domain.ErrInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, publisher := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))

			_, err := svc.CreateBudget(1, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.Budgets)
			assert.Empty(t, publisher.Events)
		})
	}
}

func TestBudgetService_CreateBudget_Custom(t *testing.T) {
	svc, _, _, _ := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))

	budget, err := svc.CreateBudget(1, BudgetInput{
		Category:  "Holiday",
		Limit:     decimal.NewFromInt(2000),
		Timeline:  "custom",
		StartDate: strPtr(" 2024-06-01"),
		EndDate:   strPtr("2024-06-14 "),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", *budget.StartDate)
	assert.Equal(t, "2024-06-14", *budget.EndDate)
}

func TestBudgetService_ListBudgets(t *testing.T) {
	svc, budgetRepo, txRepo, _ := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))

	budgetRepo.AddBudget(&domain.Budget{WorkspaceID: 1, Category: "Food", Limit: decimal.NewFromInt(100), Timeline: domain.TimelineMonthly, Month: "2024-03"})
	budgetRepo.AddBudget(&domain.Budget{WorkspaceID: 1, Category: "Rent", Limit: decimal.NewFromInt(900), Timeline: domain.TimelineMonthly, Month: "2024-02"})
	budgetRepo.AddBudget(&domain.Budget{WorkspaceID: 1, Category: "Coffee", Limit: decimal.NewFromInt(20), Timeline: domain.TimelineWeekly, Month: "2024-01"})
	budgetRepo.AddBudget(&domain.Budget{WorkspaceID: 2, Category: "Food", Limit: decimal.NewFromInt(100), Timeline: domain.TimelineMonthly, Month: "2024-03"})

	txRepo.AddTransaction(expense(1, "Food", 90, day(2024, 3, 2)))
	txRepo.AddTransaction(expense(1, "Coffee", 25, day(2024, 3, 9)))

	budgets, err := svc.ListBudgets(1, "")
	require.NoError(t, err)
	require.Len(t, budgets, 2)

	assert.Equal(t, "Coffee", budgets[0].Budget.Category)
	assert.Equal(t, domain.BudgetStatusOver, budgets[0].Status)
	assert.Equal(t, "Food", budgets[1].Budget.Category)
	assert.Equal(t, domain.BudgetStatusWarning, budgets[1].Status)
	assert.Equal(t, "90.00", budgets[1].Percentage.StringFixed(2))
}

func TestBudgetService_ListBudgets_PastMonthUsesMonthEnd(t *testing.T) {
	svc, budgetRepo, txRepo, _ := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))

	budgetRepo.AddBudget(&domain.Budget{WorkspaceID: 1, Category: "Rent", Limit: decimal.NewFromInt(900), Timeline: domain.TimelineMonthly, Month: "2024-02"})
	txRepo.AddTransaction(expense(1, "Rent", 900, day(2024, 2, 1)))
	txRepo.AddTransaction(expense(1, "Rent", 900, day(2024, 3, 1)))

	budgets, err := svc.ListBudgets(1, "2024-02")
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "900.00", budgets[0].Spent.StringFixed(2))
	assert.Equal(t, day(2024, 2, 1), budgets[0].Interval.Start)
}

func TestBudgetService_ListBudgets_InvalidMonth(t *testing.T) {
	svc, _, _, _ := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))

	_, err := svc.ListBudgets(1, "March")
	assert.ErrorIs(t, err, domain.ErrInvalidMonthTag)
}

func TestBudgetService_ListBudgets_StoreError(t *testing.T) {
	svc, budgetRepo, _, _ := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))
	budgetRepo.ListByMonthFn = func(int32, string) ([]*domain.Budget, error) {
		return nil, errors.New("db down")
	}

	_, err := svc.ListBudgets(1, "2024-03")
	assert.EqualError(t, err, "db down")
}

func TestBudgetService_GetBudget(t *testing.T) {
	svc, budgetRepo, txRepo, _ := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))
	budgetRepo.AddBudget(&domain.Budget{ID: 5, WorkspaceID: 1, Category: "Food", Limit: decimal.NewFromInt(100), Timeline: domain.TimelineDaily, Month: "2024-03"})
	txRepo.AddTransaction(expense(1, "Food", 12, day(2024, 3, 10)))
	txRepo.AddTransaction(expense(1, "Food", 50, day(2024, 3, 9)))

	got, err := svc.GetBudget(1, 5)
	require.NoError(t, err)
	assert.Equal(t, "12.00", got.Spent.StringFixed(2))

	_, err = svc.GetBudget(2, 5)
	assert.ErrorIs(t, err, domain.ErrBudgetNotFound)
}

func TestBudgetService_UpdateAndDelete(t *testing.T) {
	svc, budgetRepo, _, publisher := newBudgetTestService(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))
	budgetRepo.AddBudget(&domain.Budget{ID: 3, WorkspaceID: 1, Category: "Food", Limit: decimal.NewFromInt(100), Timeline: domain.TimelineMonthly, Month: "2024-03"})

	updated, err := svc.UpdateBudget(1, 3, BudgetInput{Category: "Food", Limit: decimal.NewFromInt(150), Timeline: "yearly"})
	require.NoError(t, err)
	assert.Equal(t, domain.TimelineYearly, updated.Timeline)
	assert.Equal(t, "150", updated.Limit.String())
	assert.Equal(t, "2024-03", updated.Month)

	require.NoError(t, svc.DeleteBudget(1, 3))
	assert.ErrorIs(t, svc.DeleteBudget(1, 3), domain.ErrBudgetNotFound)

	assert.Equal(t, []string{"budget.updated", "budget.deleted"}, publisher.Types())
}

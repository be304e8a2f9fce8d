package service

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/cache"
	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string {
	return &s
}

func expense(workspaceID int32, category string, amount int64, date time.Time) *domain.Transaction {
	return &domain.Transaction{
		WorkspaceID:     workspaceID,
		Amount:          decimal.NewFromInt(amount),
		Type:            domain.TransactionTypeExpense,
		Category:        category,
		TransactionDate: date,
	}
}

func income(workspaceID int32, category string, amount int64, date time.Time) *domain.Transaction {
	tx := expense(workspaceID, category, amount, date)
	tx.Type = domain.TransactionTypeIncome
	return tx
}

func TestSpendService_SpentForBudget_MonthlyExample(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	repo.AddTransaction(expense(1, "Food", 100, day(2024, 1, 5)))
	repo.AddTransaction(expense(1, "Food", 50, day(2024, 1, 31)))
	repo.AddTransaction(expense(1, "Food", 999, day(2023, 12, 31)))
	svc := NewSpendService(repo)

	budget := &domain.Budget{ID: 1, WorkspaceID: 1, Category: "Food", Limit: decimal.NewFromInt(500), Timeline: domain.TimelineMonthly}
	ref := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	spent, err := svc.SpentForBudget(budget, ref)
	require.NoError(t, err)
	assert.Equal(t, "150.00", spent.StringFixed(2))

	enriched, err := svc.EnrichBudgets(1, []*domain.Budget{budget}, ref)
	require.NoError(t, err)
	require.NotNil(t, enriched[0].Interval)
	assert.Equal(t, day(2024, 1, 1), enriched[0].Interval.Start)
	assert.Equal(t, day(2024, 2, 1), enriched[0].Interval.End)
	assert.Equal(t, "350.00", enriched[0].Remaining.StringFixed(2))
	assert.Equal(t, domain.BudgetStatusOnTrack, enriched[0].Status)
}

func TestSpendService_DailyBudgetOnMidnightDSTDay(t *testing.T) {
	// Clocks in Santiago jump from 00:00 to 01:00 on 2024-09-08
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Skip("timezone database not available")
	}
	repo := testutil.NewMockTransactionRepository()
	repo.AddTransaction(expense(1, "Food", 40, day(2024, 9, 7)))
	repo.AddTransaction(expense(1, "Food", 15, day(2024, 9, 8)))
	svc := NewSpendService(repo)

	budget := &domain.Budget{ID: 1, WorkspaceID: 1, Category: "Food", Limit: decimal.NewFromInt(50), Timeline: domain.TimelineDaily}
	ref := time.Date(2024, 9, 8, 12, 0, 0, 0, loc)

	enriched, err := svc.EnrichBudgets(1, []*domain.Budget{budget}, ref)
	require.NoError(t, err)
	require.NotNil(t, enriched[0].Interval)
	assert.Equal(t, day(2024, 9, 8), enriched[0].Interval.Start)
	assert.Equal(t, "15.00", enriched[0].Spent.StringFixed(2))
}

func TestSpendService_ComputeSpent_Filters(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	repo.AddTransaction(expense(1, "Food", 10, day(2024, 1, 10)))
	// none of these count: category differs in case, income, other workspace
	repo.AddTransaction(expense(1, "food", 20, day(2024, 1, 10)))
	repo.AddTransaction(income(1, "Food", 40, day(2024, 1, 10)))
	repo.AddTransaction(expense(2, "Food", 80, day(2024, 1, 10)))
	deleted := expense(1, "Food", 160, day(2024, 1, 10))
	now := time.Now()
	deleted.DeletedAt = &now
	repo.AddTransaction(deleted)
	svc := NewSpendService(repo)

	spent, err := svc.ComputeSpent(1, "Food", domain.Interval{Start: day(2024, 1, 1), End: day(2024, 2, 1)})
	require.NoError(t, err)
	assert.Equal(t, "10.00", spent.StringFixed(2))
}

func TestSpendService_ComputeSpent_NoRowsIsZero(t *testing.T) {
	svc := NewSpendService(testutil.NewMockTransactionRepository())

	spent, err := svc.ComputeSpent(1, "Travel", domain.Interval{Start: day(2024, 1, 1), End: day(2024, 2, 1)})
	require.NoError(t, err)
	assert.True(t, spent.IsZero())
}

func TestSpendService_ComputeSpent_EmptyIntervalSkipsStore(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewSpendService(repo)

	spent, err := svc.ComputeSpent(1, "Food", domain.Interval{Start: day(2024, 5, 1), End: day(2024, 5, 1)})
	require.NoError(t, err)
	assert.True(t, spent.IsZero())
	assert.Equal(t, 0, repo.SumExpensesCalls())
}

func TestSpendService_ComputeSpent_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := testutil.NewMockTransactionRepository()
	repo.SumExpensesByCategoryFn = func(int32, string, time.Time, time.Time) (decimal.Decimal, error) {
		return decimal.Zero, storeErr
	}
	svc := NewSpendService(repo)

	_, err := svc.ComputeSpent(1, "Food", domain.Interval{Start: day(2024, 1, 1), End: day(2024, 2, 1)})
	assert.ErrorIs(t, err, storeErr)
}

func TestSpendService_WeeklyWindowBoundaries(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	repo.AddTransaction(expense(1, "Coffee", 1, day(2024, 2, 24))) // before window
	repo.AddTransaction(expense(1, "Coffee", 2, day(2024, 2, 25))) // first day
	repo.AddTransaction(expense(1, "Coffee", 4, day(2024, 3, 2)))  // reference day
	repo.AddTransaction(expense(1, "Coffee", 8, day(2024, 3, 3)))  // after reference
	svc := NewSpendService(repo)

	budget := &domain.Budget{WorkspaceID: 1, Category: "Coffee", Limit: decimal.NewFromInt(10), Timeline: domain.TimelineWeekly}
	spent, err := svc.SpentForBudget(budget, time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "6.00", spent.StringFixed(2))
}

func TestSpendService_CustomBudgetClampedToReference(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	repo.AddTransaction(expense(1, "Trip", 100, day(2024, 6, 1)))
	repo.AddTransaction(expense(1, "Trip", 30, day(2024, 6, 10)))
	repo.AddTransaction(expense(1, "Trip", 500, day(2024, 6, 11))) // after reference
	svc := NewSpendService(repo)

	budget := &domain.Budget{
		WorkspaceID: 1,
		Category:    "Trip",
		Limit:       decimal.NewFromInt(1000),
		Timeline:    domain.TimelineCustom,
		StartDate:   strPtr("2024-06-01"),
		EndDate:     strPtr("2024-06-30"),
	}

	spent, err := svc.SpentForBudget(budget, day(2024, 6, 10))
	require.NoError(t, err)
	assert.Equal(t, "130.00", spent.StringFixed(2))
}

func TestSpendService_UnresolvableTimelineIsZero(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	repo.AddTransaction(expense(1, "Trip", 100, day(2024, 6, 1)))
	svc := NewSpendService(repo)

	tests := []struct {
		name   string
		budget *domain.Budget
	}{
		{"missing dates", &domain.Budget{WorkspaceID: 1, Category: "Trip", Timeline: domain.TimelineCustom}},
		{"missing end", &domain.Budget{WorkspaceID: 1, Category: "Trip", Timeline: domain.TimelineCustom, StartDate: strPtr("2024-06-01")}},
		{"malformed start", &domain.Budget{WorkspaceID: 1, Category: "Trip", Timeline: domain.TimelineCustom, StartDate: strPtr("06/01/2024"), EndDate: strPtr("2024-06-30")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spent, err := svc.SpentForBudget(tt.budget, day(2024, 6, 15))
			require.NoError(t, err)
			assert.True(t, spent.IsZero())

			enriched, err := svc.EnrichBudgets(1, []*domain.Budget{tt.budget}, day(2024, 6, 15))
			require.NoError(t, err)
			assert.Nil(t, enriched[0].Interval)
		})
	}
	assert.Equal(t, 0, repo.SumExpensesCalls())
}

func TestSpendService_EnrichBudgets_PreservesOrder(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	categories := []string{"Rent", "Food", "Fuel", "Gym", "Books", "Games", "Music", "Pets", "Kids", "Gifts"}
	budgets := make([]*domain.Budget, len(categories))
	for i, c := range categories {
		repo.AddTransaction(expense(1, c, int64(i+1), day(2024, 1, 10)))
		budgets[i] = &domain.Budget{ID: int32(i + 1), WorkspaceID: 1, Category: c, Limit: decimal.NewFromInt(100), Timeline: domain.TimelineMonthly}
	}
	svc := NewSpendService(repo, WithConcurrency(3))

	enriched, err := svc.EnrichBudgets(1, budgets, day(2024, 1, 15))
	require.NoError(t, err)
	require.Len(t, enriched, len(budgets))
	for i, e := range enriched {
		assert.Same(t, budgets[i], e.Budget)
		assert.Equal(t, int64(i+1), e.Spent.IntPart())
	}
}

func TestSpendService_EnrichBudgets_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	repo := testutil.NewMockTransactionRepository()
	repo.SumExpensesByCategoryFn = func(int32, string, time.Time, time.Time) (decimal.Decimal, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return decimal.Zero, nil
	}
	svc := NewSpendService(repo, WithConcurrency(2))

	budgets := make([]*domain.Budget, 8)
	for i := range budgets {
		budgets[i] = &domain.Budget{ID: int32(i + 1), WorkspaceID: 1, Category: "C", Timeline: domain.TimelineDaily}
	}

	_, err := svc.EnrichBudgets(1, budgets, day(2024, 1, 15))
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestSpendService_EnrichBudgets_FailsOnStoreError(t *testing.T) {
	storeErr := errors.New("timeout")
	repo := testutil.NewMockTransactionRepository()
	repo.SumExpensesByCategoryFn = func(_ int32, category string, _, _ time.Time) (decimal.Decimal, error) {
		if category == "Broken" {
			return decimal.Zero, storeErr
		}
		return decimal.NewFromInt(1), nil
	}
	svc := NewSpendService(repo)

	budgets := []*domain.Budget{
		{ID: 1, WorkspaceID: 1, Category: "Food", Timeline: domain.TimelineMonthly},
		{ID: 2, WorkspaceID: 1, Category: "Broken", Timeline: domain.TimelineMonthly},
	}

	result, err := svc.EnrichBudgets(1, budgets, day(2024, 1, 15))
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, result)
}

func TestSpendService_EnrichBudgets_Empty(t *testing.T) {
	svc := NewSpendService(testutil.NewMockTransactionRepository())

	result, err := svc.EnrichBudgets(1, nil, day(2024, 1, 15))
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestSpendService_Cache(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	repo.AddTransaction(expense(1, "Food", 25, day(2024, 1, 10)))
	svc := NewSpendService(repo, WithSpendCache(cache.NewLRU[decimal.Decimal](16, time.Minute)))
	interval := domain.Interval{Start: day(2024, 1, 1), End: day(2024, 2, 1)}

	first, err := svc.ComputeSpent(1, "Food", interval)
	require.NoError(t, err)
	second, err := svc.ComputeSpent(1, "Food", interval)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, repo.SumExpensesCalls())

	// a write elsewhere must not evict this workspace
	svc.Invalidate(2)
	_, err = svc.ComputeSpent(1, "Food", interval)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.SumExpensesCalls())

	repo.AddTransaction(expense(1, "Food", 5, day(2024, 1, 11)))
	svc.Invalidate(1)

	third, err := svc.ComputeSpent(1, "Food", interval)
	require.NoError(t, err)
	assert.Equal(t, "30.00", third.StringFixed(2))
	assert.Equal(t, 2, repo.SumExpensesCalls())
}

func TestSpendService_NoCacheQueriesEveryTime(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewSpendService(repo)
	interval := domain.Interval{Start: day(2024, 1, 1), End: day(2024, 2, 1)}

	for i := 0; i < 3; i++ {
		_, err := svc.ComputeSpent(1, "Food", interval)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.SumExpensesCalls())
}

func TestSpendService_CleanExpiredCache(t *testing.T) {
	c := cache.NewLRU[decimal.Decimal](4, time.Millisecond)
	svc := NewSpendService(testutil.NewMockTransactionRepository(), WithSpendCache(c))
	interval := domain.Interval{Start: day(2024, 1, 1), End: day(2024, 2, 1)}

	_, err := svc.ComputeSpent(1, "Food", interval)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.CacheLen())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, svc.CleanExpiredCache())
	assert.Equal(t, 0, svc.CacheLen())
}

func TestSpendService_CleanExpiredCacheWithoutCache(t *testing.T) {
	svc := NewSpendService(testutil.NewMockTransactionRepository())
	assert.Equal(t, 0, svc.CleanExpiredCache())
	assert.Equal(t, 0, svc.CacheLen())
}

package service

import (
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DashboardService handles dashboard-related business logic
type DashboardService struct {
	transactionRepo domain.TransactionRepository
	budgetRepo      domain.BudgetRepository
	spendService    *SpendService
	clock           util.Clock
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	transactionRepo domain.TransactionRepository,
	budgetRepo domain.BudgetRepository,
	spendService *SpendService,
	clock util.Clock,
) *DashboardService {
	return &DashboardService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		spendService:    spendService,
		clock:           clock,
	}
}

// GetSummary returns the dashboard summary for the current month
func (s *DashboardService) GetSummary(workspaceID int32) (*domain.DashboardSummary, error) {
	now := s.clock.Now()
	return s.GetSummaryForMonth(workspaceID, now.Year(), int(now.Month()))
}

// GetSummaryForMonth returns the dashboard summary for a specific month.
// The independent reads run in parallel; the first failure fails the summary.
func (s *DashboardService) GetSummaryForMonth(workspaceID int32, year, month int) (*domain.DashboardSummary, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, domain.ErrInvalidMonthTag
	}

	now := s.clock.Now()
	start := util.Date(year, time.Month(month), 1)
	end := start.AddDate(0, 1, 0)
	summary := &domain.DashboardSummary{Year: year, Month: month}

	var (
		totalIncome   decimal.Decimal
		totalExpenses decimal.Decimal
		budgets       []*domain.Budget
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		totalIncome, err = s.transactionRepo.SumByType(workspaceID, domain.TransactionTypeIncome, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		totalExpenses, err = s.transactionRepo.SumByType(workspaceID, domain.TransactionTypeExpense, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		summary.TotalIncome, err = s.transactionRepo.SumByType(workspaceID, domain.TransactionTypeIncome, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		summary.TotalExpenses, err = s.transactionRepo.SumByType(workspaceID, domain.TransactionTypeExpense, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		summary.CategoryBreakdown, err = s.transactionRepo.GetExpensesByCategory(workspaceID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgetRepo.ListByMonth(workspaceID, util.MonthTag(start))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	enriched, err := s.spendService.EnrichBudgets(workspaceID, budgets, util.ReferenceForMonth(now, year, time.Month(month)))
	if err != nil {
		return nil, err
	}

	summary.Balance = totalIncome.Sub(totalExpenses)
	summary.Budgets = enriched
	if summary.CategoryBreakdown == nil {
		summary.CategoryBreakdown = []*domain.CategoryTotal{}
	}
	return summary, nil
}

// GetSpendingTrend returns daily expense totals for the trailing days ending
// today, one point per day including days without expenses.
func (s *DashboardService) GetSpendingTrend(workspaceID int32, days int) (*domain.SpendingTrend, error) {
	if days == 0 {
		days = domain.DefaultTrendDays
	}
	if days < 1 || days > domain.MaxTrendDays {
		return nil, domain.ErrInvalidInput
	}

	today := util.StartOfDay(s.clock.Now())
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	totals, err := s.transactionRepo.GetDailyExpenses(workspaceID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]decimal.Decimal, len(totals))
	for _, t := range totals {
		key := util.DayKey(t.Date)
		if prev, ok := byDay[key]; ok {
			byDay[key] = prev.Add(t.Total)
			continue
		}
		byDay[key] = t.Total
	}

	points := make([]*domain.DailyTotal, 0, days)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		total, ok := byDay[util.DayKey(d)]
		if !ok {
			total = decimal.Zero
		}
		points = append(points, &domain.DailyTotal{Date: d, Total: total})
	}

	return &domain.SpendingTrend{Start: start, End: end, Points: points}, nil
}

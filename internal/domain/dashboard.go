package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummary contains the main dashboard metrics for one month
type DashboardSummary struct {
	Year              int
	Month             int
	Balance           decimal.Decimal // all-time income minus expenses
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	CategoryBreakdown []*CategoryTotal
	Budgets           []*BudgetWithSpent
}

// SpendingTrend is a daily expense series ending on the reference day
type SpendingTrend struct {
	Start  time.Time
	End    time.Time // exclusive
	Points []*DailyTotal
}

// MaxTrendDays bounds the length of a spending trend
const MaxTrendDays = 366

// DefaultTrendDays is the trend length when none is requested
const DefaultTrendDays = 30

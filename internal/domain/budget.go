package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Timeline is the recurrence pattern that decides over which window a budget's
// spend is computed and on which calendar days it is shown.
type Timeline string

const (
	TimelineDaily   Timeline = "daily"
	TimelineWeekly  Timeline = "weekly"
	TimelineMonthly Timeline = "monthly"
	TimelineYearly  Timeline = "yearly"
	TimelineCustom  Timeline = "custom"
)

// ParseTimeline normalizes a stored timeline value. Matching is case-insensitive;
// empty and unrecognized values fall back to monthly.
func ParseTimeline(s string) Timeline {
	switch t := Timeline(strings.ToLower(strings.TrimSpace(s))); t {
	case TimelineDaily, TimelineWeekly, TimelineMonthly, TimelineYearly, TimelineCustom:
		return t
	default:
		return TimelineMonthly
	}
}

// ParseTimelineStrict is ParseTimeline for user input: empty still means monthly
// but an unrecognized value is rejected.
func ParseTimelineStrict(s string) (Timeline, error) {
	if strings.TrimSpace(s) == "" {
		return TimelineMonthly, nil
	}
	t := Timeline(strings.ToLower(strings.TrimSpace(s)))
	if ParseTimeline(string(t)) != t {
		return "", ErrInvalidTimeline
	}
	return t, nil
}

// Budget is a spending limit for one category.
// StartDate and EndDate are YYYY-MM-DD strings and are only meaningful for the
// custom timeline. Month is the YYYY-MM tag of the month the budget was created in.
type Budget struct {
	ID          int32           `json:"id"`
	WorkspaceID int32           `json:"workspaceId"`
	Category    string          `json:"category"`
	Limit       decimal.Decimal `json:"limit"`
	Timeline    Timeline        `json:"timeline"`
	StartDate   *string         `json:"startDate,omitempty"`
	EndDate     *string         `json:"endDate,omitempty"`
	Month       string          `json:"month"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
}

// BudgetStatus is the progress state of a budget against its limit
type BudgetStatus string

const (
	BudgetStatusOnTrack BudgetStatus = "on_track"
	BudgetStatusWarning BudgetStatus = "warning"
	BudgetStatusOver    BudgetStatus = "over"
)

// BudgetWarningThreshold is the spent percentage at which a budget turns to warning
var BudgetWarningThreshold = decimal.NewFromInt(80)

// BudgetWithSpent is a budget enriched with its derived spend for the resolved interval.
// Interval is nil when the budget's timeline could not be resolved.
type BudgetWithSpent struct {
	Budget     *Budget
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage decimal.Decimal
	Status     BudgetStatus
	Interval   *Interval
}

// NewBudgetWithSpent derives remaining, percentage and status from a spent amount
func NewBudgetWithSpent(budget *Budget, spent decimal.Decimal, interval *Interval) *BudgetWithSpent {
	hundred := decimal.NewFromInt(100)

	percentage := decimal.Zero
	if budget.Limit.IsPositive() {
		percentage = spent.Div(budget.Limit).Mul(hundred).Round(2)
	} else if spent.IsPositive() {
		percentage = hundred
	}

	status := BudgetStatusOnTrack
	switch {
	case spent.GreaterThan(budget.Limit):
		status = BudgetStatusOver
	case percentage.GreaterThanOrEqual(BudgetWarningThreshold):
		status = BudgetStatusWarning
	}

	return &BudgetWithSpent{
		Budget:     budget,
		Spent:      spent,
		Remaining:  budget.Limit.Sub(spent),
		Percentage: percentage,
		Status:     status,
		Interval:   interval,
	}
}

// UpdateBudgetData contains the fields that can be updated on a budget
type UpdateBudgetData struct {
	Category  string
	Limit     decimal.Decimal
	Timeline  Timeline
	StartDate *string
	EndDate   *string
}

// BudgetRepository defines the interface for budget persistence operations
type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(workspaceID int32, id int32) (*Budget, error)
	// ListByMonth returns the budgets tagged with month plus every budget whose
	// timeline is not monthly.
	ListByMonth(workspaceID int32, month string) ([]*Budget, error)
	Update(workspaceID int32, id int32, data *UpdateBudgetData) (*Budget, error)
	SoftDelete(workspaceID int32, id int32) error
}

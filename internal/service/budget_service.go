package service

import (
	"strings"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/dafibh/budgetly/budgetly-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget-related business logic
type BudgetService struct {
	budgetRepo     domain.BudgetRepository
	spendService   *SpendService
	clock          util.Clock
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, spendService *SpendService, clock util.Clock) *BudgetService {
	return &BudgetService{
		budgetRepo:   budgetRepo,
		spendService: spendService,
		clock:        clock,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// BudgetInput holds the fields accepted when creating or updating a budget
type BudgetInput struct {
	Category  string
	Limit     decimal.Decimal
	Timeline  string
	StartDate *string
	EndDate   *string
}

// CreateBudget validates input and creates a budget tagged with the current month
func (s *BudgetService) CreateBudget(workspaceID int32, input BudgetInput) (*domain.Budget, error) {
	data, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	budget := &domain.Budget{
		WorkspaceID: workspaceID,
		Category:    data.Category,
		Limit:       data.Limit,
		Timeline:    data.Timeline,
		StartDate:   data.StartDate,
		EndDate:     data.EndDate,
		Month:       util.MonthTag(s.clock.Now()),
	}

	created, err := s.budgetRepo.Create(budget)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("category", data.Category).Msg("Failed to create budget")
		return nil, err
	}

	s.publishEvent(workspaceID, websocket.BudgetCreated(created))
	return created, nil
}

// ListBudgets returns the budgets of a YYYY-MM month (current month when empty),
// each enriched with its spend evaluated for that month.
func (s *BudgetService) ListBudgets(workspaceID int32, month string) ([]*domain.BudgetWithSpent, error) {
	now := s.clock.Now()
	if strings.TrimSpace(month) == "" {
		month = util.MonthTag(now)
	}

	year, mon, err := util.ParseMonthTag(month)
	if err != nil {
		return nil, domain.ErrInvalidMonthTag
	}

	budgets, err := s.budgetRepo.ListByMonth(workspaceID, month)
	if err != nil {
		return nil, err
	}

	return s.spendService.EnrichBudgets(workspaceID, budgets, util.ReferenceForMonth(now, year, mon))
}

// GetBudget returns one budget enriched with its spend as of now
func (s *BudgetService) GetBudget(workspaceID int32, id int32) (*domain.BudgetWithSpent, error) {
	budget, err := s.budgetRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	enriched, err := s.spendService.EnrichBudgets(workspaceID, []*domain.Budget{budget}, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return enriched[0], nil
}

// UpdateBudget validates input and replaces the budget's editable fields
func (s *BudgetService) UpdateBudget(workspaceID int32, id int32, input BudgetInput) (*domain.Budget, error) {
	data, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	updated, err := s.budgetRepo.Update(workspaceID, id, data)
	if err != nil {
		return nil, err
	}

	s.publishEvent(workspaceID, websocket.BudgetUpdated(updated))
	return updated, nil
}

// DeleteBudget soft deletes a budget
func (s *BudgetService) DeleteBudget(workspaceID int32, id int32) error {
	if err := s.budgetRepo.SoftDelete(workspaceID, id); err != nil {
		return err
	}

	s.publishEvent(workspaceID, websocket.BudgetDeleted(map[string]any{"id": id}))
	return nil
}

func (s *BudgetService) validate(input BudgetInput) (*domain.UpdateBudgetData, error) {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	if len(category) > domain.MaxCategoryLength {
		return nil, domain.ErrCategoryTooLong
	}

	if input.Limit.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	tl, err := domain.ParseTimelineStrict(input.Timeline)
	if err != nil {
		return nil, err
	}

	data := &domain.UpdateBudgetData{
		Category: category,
		Limit:    input.Limit,
		Timeline: tl,
	}
	if tl != domain.TimelineCustom {
		return data, nil
	}

	if input.StartDate == nil || input.EndDate == nil {
		return nil, domain.ErrDatesRequired
	}
	startDate := strings.TrimSpace(*input.StartDate)
	endDate := strings.TrimSpace(*input.EndDate)
	start, err := util.ParseDay(startDate)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	end, err := util.ParseDay(endDate)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	if !start.Before(end) {
		return nil, domain.ErrInvalidDateRange
	}

	data.StartDate = &startDate
	data.EndDate = &endDate
	return data, nil
}

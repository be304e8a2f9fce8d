package service

import (
	"strings"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/dafibh/budgetly/budgetly-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic.
// Every successful write invalidates the workspace's cached spend.
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	spendService    *SpendService
	clock           util.Clock
	eventPublisher  websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, spendService *SpendService, clock util.Clock) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		spendService:    spendService,
		clock:           clock,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Description     string
	Amount          decimal.Decimal
	Type            domain.TransactionType
	Category        string
	TransactionDate *time.Time
}

// CreateTransaction creates a new transaction with validation.
// The date defaults to today in the reference clock's location.
func (s *TransactionService) CreateTransaction(workspaceID int32, input CreateTransactionInput) (*domain.Transaction, error) {
	transactionDate := util.StartOfDay(s.clock.Now())
	if input.TransactionDate != nil {
		transactionDate = util.StartOfDay(*input.TransactionDate)
	}

	data, err := validateTransaction(input.Description, input.Amount, input.Type, input.Category, transactionDate)
	if err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.Create(&domain.Transaction{
		WorkspaceID:     workspaceID,
		Description:     data.Description,
		Amount:          data.Amount,
		Type:            data.Type,
		Category:        data.Category,
		TransactionDate: data.TransactionDate,
	})
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create transaction")
		return nil, err
	}

	s.spendService.Invalidate(workspaceID)
	s.publishEvent(workspaceID, websocket.TransactionCreated(created))
	return created, nil
}

// GetTransactions lists transactions with filters, newest first
func (s *TransactionService) GetTransactions(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters != nil {
		if filters.Type != nil && !filters.Type.IsValid() {
			return nil, domain.ErrInvalidTransactionType
		}
		if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
			return nil, domain.ErrInvalidDateRange
		}
		if filters.PageSize > domain.MaxPageSize {
			filters.PageSize = domain.MaxPageSize
		}
	}
	return s.transactionRepo.GetByWorkspace(workspaceID, filters)
}

// GetTransactionByID retrieves a transaction by its ID within a workspace
func (s *TransactionService) GetTransactionByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(workspaceID, id)
}

// UpdateTransactionInput holds the input for updating a transaction
type UpdateTransactionInput struct {
	Description     string
	Amount          decimal.Decimal
	Type            domain.TransactionType
	Category        string
	TransactionDate time.Time
}

// UpdateTransaction replaces the editable fields of a transaction
func (s *TransactionService) UpdateTransaction(workspaceID int32, id int32, input UpdateTransactionInput) (*domain.Transaction, error) {
	data, err := validateTransaction(input.Description, input.Amount, input.Type, input.Category, util.StartOfDay(input.TransactionDate))
	if err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.Update(workspaceID, id, data)
	if err != nil {
		return nil, err
	}

	s.spendService.Invalidate(workspaceID)
	s.publishEvent(workspaceID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// DeleteTransaction soft deletes a transaction
func (s *TransactionService) DeleteTransaction(workspaceID int32, id int32) error {
	if err := s.transactionRepo.SoftDelete(workspaceID, id); err != nil {
		return err
	}

	s.spendService.Invalidate(workspaceID)
	s.publishEvent(workspaceID, websocket.TransactionDeleted(map[string]any{"id": id}))
	return nil
}

func validateTransaction(description string, amount decimal.Decimal, txType domain.TransactionType, category string, date time.Time) (*domain.UpdateTransactionData, error) {
	description = strings.TrimSpace(description)
	if len(description) > domain.MaxDescriptionLength {
		return nil, domain.ErrDescriptionTooLong
	}

	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if !txType.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	if len(category) > domain.MaxCategoryLength {
		return nil, domain.ErrCategoryTooLong
	}

	if date.IsZero() {
		return nil, domain.ErrInvalidDate
	}

	return &domain.UpdateTransactionData{
		Description:     description,
		Amount:          amount,
		Type:            txType,
		Category:        category,
		TransactionDate: date,
	}, nil
}

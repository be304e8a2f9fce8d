package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// UpdateName updates a user's name
func (m *MockUserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	user, ok := m.Users[auth0ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = &name
	user.UpdatedAt = time.Now()
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	Workspaces    map[int32]*domain.Workspace
	ByUserID      map[uuid.UUID]*domain.Workspace
	ByUserAuth0ID map[string]*domain.Workspace
	NextID        int32
	GetByUserIDFn func(userID uuid.UUID) (*domain.Workspace, error)
	CreateFn      func(workspace *domain.Workspace) (*domain.Workspace, error)
}

// NewMockWorkspaceRepository creates a new MockWorkspaceRepository
func NewMockWorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{
		Workspaces:    make(map[int32]*domain.Workspace),
		ByUserID:      make(map[uuid.UUID]*domain.Workspace),
		ByUserAuth0ID: make(map[string]*domain.Workspace),
		NextID:        1,
	}
}

// GetByID retrieves a workspace by ID
func (m *MockWorkspaceRepository) GetByID(id int32) (*domain.Workspace, error) {
	if ws, ok := m.Workspaces[id]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// GetByUserID retrieves a workspace by user ID
func (m *MockWorkspaceRepository) GetByUserID(userID uuid.UUID) (*domain.Workspace, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(userID)
	}
	if ws, ok := m.ByUserID[userID]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// GetByUserAuth0ID retrieves a workspace by user's Auth0 ID
func (m *MockWorkspaceRepository) GetByUserAuth0ID(auth0ID string) (*domain.Workspace, error) {
	if ws, ok := m.ByUserAuth0ID[auth0ID]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// Create creates a new workspace
func (m *MockWorkspaceRepository) Create(workspace *domain.Workspace) (*domain.Workspace, error) {
	if m.CreateFn != nil {
		return m.CreateFn(workspace)
	}
	workspace.ID = m.NextID
	m.NextID++
	m.Workspaces[workspace.ID] = workspace
	m.ByUserID[workspace.UserID] = workspace
	return workspace, nil
}

// AddWorkspace adds a workspace to the mock repository (helper for tests)
func (m *MockWorkspaceRepository) AddWorkspace(workspace *domain.Workspace, auth0ID string) {
	m.Workspaces[workspace.ID] = workspace
	m.ByUserID[workspace.UserID] = workspace
	m.ByUserAuth0ID[auth0ID] = workspace
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository.
// Read methods are safe for concurrent use once the fixture is populated.
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	ByWorkspace  map[int32][]*domain.Transaction
	NextID       int32

	CreateFn                func(transaction *domain.Transaction) (*domain.Transaction, error)
	GetByIDFn               func(workspaceID int32, id int32) (*domain.Transaction, error)
	GetByWSFn               func(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error)
	UpdateFn                func(workspaceID int32, id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error)
	SoftDeleteFn            func(workspaceID int32, id int32) error
	SumExpensesByCategoryFn func(workspaceID int32, category string, startDate, endDate time.Time) (decimal.Decimal, error)
	SumByTypeFn             func(workspaceID int32, txType domain.TransactionType, startDate, endDate time.Time) (decimal.Decimal, error)
	GetExpensesByCategoryFn func(workspaceID int32, startDate, endDate time.Time) ([]*domain.CategoryTotal, error)
	GetDailyExpensesFn      func(workspaceID int32, startDate, endDate time.Time) ([]*domain.DailyTotal, error)

	mu       sync.Mutex
	sumCalls int
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		ByWorkspace:  make(map[int32][]*domain.Transaction),
		NextID:       1,
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	transaction.ID = m.NextID
	m.NextID++
	m.Transactions[transaction.ID] = transaction
	m.ByWorkspace[transaction.WorkspaceID] = append(m.ByWorkspace[transaction.WorkspaceID], transaction)
	return transaction, nil
}

// GetByID retrieves a transaction by its ID within a workspace
func (m *MockTransactionRepository) GetByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(workspaceID, id)
	}
	transaction, ok := m.Transactions[id]
	if !ok || transaction.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	if transaction.DeletedAt != nil {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

// GetByWorkspace retrieves all transactions for a workspace with optional filters and pagination
func (m *MockTransactionRepository) GetByWorkspace(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if m.GetByWSFn != nil {
		return m.GetByWSFn(workspaceID, filters)
	}

	// Filter out soft-deleted and apply filters
	filtered := []*domain.Transaction{}
	for _, t := range m.ByWorkspace[workspaceID] {
		if t.DeletedAt != nil {
			continue
		}
		if filters != nil {
			if filters.Type != nil && t.Type != *filters.Type {
				continue
			}
			if filters.Category != nil && t.Category != *filters.Category {
				continue
			}
			if filters.StartDate != nil && t.TransactionDate.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && t.TransactionDate.After(*filters.EndDate) {
				continue
			}
		}
		filtered = append(filtered, t)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].TransactionDate.Equal(filtered[j].TransactionDate) {
			return filtered[i].TransactionDate.After(filtered[j].TransactionDate)
		}
		return filtered[i].ID > filtered[j].ID
	})

	// Apply pagination
	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
		}
	}

	totalItems := int64(len(filtered))
	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	// Apply offset and limit
	start := (page - 1) * pageSize
	end := start + pageSize
	if start >= int32(len(filtered)) {
		filtered = []*domain.Transaction{}
	} else {
		if end > int32(len(filtered)) {
			end = int32(len(filtered))
		}
		filtered = filtered[start:end]
	}

	return &domain.PaginatedTransactions{
		Data:       filtered,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// Update updates a transaction
func (m *MockTransactionRepository) Update(workspaceID int32, id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(workspaceID, id, data)
	}
	transaction, ok := m.Transactions[id]
	if !ok || transaction.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	if transaction.DeletedAt != nil {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.Description = data.Description
	transaction.Amount = data.Amount
	transaction.Type = data.Type
	transaction.Category = data.Category
	transaction.TransactionDate = data.TransactionDate
	return transaction, nil
}

// SoftDelete soft deletes a transaction
func (m *MockTransactionRepository) SoftDelete(workspaceID int32, id int32) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(workspaceID, id)
	}
	transaction, ok := m.Transactions[id]
	if !ok || transaction.WorkspaceID != workspaceID {
		return domain.ErrTransactionNotFound
	}
	if transaction.DeletedAt != nil {
		return domain.ErrTransactionNotFound
	}
	now := time.Now()
	transaction.DeletedAt = &now
	return nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	if transaction.ID == 0 {
		transaction.ID = m.NextID
		m.NextID++
	}
	m.Transactions[transaction.ID] = transaction
	m.ByWorkspace[transaction.WorkspaceID] = append(m.ByWorkspace[transaction.WorkspaceID], transaction)
}

// SumExpensesByCategory sums expense amounts of one category in [startDate, endDate)
func (m *MockTransactionRepository) SumExpensesByCategory(workspaceID int32, category string, startDate, endDate time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	m.sumCalls++
	m.mu.Unlock()

	if m.SumExpensesByCategoryFn != nil {
		return m.SumExpensesByCategoryFn(workspaceID, category, startDate, endDate)
	}

	total := decimal.Zero
	for _, tx := range m.activeInRange(workspaceID, startDate, endDate) {
		if tx.Type == domain.TransactionTypeExpense && tx.Category == category {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// SumExpensesCalls returns how many times SumExpensesByCategory was called
func (m *MockTransactionRepository) SumExpensesCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sumCalls
}

// SumByType sums transactions of one type in [startDate, endDate); zero dates leave that side open
func (m *MockTransactionRepository) SumByType(workspaceID int32, txType domain.TransactionType, startDate, endDate time.Time) (decimal.Decimal, error) {
	if m.SumByTypeFn != nil {
		return m.SumByTypeFn(workspaceID, txType, startDate, endDate)
	}

	total := decimal.Zero
	for _, tx := range m.activeInRange(workspaceID, startDate, endDate) {
		if tx.Type == txType {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// GetExpensesByCategory returns expense totals per category in [startDate, endDate), largest first
func (m *MockTransactionRepository) GetExpensesByCategory(workspaceID int32, startDate, endDate time.Time) ([]*domain.CategoryTotal, error) {
	if m.GetExpensesByCategoryFn != nil {
		return m.GetExpensesByCategoryFn(workspaceID, startDate, endDate)
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, tx := range m.activeInRange(workspaceID, startDate, endDate) {
		if tx.Type == domain.TransactionTypeExpense {
			byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
		}
	}

	totals := make([]*domain.CategoryTotal, 0, len(byCategory))
	for category, total := range byCategory {
		totals = append(totals, &domain.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].Category < totals[j].Category
	})
	return totals, nil
}

// GetDailyExpenses returns expense totals per day in [startDate, endDate)
func (m *MockTransactionRepository) GetDailyExpenses(workspaceID int32, startDate, endDate time.Time) ([]*domain.DailyTotal, error) {
	if m.GetDailyExpensesFn != nil {
		return m.GetDailyExpensesFn(workspaceID, startDate, endDate)
	}

	byDay := make(map[string]*domain.DailyTotal)
	for _, tx := range m.activeInRange(workspaceID, startDate, endDate) {
		if tx.Type != domain.TransactionTypeExpense {
			continue
		}
		key := tx.TransactionDate.Format("2006-01-02")
		if dt, ok := byDay[key]; ok {
			dt.Total = dt.Total.Add(tx.Amount)
			continue
		}
		byDay[key] = &domain.DailyTotal{Date: tx.TransactionDate, Total: tx.Amount}
	}

	totals := make([]*domain.DailyTotal, 0, len(byDay))
	for _, dt := range byDay {
		totals = append(totals, dt)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date.Before(totals[j].Date) })
	return totals, nil
}

// activeInRange returns non-deleted transactions of a workspace dated in [startDate, endDate)
func (m *MockTransactionRepository) activeInRange(workspaceID int32, startDate, endDate time.Time) []*domain.Transaction {
	var result []*domain.Transaction
	for _, tx := range m.ByWorkspace[workspaceID] {
		if tx.DeletedAt != nil {
			continue
		}
		if !startDate.IsZero() && tx.TransactionDate.Before(startDate) {
			continue
		}
		if !endDate.IsZero() && !tx.TransactionDate.Before(endDate) {
			continue
		}
		result = append(result, tx)
	}
	return result
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	NextID  int32

	CreateFn      func(budget *domain.Budget) (*domain.Budget, error)
	GetByIDFn     func(workspaceID int32, id int32) (*domain.Budget, error)
	ListByMonthFn func(workspaceID int32, month string) ([]*domain.Budget, error)
	UpdateFn      func(workspaceID int32, id int32, data *domain.UpdateBudgetData) (*domain.Budget, error)
	SoftDeleteFn  func(workspaceID int32, id int32) error
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	if m.CreateFn != nil {
		return m.CreateFn(budget)
	}
	budget.ID = m.NextID
	m.NextID++
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget by its ID within a workspace
func (m *MockBudgetRepository) GetByID(workspaceID int32, id int32) (*domain.Budget, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(workspaceID, id)
	}
	budget, ok := m.Budgets[id]
	if !ok || budget.WorkspaceID != workspaceID || budget.DeletedAt != nil {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

// ListByMonth returns budgets tagged with month plus every non-monthly budget, ordered by category then ID
func (m *MockBudgetRepository) ListByMonth(workspaceID int32, month string) ([]*domain.Budget, error) {
	if m.ListByMonthFn != nil {
		return m.ListByMonthFn(workspaceID, month)
	}
	var budgets []*domain.Budget
	for _, b := range m.Budgets {
		if b.WorkspaceID != workspaceID || b.DeletedAt != nil {
			continue
		}
		if b.Month == month || domain.ParseTimeline(string(b.Timeline)) != domain.TimelineMonthly {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		if budgets[i].Category != budgets[j].Category {
			return budgets[i].Category < budgets[j].Category
		}
		return budgets[i].ID < budgets[j].ID
	})
	return budgets, nil
}

// Update updates a budget
func (m *MockBudgetRepository) Update(workspaceID int32, id int32, data *domain.UpdateBudgetData) (*domain.Budget, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(workspaceID, id, data)
	}
	budget, ok := m.Budgets[id]
	if !ok || budget.WorkspaceID != workspaceID || budget.DeletedAt != nil {
		return nil, domain.ErrBudgetNotFound
	}
	budget.Category = data.Category
	budget.Limit = data.Limit
	budget.Timeline = data.Timeline
	budget.StartDate = data.StartDate
	budget.EndDate = data.EndDate
	budget.UpdatedAt = time.Now()
	return budget, nil
}

// SoftDelete soft deletes a budget
func (m *MockBudgetRepository) SoftDelete(workspaceID int32, id int32) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(workspaceID, id)
	}
	budget, ok := m.Budgets[id]
	if !ok || budget.WorkspaceID != workspaceID || budget.DeletedAt != nil {
		return domain.ErrBudgetNotFound
	}
	now := time.Now()
	budget.DeletedAt = &now
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	if budget.ID == 0 {
		budget.ID = m.NextID
		m.NextID++
	}
	m.Budgets[budget.ID] = budget
}

// RecordingPublisher captures published websocket events (helper for tests)
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent is one event captured by RecordingPublisher
type PublishedEvent struct {
	WorkspaceID int32
	Event       websocket.Event
}

// Publish records the event
func (p *RecordingPublisher) Publish(workspaceID int32, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, PublishedEvent{WorkspaceID: workspaceID, Event: event})
}

// Types returns the type of every recorded event in order
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.Events))
	for i, e := range p.Events {
		types[i] = e.Event.Type
	}
	return types
}

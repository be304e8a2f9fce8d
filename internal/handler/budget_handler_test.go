package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/service"
	"github.com/dafibh/budgetly/budgetly-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func setupBudgetHandler() (*BudgetHandler, *testutil.MockBudgetRepository, *testutil.MockTransactionRepository) {
	budgetRepo := testutil.NewMockBudgetRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	spendService := service.NewSpendService(transactionRepo)
	budgetService := service.NewBudgetService(budgetRepo, spendService, testClock())
	return NewBudgetHandler(budgetService), budgetRepo, transactionRepo
}

func addExpense(repo *testutil.MockTransactionRepository, category string, amount int64, date time.Time) {
	repo.AddTransaction(&domain.Transaction{
		WorkspaceID:     1,
		Amount:          decimal.NewFromInt(amount),
		Type:            domain.TransactionTypeExpense,
		Category:        category,
		TransactionDate: date,
	})
}

func TestCreateBudget_Success(t *testing.T) {
	handler, budgetRepo, _ := setupBudgetHandler()

	c, rec := newJSONContext(http.MethodPost, "/api/v1/budgets",
		`{"category": "Food", "limit": "500", "timeline": "Weekly"}`, 1)

	if err := handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response BudgetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Timeline != "weekly" {
		t.Errorf("Expected timeline 'weekly', got %s", response.Timeline)
	}
	if response.Limit != "500.00" {
		t.Errorf("Expected limit '500.00', got %s", response.Limit)
	}
	if response.Month != "2024-03" {
		t.Errorf("Expected month '2024-03', got %s", response.Month)
	}
	if len(budgetRepo.Budgets) != 1 {
		t.Errorf("Expected 1 stored budget, got %d", len(budgetRepo.Budgets))
	}
}

func TestCreateBudget_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"invalid limit", `{"category": "Food", "limit": "lots"}`, "limit"},
		{"negative limit", `{"category": "Food", "limit": "-5"}`, "limit"},
		{"missing category", `{"category": "", "limit": "5"}`, "category"},
		{"unknown timeline", `{"category": "Food", "limit": "5", "timeline": "fortnightly"}`, "timeline"},
		{"custom without dates", `{"category": "Food", "limit": "5", "timeline": "custom"}`, "startDate"},
		{"custom with inverted range", `{"category": "Food", "limit": "5", "timeline": "custom", "startDate": "2024-03-10", "endDate": "2024-03-01"}`, "endDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := setupBudgetHandler()
			c, rec := newJSONContext(http.MethodPost, "/api/v1/budgets", tt.body, 1)

			if err := handler.CreateBudget(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rec.Code)
			}

			problem := decodeProblem(t, rec)
			if len(problem.Errors) != 1 || problem.Errors[0].Field != tt.field {
				t.Errorf("Expected error on field %s, got %+v", tt.field, problem.Errors)
			}
		})
	}
}

func TestListBudgets_EnrichedWithSpend(t *testing.T) {
	handler, budgetRepo, transactionRepo := setupBudgetHandler()

	budgetRepo.AddBudget(&domain.Budget{
		ID:          1,
		WorkspaceID: 1,
		Category:    "Food",
		Limit:       decimal.NewFromInt(200),
		Timeline:    domain.TimelineMonthly,
		Month:       "2024-03",
	})
	budgetRepo.AddBudget(&domain.Budget{
		ID:          2,
		WorkspaceID: 1,
		Category:    "Travel",
		Limit:       decimal.NewFromInt(100),
		Timeline:    domain.TimelineCustom,
		Month:       "2024-01",
	})
	addExpense(transactionRepo, "Food", 100, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	addExpense(transactionRepo, "Food", 70, time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC))
	addExpense(transactionRepo, "Food", 999, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC))

	c, rec := newJSONContext(http.MethodGet, "/api/v1/budgets", "", 1)

	if err := handler.ListBudgets(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response []BudgetWithSpentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 budgets, got %d", len(response))
	}

	food := response[0]
	if food.Spent != "170.00" {
		t.Errorf("Expected spent '170.00', got %s", food.Spent)
	}
	if food.Remaining != "30.00" {
		t.Errorf("Expected remaining '30.00', got %s", food.Remaining)
	}
	if food.Percentage != "85.00" {
		t.Errorf("Expected percentage '85.00', got %s", food.Percentage)
	}
	if food.Status != string(domain.BudgetStatusWarning) {
		t.Errorf("Expected status warning, got %s", food.Status)
	}
	if food.IntervalStart == nil || *food.IntervalStart != "2024-03-01" {
		t.Errorf("Expected interval start 2024-03-01, got %v", food.IntervalStart)
	}
	if food.IntervalEnd == nil || *food.IntervalEnd != "2024-04-01" {
		t.Errorf("Expected interval end 2024-04-01, got %v", food.IntervalEnd)
	}
	if food.IntervalDays == nil || *food.IntervalDays != 31 {
		t.Errorf("Expected a 31 day interval, got %v", food.IntervalDays)
	}

	// A custom budget without dates degrades to zero spend and no interval
	travel := response[1]
	if travel.Spent != "0.00" {
		t.Errorf("Expected spent '0.00', got %s", travel.Spent)
	}
	if travel.IntervalStart != nil || travel.IntervalEnd != nil || travel.IntervalDays != nil {
		t.Errorf("Expected null interval, got %v - %v", travel.IntervalStart, travel.IntervalEnd)
	}
}

func TestListBudgets_InvalidMonth(t *testing.T) {
	handler, _, _ := setupBudgetHandler()
	c, rec := newJSONContext(http.MethodGet, "/api/v1/budgets?month=March", "", 1)

	if err := handler.ListBudgets(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetBudget_NotFound(t *testing.T) {
	handler, _, _ := setupBudgetHandler()
	c, rec := newJSONContext(http.MethodGet, "/api/v1/budgets/99", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := handler.GetBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestUpdateBudget_Success(t *testing.T) {
	handler, budgetRepo, _ := setupBudgetHandler()
	budgetRepo.AddBudget(&domain.Budget{
		ID:          1,
		WorkspaceID: 1,
		Category:    "Food",
		Limit:       decimal.NewFromInt(200),
		Timeline:    domain.TimelineMonthly,
		Month:       "2024-03",
	})

	c, rec := newJSONContext(http.MethodPut, "/api/v1/budgets/1",
		`{"category": "Trip", "limit": "300", "timeline": "custom", "startDate": "2024-03-01", "endDate": "2024-03-20"}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := handler.UpdateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response BudgetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Timeline != "custom" || response.StartDate == nil || *response.StartDate != "2024-03-01" {
		t.Errorf("Expected custom budget starting 2024-03-01, got %+v", response)
	}
}

func TestDeleteBudget(t *testing.T) {
	handler, budgetRepo, _ := setupBudgetHandler()
	budgetRepo.AddBudget(&domain.Budget{
		ID:          1,
		WorkspaceID: 1,
		Category:    "Food",
		Limit:       decimal.NewFromInt(200),
		Timeline:    domain.TimelineMonthly,
		Month:       "2024-03",
	})

	c, rec := newJSONContext(http.MethodDelete, "/api/v1/budgets/1", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := handler.DeleteBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	// Other workspaces cannot see or delete it
	c, rec = newJSONContext(http.MethodDelete, "/api/v1/budgets/1", "", 2)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := handler.DeleteBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

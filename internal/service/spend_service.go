package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/cache"
	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/timeline"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultAggregationConcurrency bounds parallel per-budget spend queries
const DefaultAggregationConcurrency = 8

// SpendService derives how much has been spent against budgets.
// Spent is never stored; it is recomputed from transactions on every read,
// optionally through a short-lived cache that transaction writes invalidate.
type SpendService struct {
	transactionRepo domain.TransactionRepository
	cache           *cache.LRU[decimal.Decimal]
	concurrency     int

	mu          sync.Mutex
	generations map[int32]uint64
}

// SpendOption configures a SpendService
type SpendOption func(*SpendService)

// WithSpendCache enables caching of spend sums
func WithSpendCache(c *cache.LRU[decimal.Decimal]) SpendOption {
	return func(s *SpendService) {
		s.cache = c
	}
}

// WithConcurrency sets how many budgets are aggregated in parallel
func WithConcurrency(n int) SpendOption {
	return func(s *SpendService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewSpendService creates a new SpendService
func NewSpendService(transactionRepo domain.TransactionRepository, opts ...SpendOption) *SpendService {
	s := &SpendService{
		transactionRepo: transactionRepo,
		concurrency:     DefaultAggregationConcurrency,
		generations:     make(map[int32]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeSpent sums the expense transactions of one category dated inside interval.
// Matching on category is exact. Zero is returned when nothing matches; store
// failures are returned as errors.
func (s *SpendService) ComputeSpent(workspaceID int32, category string, interval domain.Interval) (decimal.Decimal, error) {
	if interval.IsEmpty() {
		return decimal.Zero, nil
	}

	key := s.cacheKey(workspaceID, category, interval)
	if s.cache != nil {
		if spent, ok := s.cache.Get(key); ok {
			return spent, nil
		}
	}

	spent, err := s.transactionRepo.SumExpensesByCategory(workspaceID, category, interval.Start, interval.End)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses for %q: %w", category, err)
	}

	if s.cache != nil {
		s.cache.Set(key, spent)
	}
	return spent, nil
}

// SpentForBudget resolves the budget's interval relative to ref and sums its spend.
// A budget whose timeline cannot be resolved has spent zero.
func (s *SpendService) SpentForBudget(budget *domain.Budget, ref time.Time) (decimal.Decimal, error) {
	enriched, err := s.enrich(budget.WorkspaceID, budget, ref)
	if err != nil {
		return decimal.Zero, err
	}
	return enriched.Spent, nil
}

// EnrichBudgets computes spent, remaining and status for each budget in parallel.
// The result has the same order as budgets. The first store failure fails the batch.
func (s *SpendService) EnrichBudgets(workspaceID int32, budgets []*domain.Budget, ref time.Time) ([]*domain.BudgetWithSpent, error) {
	results := make([]*domain.BudgetWithSpent, len(budgets))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, b := range budgets {
		g.Go(func() error {
			enriched, err := s.enrich(workspaceID, b, ref)
			if err != nil {
				return err
			}
			results[i] = enriched
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("budget_count", len(budgets)).Msg("Failed to enrich budgets")
		return nil, err
	}
	return results, nil
}

// Invalidate drops every cached sum of a workspace. Call it after any
// transaction write in that workspace.
func (s *SpendService) Invalidate(workspaceID int32) {
	s.mu.Lock()
	s.generations[workspaceID]++
	s.mu.Unlock()
}

// CleanExpiredCache drops expired cache entries and returns how many were removed
func (s *SpendService) CleanExpiredCache() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.CleanExpired()
}

// CacheLen returns the number of cached sums
func (s *SpendService) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

func (s *SpendService) enrich(workspaceID int32, budget *domain.Budget, ref time.Time) (*domain.BudgetWithSpent, error) {
	interval, err := timeline.ResolveBudget(budget, ref)
	if err != nil {
		if errors.Is(err, timeline.ErrNoInterval) {
			log.Debug().
				Err(err).
				Int32("workspace_id", workspaceID).
				Int32("budget_id", budget.ID).
				Str("category", budget.Category).
				Msg("Budget has no spend interval")
			return domain.NewBudgetWithSpent(budget, decimal.Zero, nil), nil
		}
		return nil, err
	}

	spent, err := s.ComputeSpent(workspaceID, budget.Category, interval)
	if err != nil {
		return nil, err
	}
	return domain.NewBudgetWithSpent(budget, spent, &interval), nil
}

func (s *SpendService) cacheKey(workspaceID int32, category string, interval domain.Interval) string {
	s.mu.Lock()
	gen := s.generations[workspaceID]
	s.mu.Unlock()
	return fmt.Sprintf("%d/%d/%s/%s/%s", workspaceID, gen, util.DayKey(interval.Start), util.DayKey(interval.End), category)
}

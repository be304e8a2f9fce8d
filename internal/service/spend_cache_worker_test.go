package service

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/cache"
	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSpendCacheWorker(ttl, interval time.Duration) (*SpendCacheWorker, *SpendService) {
	spend := NewSpendService(
		testutil.NewMockTransactionRepository(),
		WithSpendCache(cache.NewLRU[decimal.Decimal](16, ttl)),
	)
	return NewSpendCacheWorker(spend, zerolog.Nop(), interval), spend
}

func TestSpendCacheWorker_DefaultInterval(t *testing.T) {
	worker, _ := setupSpendCacheWorker(time.Minute, 0)

	assert.Equal(t, DefaultCacheSweepInterval, worker.interval)
	assert.False(t, worker.IsRunning())
}

func TestSpendCacheWorker_StartStop(t *testing.T) {
	worker, _ := setupSpendCacheWorker(time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx)
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())

	// Stopping a stopped worker is a no-op
	worker.Stop()
}

func TestSpendCacheWorker_StopsOnContextCancel(t *testing.T) {
	worker, _ := setupSpendCacheWorker(time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		return !worker.IsRunning()
	}, time.Second, 5*time.Millisecond)
}

func TestSpendCacheWorker_Sweep(t *testing.T) {
	worker, spend := setupSpendCacheWorker(time.Millisecond, time.Hour)
	interval := domain.Interval{Start: day(2024, 1, 1), End: day(2024, 2, 1)}

	_, err := spend.ComputeSpent(1, "Food", interval)
	require.NoError(t, err)
	_, err = spend.ComputeSpent(1, "Rent", interval)
	require.NoError(t, err)
	require.Equal(t, 2, spend.CacheLen())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 2, worker.Sweep())
	assert.Equal(t, 0, spend.CacheLen())
}

func TestSpendCacheWorker_SweepsInBackground(t *testing.T) {
	worker, spend := setupSpendCacheWorker(time.Millisecond, 5*time.Millisecond)
	interval := domain.Interval{Start: day(2024, 1, 1), End: day(2024, 2, 1)}

	_, err := spend.ComputeSpent(1, "Food", interval)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)
	defer worker.Stop()

	assert.Eventually(t, func() bool {
		return spend.CacheLen() == 0
	}, time.Second, 5*time.Millisecond)
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCacheSweepInterval is how often expired spend sums are evicted
const DefaultCacheSweepInterval = time.Minute

// SpendCacheWorker is a background worker that periodically evicts expired
// entries from the spend cache
type SpendCacheWorker struct {
	spendService *SpendService
	logger       zerolog.Logger
	interval     time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	mu           sync.Mutex
	running      bool
}

// NewSpendCacheWorker creates a new spend cache worker
func NewSpendCacheWorker(spendService *SpendService, logger zerolog.Logger, interval time.Duration) *SpendCacheWorker {
	if interval <= 0 {
		interval = DefaultCacheSweepInterval
	}

	return &SpendCacheWorker{
		spendService: spendService,
		logger:       logger.With().Str("component", "spend_cache_worker").Logger(),
		interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the background sweep. Calling Start on a running worker is a no-op.
func (w *SpendCacheWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("Starting spend cache worker")

	go w.run(ctx)
}

// Stop stops the worker and waits for the sweep loop to exit
func (w *SpendCacheWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping spend cache worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Spend cache worker stopped")
}

func (w *SpendCacheWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep evicts expired entries once and returns how many were removed
func (w *SpendCacheWorker) Sweep() int {
	removed := w.spendService.CleanExpiredCache()
	if removed > 0 {
		w.logger.Debug().
			Int("removed", removed).
			Int("remaining", w.spendService.CacheLen()).
			Msg("Evicted expired spend sums")
	}
	return removed
}

// IsRunning returns whether the worker is currently running
func (w *SpendCacheWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

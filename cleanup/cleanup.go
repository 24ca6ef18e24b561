// Package cleanup runs the background worker that removes accounts whose
// email address was never verified.
package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultInterval is how often the worker runs when none is configured.
const DefaultInterval = time.Hour

// runTimeout bounds a single pass.
const runTimeout = 5 * time.Minute

// Pruner deletes unverified accounts created before cutoff.
type Pruner interface {
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds cleanup worker configuration.
type Config struct {
	// Store is the account registry to prune.
	Store Pruner

	// MaxAge is how long an account may stay unverified.
	MaxAge time.Duration

	// Interval is how often to run cleanup.
	// Defaults to 1 hour.
	Interval time.Duration

	// Logger for cleanup events. Discarded if nil.
	Logger *slog.Logger

	// Pruned is incremented by the number of removed accounts. Optional.
	Pruned prometheus.Counter
}

// Worker performs periodic cleanup of unverified accounts.
type Worker struct {
	store    Pruner
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
	pruned   prometheus.Counter
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Stats
	mu      sync.RWMutex
	lastRun time.Time
	deleted int64
	errors  int64
}

// NewWorker creates a new cleanup worker.
func NewWorker(cfg *Config) *Worker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Worker{
		store:    cfg.Store,
		maxAge:   cfg.MaxAge,
		interval: interval,
		logger:   logger,
		pruned:   cfg.Pruned,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins the cleanup worker.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop gracefully stops the cleanup worker. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()

	// Run immediately on start
	w.RunNow()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.RunNow()
		}
	}
}

// RunNow performs one pass synchronously.
func (w *Worker) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	now := w.now()
	count, err := w.store.DeleteUnverifiedBefore(ctx, now.Add(-w.maxAge))

	w.mu.Lock()
	w.lastRun = now
	if err != nil {
		w.errors++
	} else {
		w.deleted += count
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("prune unverified accounts", "error", err)
		return
	}
	if count > 0 {
		w.logger.Info("pruned unverified accounts", "count", count, "max_age", w.maxAge)
		if w.pruned != nil {
			w.pruned.Add(float64(count))
		}
	}
}

// Stats holds cleanup statistics.
type Stats struct {
	LastRun time.Time
	Deleted int64
	Errors  int64
}

// Stats returns the current cleanup statistics.
func (w *Worker) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return Stats{
		LastRun: w.lastRun,
		Deleted: w.deleted,
		Errors:  w.errors,
	}
}

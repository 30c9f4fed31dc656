package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
)

// DefaultInterval is the sweep period when none is configured.
const DefaultInterval = 5 * time.Minute

// Worker periodically sweeps expired values from a store without native
// expiry.
type Worker struct {
	store  driven.ExpiringStore
	logger *slog.Logger

	interval time.Duration

	// Internal state
	mu        sync.RWMutex
	running   bool
	lastSweep time.Time
	lastErr   error
	removed   int64
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	Store    driven.ExpiringStore
	Logger   *slog.Logger
	Interval time.Duration // Time between sweeps
}

// NewWorker creates a new sweep worker.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Worker{
		store:    cfg.Store,
		logger:   logger.With("component", "janitor"),
		interval: interval,
	}
}

// Start begins the sweep loop in the background.
// It runs until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting", "interval", w.interval)

	go func() {
		defer close(w.doneCh)
		w.loop(ctx)

		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	return nil
}

// Stop stops the loop and waits for an in-flight sweep to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done

	w.logger.Info("worker stopped")
}

func (w *Worker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass and returns how many values were removed.
func (w *Worker) Sweep(ctx context.Context) int64 {
	start := time.Now()
	removed, err := w.store.Cleanup(ctx)

	w.mu.Lock()
	w.lastSweep = start
	w.lastErr = err
	if err == nil {
		w.removed += removed
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("sweep failed", "error", err)
		return 0
	}
	if removed > 0 {
		w.logger.Info("expired values removed", "count", removed, "duration", time.Since(start))
	} else {
		w.logger.Debug("sweep found nothing to remove")
	}
	return removed
}

// Health describes the worker state.
type Health struct {
	Running      bool      `json:"running"`
	StoreHealth  bool      `json:"store_health"`
	LastSweep    time.Time `json:"last_sweep,omitzero"`
	TotalRemoved int64     `json:"total_removed"`
	Error        string    `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	health := Health{
		Running:      w.running,
		LastSweep:    w.lastSweep,
		TotalRemoved: w.removed,
	}
	lastErr := w.lastErr
	w.mu.RUnlock()

	if err := w.store.Ping(ctx); err != nil {
		health.Error = err.Error()
		return health
	}
	health.StoreHealth = true
	if lastErr != nil {
		health.Error = lastErr.Error()
	}
	return health
}

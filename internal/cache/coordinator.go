// Package cache owns the lifecycle of the in-memory UMM dataset: lazy load
// on first access, coalesced concurrent loads, and time-boxed invalidation
// with stale-while-revalidate semantics.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/floratiew/ummdashboard/internal/domain"
	"github.com/floratiew/ummdashboard/internal/observability"
)

// State is the dataset lifecycle state.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateStale
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// ErrNotReady signals that the first dataset load has not completed within
// the caller's deadline. The condition is retryable: the load keeps running
// and a later request may find the dataset ready.
var ErrNotReady = errors.New("dataset not ready")

// ErrLoadFailed signals that the underlying dataset could not be loaded.
// Fatal for the current request, but the next read retries from scratch.
var ErrLoadFailed = errors.New("dataset load failed")

// Loader reads and normalizes the full dataset from its backing file.
type Loader interface {
	LoadMessages(ctx context.Context) ([]domain.Message, error)
}

// Coordinator guards a single in-memory dataset snapshot. Snapshots are
// immutable once published; readers share the same slice without copying.
//
// Refresh policy: after the TTL expires the snapshot turns Stale. Stale
// reads are still served while exactly one background reload runs, so no
// read ever blocks on a slow refresh. Only the very first load (no snapshot
// yet) blocks callers, and then only up to their own context deadline.
type Coordinator struct {
	loader      Loader
	ttl         time.Duration
	loadTimeout time.Duration
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics

	mu       sync.Mutex
	state    State
	data     []domain.Message
	loadedAt time.Time
	inflight chan struct{} // closed when the current load settles
	loadErr  error         // outcome of the most recently settled load
}

// New creates a Coordinator. The clock is injected so tests can advance TTL
// expiry deterministically.
func New(loader Loader, ttl, loadTimeout time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Coordinator {
	return &Coordinator{
		loader:      loader,
		ttl:         ttl,
		loadTimeout: loadTimeout,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
	}
}

// Messages returns the current dataset snapshot, loading it on first access.
// Concurrent callers during a load await the same in-flight result; the file
// is never parsed twice at once. Expired snapshots are returned immediately
// while a single background refresh runs.
func (c *Coordinator) Messages(ctx context.Context) ([]domain.Message, error) {
	c.mu.Lock()

	if c.data != nil {
		if c.clock.Since(c.loadedAt) < c.ttl {
			data := c.data
			c.mu.Unlock()
			return data, nil
		}

		// Expired: serve the stale snapshot, refresh in the background.
		c.state = StateStale
		if c.inflight == nil {
			c.startLoad()
		}
		data := c.data
		c.mu.Unlock()
		c.metrics.DatasetStaleServed.Inc()
		return data, nil
	}

	// No snapshot yet: join or start the initial load.
	if c.inflight == nil {
		c.startLoad()
	}
	done := c.inflight
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: initial load still in progress: %v", ErrNotReady, ctx.Err())
	case <-done:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, c.loadErr)
	}
	return c.data, nil
}

// startLoad launches the single in-flight load goroutine. Caller must hold mu.
func (c *Coordinator) startLoad() {
	done := make(chan struct{})
	c.inflight = done
	if c.data == nil {
		c.state = StateLoading
	}

	go func() {
		// Deliberately detached from any caller context: waiters may
		// give up while others still want the result.
		ctx, cancel := context.WithTimeout(context.Background(), c.loadTimeout)
		defer cancel()

		start := c.clock.Now()
		msgs, err := c.loader.LoadMessages(ctx)
		elapsed := c.clock.Since(start)

		c.mu.Lock()
		defer func() {
			c.inflight = nil
			close(done)
			c.mu.Unlock()
		}()

		if err != nil {
			c.loadErr = err
			c.metrics.DatasetLoads.WithLabelValues("error").Inc()
			if c.data == nil {
				c.state = StateUnloaded
			}
			// Stale data, if any, stays servable.
			c.logger.Error("dataset load failed", "error", err, "duration", elapsed)
			return
		}

		c.data = msgs
		c.loadedAt = c.clock.Now()
		c.loadErr = nil
		c.state = StateReady
		c.metrics.DatasetLoads.WithLabelValues("success").Inc()
		c.metrics.DatasetLoadDuration.Observe(elapsed.Seconds())
		c.metrics.DatasetMessages.Set(float64(len(msgs)))
		c.logger.Info("dataset loaded", "messages", len(msgs), "duration", elapsed)
	}()
}

// State returns the current lifecycle state, accounting for TTL expiry.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateReady && c.clock.Since(c.loadedAt) >= c.ttl {
		return StateStale
	}
	return c.state
}

// CheckReadiness reports nil once a snapshot exists (fresh or stale).
func (c *Coordinator) CheckReadiness(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return fmt.Errorf("dataset not loaded (state %s)", c.state)
	}
	return nil
}

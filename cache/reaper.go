package cache

import (
	"context"
	"sync"
	"time"
)

// ReaperConfig configures the background expiry sweeper.
type ReaperConfig struct {
	// Interval is the time between sweeps.
	// Default: 1 minute
	Interval time.Duration

	// OnSweep is called after each sweep with the number of entries removed.
	// Optional.
	OnSweep func(removed int)
}

// Reaper periodically removes expired entries from a cache so that memory
// stays bounded even when expired keys are never read again. Sweeps run on
// their own goroutine, outside the request path.
type Reaper struct {
	cache  Cache
	config ReaperConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewReaper creates a reaper for the given cache.
// Returns ErrNilCache if cache is nil.
func NewReaper(c Cache, config ReaperConfig) (*Reaper, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	return &Reaper{cache: c, config: config}, nil
}

// Start launches the sweep loop. It is a no-op if the reaper is already
// running. The loop stops when Stop is called or ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.loop(ctx, r.done)
}

// Stop halts the sweep loop and waits for it to exit. Idempotent.
func (r *Reaper) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	done := r.done
	r.running = false
	r.mu.Unlock()

	cancel()
	<-done
}

func (r *Reaper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := r.cache.CleanupExpired(ctx)
			if r.config.OnSweep != nil {
				r.config.OnSweep(removed)
			}
		}
	}
}

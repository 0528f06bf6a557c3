package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

// countingCache records CleanupExpired invocations.
type countingCache struct {
	Cache
	mu     sync.Mutex
	sweeps int
}

func (c *countingCache) CleanupExpired(ctx context.Context) int {
	c.mu.Lock()
	c.sweeps++
	c.mu.Unlock()
	return c.Cache.CleanupExpired(ctx)
}

func (c *countingCache) sweepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweeps
}

func TestNewReaper_NilCache(t *testing.T) {
	_, err := NewReaper(nil, ReaperConfig{})
	if err != ErrNilCache {
		t.Errorf("NewReaper(nil) error = %v, want ErrNilCache", err)
	}
}

func TestReaper_SweepsExpiredEntries(t *testing.T) {
	inner := newTestCache(t, 10)
	ctx := context.Background()

	_ = inner.Set(ctx, "short", []byte("v"), 20*time.Millisecond)
	_ = inner.Set(ctx, "long", []byte("v"), time.Hour)

	swept := make(chan int, 16)
	r, err := NewReaper(inner, ReaperConfig{
		Interval: 10 * time.Millisecond,
		OnSweep:  func(removed int) { swept <- removed },
	})
	if err != nil {
		t.Fatalf("NewReaper failed: %v", err)
	}

	r.Start(ctx)
	defer r.Stop()

	// Wait until a sweep reports the expired entry removed
	deadline := time.After(time.Second)
	for {
		select {
		case removed := <-swept:
			if removed == 1 {
				if inner.Len() != 1 {
					t.Errorf("Len() = %d after sweep, want 1", inner.Len())
				}
				return
			}
		case <-deadline:
			t.Fatal("reaper never removed the expired entry")
		}
	}
}

func TestReaper_StartIdempotent(t *testing.T) {
	c := &countingCache{Cache: newTestCache(t, 10)}

	r, err := NewReaper(c, ReaperConfig{Interval: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewReaper failed: %v", err)
	}

	ctx := context.Background()
	r.Start(ctx)
	r.Start(ctx) // second Start is a no-op
	time.Sleep(30 * time.Millisecond)
	r.Stop()

	// With a single loop at 5ms interval, 30ms yields at most ~7 sweeps;
	// a duplicated loop would roughly double that.
	if got := c.sweepCount(); got > 10 {
		t.Errorf("sweep count = %d, suggests duplicate loops", got)
	}
}

func TestReaper_StopIdempotent(t *testing.T) {
	r, err := NewReaper(newTestCache(t, 10), ReaperConfig{Interval: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewReaper failed: %v", err)
	}

	r.Start(context.Background())
	r.Stop()
	r.Stop() // must not panic or block

	// Stop before Start is also a no-op
	r2, _ := NewReaper(newTestCache(t, 10), ReaperConfig{})
	r2.Stop()
}

func TestReaper_StopsOnContextCancel(t *testing.T) {
	c := &countingCache{Cache: newTestCache(t, 10)}

	r, err := NewReaper(c, ReaperConfig{Interval: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewReaper failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	before := c.sweepCount()
	time.Sleep(30 * time.Millisecond)
	if after := c.sweepCount(); after != before {
		t.Errorf("sweeps continued after cancel: %d -> %d", before, after)
	}
}

func TestReaper_DefaultInterval(t *testing.T) {
	r, err := NewReaper(newTestCache(t, 10), ReaperConfig{})
	if err != nil {
		t.Fatalf("NewReaper failed: %v", err)
	}
	if r.config.Interval != time.Minute {
		t.Errorf("Interval = %v, want 1m", r.config.Interval)
	}
}

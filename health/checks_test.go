package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/embedgate/embedgate/cache"
	"github.com/embedgate/embedgate/ratelimit"
)

func TestCacheChecker(t *testing.T) {
	ctx := context.Background()

	c, err := cache.NewLRUCache(10, cache.DefaultPolicy())
	if err != nil {
		t.Fatalf("NewLRUCache() error = %v", err)
	}
	checker := NewCacheChecker(c, 10, CacheCheckerConfig{WarningThreshold: 0.5})

	if got := checker.Name(); got != "cache" {
		t.Errorf("Name() = %q, want cache", got)
	}

	result := checker.Check(ctx)
	if result.Status != StatusHealthy {
		t.Errorf("empty cache: Status = %v, want healthy", result.Status)
	}

	for _, key := range []string{"a", "b", "c", "d", "e", "f"} {
		if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	result = checker.Check(ctx)
	if result.Status != StatusDegraded {
		t.Errorf("cache above threshold: Status = %v, want degraded", result.Status)
	}
	if result.Details["size"] != 6 {
		t.Errorf("Details[size] = %v, want 6", result.Details["size"])
	}
}

func TestCacheCheckerNilCache(t *testing.T) {
	checker := NewCacheChecker(nil, 10, CacheCheckerConfig{})
	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", result.Status)
	}
}

func TestLimiterChecker(t *testing.T) {
	fw, err := ratelimit.NewFixedWindow(ratelimit.Config{
		Limit:         10,
		Window:        time.Minute,
		MaxIdentities: 4,
	})
	if err != nil {
		t.Fatalf("NewFixedWindow() error = %v", err)
	}
	checker := NewLimiterChecker(fw, LimiterCheckerConfig{WarningThreshold: 0.75})

	if got := checker.Name(); got != "ratelimit" {
		t.Errorf("Name() = %q, want ratelimit", got)
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("empty table: Status = %v, want healthy", result.Status)
	}

	for _, id := range []string{"a", "b", "c"} {
		fw.Check(id)
	}

	result = checker.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("table above threshold: Status = %v, want degraded", result.Status)
	}
	if result.Details["identities"] != 3 {
		t.Errorf("Details[identities] = %v, want 3", result.Details["identities"])
	}
}

func TestUpstreamChecker(t *testing.T) {
	ok := NewUpstreamChecker("embedder", func(ctx context.Context) error {
		return nil
	})
	if result := ok.Check(context.Background()); result.Status != StatusHealthy {
		t.Errorf("reachable upstream: Status = %v, want healthy", result.Status)
	}

	probeErr := errors.New("connection refused")
	down := NewUpstreamChecker("embedder", func(ctx context.Context) error {
		return probeErr
	})
	result := down.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("unreachable upstream: Status = %v, want unhealthy", result.Status)
	}
	if !errors.Is(result.Error, probeErr) {
		t.Errorf("Error = %v, want %v", result.Error, probeErr)
	}

	noProbe := NewUpstreamChecker("embedder", nil)
	if result := noProbe.Check(context.Background()); result.Status != StatusHealthy {
		t.Errorf("nil probe: Status = %v, want healthy", result.Status)
	}
}

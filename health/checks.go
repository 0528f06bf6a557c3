package health

import (
	"context"
	"fmt"

	"github.com/embedgate/embedgate/cache"
	"github.com/embedgate/embedgate/ratelimit"
)

// CacheCheckerConfig configures cache pressure thresholds.
type CacheCheckerConfig struct {
	// WarningThreshold is the fill ratio above which the cache is degraded.
	// Default: 0.90
	WarningThreshold float64
}

// CacheChecker reports the fill pressure of the response cache. A cache at
// capacity still serves requests, so pressure only ever degrades, it never
// marks the component unhealthy.
type CacheChecker struct {
	store    cache.Cache
	capacity int
	config   CacheCheckerConfig
}

// NewCacheChecker creates a checker for the given cache and its capacity.
func NewCacheChecker(store cache.Cache, capacity int, config CacheCheckerConfig) *CacheChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold > 1 {
		config.WarningThreshold = 0.90
	}
	return &CacheChecker{store: store, capacity: capacity, config: config}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check reports the current cache fill ratio.
func (c *CacheChecker) Check(_ context.Context) Result {
	if c.store == nil {
		return Unhealthy("cache not configured", cache.ErrNilCache)
	}

	size := c.store.Len()
	ratio := 0.0
	if c.capacity > 0 {
		ratio = float64(size) / float64(c.capacity)
	}

	details := map[string]any{
		"size":     size,
		"capacity": c.capacity,
		"fill":     fmt.Sprintf("%.2f", ratio),
	}

	if ratio >= c.config.WarningThreshold {
		return Degraded(fmt.Sprintf("cache at %.0f%% of capacity", ratio*100)).WithDetails(details)
	}
	return Healthy("cache within capacity").WithDetails(details)
}

// LimiterCheckerConfig configures identity table pressure thresholds.
type LimiterCheckerConfig struct {
	// WarningThreshold is the fill ratio of the identity table above which
	// the limiter is degraded. Default: 0.90
	WarningThreshold float64
}

// LimiterChecker reports the pressure on the rate limiter's identity table.
// A full table evicts the least recently seen identity, which resets that
// identity's window counter, so sustained pressure weakens limiting.
type LimiterChecker struct {
	limiter *ratelimit.FixedWindow
	config  LimiterCheckerConfig
}

// NewLimiterChecker creates a checker for the given rate limiter.
func NewLimiterChecker(limiter *ratelimit.FixedWindow, config LimiterCheckerConfig) *LimiterChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold > 1 {
		config.WarningThreshold = 0.90
	}
	return &LimiterChecker{limiter: limiter, config: config}
}

// Name returns the name of this checker.
func (c *LimiterChecker) Name() string {
	return "ratelimit"
}

// Check reports the identity table fill ratio.
func (c *LimiterChecker) Check(_ context.Context) Result {
	if c.limiter == nil {
		return Unhealthy("rate limiter not configured", nil)
	}

	tracked := c.limiter.Identities()
	max := c.limiter.Config().MaxIdentities
	ratio := 0.0
	if max > 0 {
		ratio = float64(tracked) / float64(max)
	}

	details := map[string]any{
		"identities":     tracked,
		"max_identities": max,
		"fill":           fmt.Sprintf("%.2f", ratio),
	}

	if ratio >= c.config.WarningThreshold {
		return Degraded(fmt.Sprintf("identity table at %.0f%% of capacity", ratio*100)).WithDetails(details)
	}
	return Healthy("identity table within capacity").WithDetails(details)
}

// UpstreamChecker probes an upstream provider for reachability.
type UpstreamChecker struct {
	name  string
	probe func(ctx context.Context) error
}

// NewUpstreamChecker creates a checker that calls probe on each check.
// The probe should be cheap: a connectivity test or a no-op request,
// never a full embedding call.
func NewUpstreamChecker(name string, probe func(ctx context.Context) error) *UpstreamChecker {
	return &UpstreamChecker{name: name, probe: probe}
}

// Name returns the name of this checker.
func (c *UpstreamChecker) Name() string {
	return c.name
}

// Check runs the probe.
func (c *UpstreamChecker) Check(ctx context.Context) Result {
	if c.probe == nil {
		return Healthy("no probe configured")
	}
	if err := c.probe(ctx); err != nil {
		return Unhealthy("upstream unreachable", err)
	}
	return Healthy("upstream reachable")
}

var (
	_ Checker = (*CacheChecker)(nil)
	_ Checker = (*LimiterChecker)(nil)
	_ Checker = (*UpstreamChecker)(nil)
)

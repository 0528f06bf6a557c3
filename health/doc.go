// Package health provides health checking for the embedding gateway.
//
// A Checker reports the health of one component: the response cache, the
// rate limiter's identity table, or an upstream provider. The Status type
// represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single composite
// check:
//
//	agg := health.NewAggregator()
//	agg.Register("cache", health.NewCacheChecker(store, capacity, health.CacheCheckerConfig{}))
//	agg.Register("ratelimit", health.NewLimiterChecker(limiter, health.LimiterCheckerConfig{}))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common probe patterns:
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//	// serves /healthz, /readyz, and /health
package health

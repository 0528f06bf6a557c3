package config

import "errors"

var (
	// ErrInvalidCacheCapacity indicates CacheCapacity is zero or negative.
	ErrInvalidCacheCapacity = errors.New("config: cache capacity must be positive")

	// ErrInvalidTTL indicates a TTL value is negative or DefaultTTL exceeds MaxTTL.
	ErrInvalidTTL = errors.New("config: invalid ttl")

	// ErrInvalidRateLimit indicates RateLimit is zero or negative.
	ErrInvalidRateLimit = errors.New("config: rate limit must be positive")

	// ErrInvalidRateWindow indicates RateWindow is zero or negative.
	ErrInvalidRateWindow = errors.New("config: rate window must be positive")

	// ErrInvalidMaxIdentities indicates MaxIdentities is zero or negative.
	ErrInvalidMaxIdentities = errors.New("config: max identities must be positive")

	// ErrInvalidCleanupInterval indicates CleanupInterval is negative.
	ErrInvalidCleanupInterval = errors.New("config: cleanup interval must not be negative")

	// ErrInvalidUpstreamTimeout indicates UpstreamTimeout is zero or negative.
	ErrInvalidUpstreamTimeout = errors.New("config: upstream timeout must be positive")
)

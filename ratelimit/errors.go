package ratelimit

import "errors"

// Sentinel errors for limiter construction.
var (
	// ErrInvalidLimit indicates Config.Limit is below 1.
	ErrInvalidLimit = errors.New("ratelimit: limit must be at least 1")

	// ErrInvalidWindow indicates Config.Window is not positive.
	ErrInvalidWindow = errors.New("ratelimit: window must be positive")
)

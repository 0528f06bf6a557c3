package gateway

import "errors"

var (
	// ErrRateLimited indicates the identity exhausted its window allowance.
	// The accompanying Response carries the retry-after hint.
	ErrRateLimited = errors.New("gateway: rate limited")

	// ErrNilDependency indicates a required collaborator was not provided.
	ErrNilDependency = errors.New("gateway: nil dependency")
)

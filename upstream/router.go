package upstream

import (
	"context"
	"sync"
)

// Router dispatches requests to the Upstream registered for each operation
// type, so embedding and vector-store services can be wired independently
// behind a single Upstream the dispatcher consumes.
type Router struct {
	mu       sync.RWMutex
	handlers map[Op]Upstream
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[Op]Upstream)}
}

// Register binds an upstream to an operation type. A later registration for
// the same operation replaces the earlier one. Nil upstreams are ignored.
func (r *Router) Register(op Op, u Upstream) {
	if u == nil || !op.Valid() {
		return
	}
	r.mu.Lock()
	r.handlers[op] = u
	r.mu.Unlock()
}

// Execute routes the request to its registered upstream. Requests for
// unknown or unregistered operations fail with ErrInvalidInput.
func (r *Router) Execute(ctx context.Context, req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	u, ok := r.handlers[req.Op]
	r.mu.RUnlock()

	if !ok {
		return nil, wrapInvalid("no upstream registered for operation %q", string(req.Op))
	}
	return u.Execute(ctx, req)
}

// Ensure Router implements Upstream
var _ Upstream = (*Router)(nil)

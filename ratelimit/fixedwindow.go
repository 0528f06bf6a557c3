package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

// Config configures the fixed-window limiter.
type Config struct {
	// Limit is the number of admissions allowed per window per identity.
	// Must be at least 1.
	Limit int

	// Window is the fixed window duration.
	// Must be positive.
	Window time.Duration

	// MaxIdentities caps the identity table. When a new identity would
	// exceed the cap, the least-recently-seen identity is evicted.
	// Default: 10000
	MaxIdentities int
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	// Allowed reports whether the request was admitted.
	Allowed bool

	// Remaining is the number of admissions left in the current window.
	Remaining int

	// RetryAfter is how long until the window resets. Set on rejection.
	RetryAfter time.Duration

	// ResetAt is when the current window ends.
	ResetAt time.Time
}

// FixedWindow is a per-identity fixed-window rate limiter.
//
// Contract:
// - Concurrency: safe for concurrent use; a single mutex guards all state.
// - Admission: exactly Limit admissions succeed per window; the Limit+1-th
//   request within the same window is always rejected.
// - The burst of up to 2x Limit across a window boundary is an accepted
//   property of the fixed-window algorithm.
type FixedWindow struct {
	config Config

	mu     sync.Mutex
	states map[string]*list.Element
	order  *list.List // front = most recently seen identity

	// now is the clock; overridden in tests.
	now func() time.Time
}

type identityState struct {
	identity    string
	windowStart time.Time
	count       int
}

// NewFixedWindow creates a fixed-window limiter.
// Returns ErrInvalidLimit or ErrInvalidWindow on bad configuration.
func NewFixedWindow(config Config) (*FixedWindow, error) {
	if config.Limit < 1 {
		return nil, ErrInvalidLimit
	}
	if config.Window <= 0 {
		return nil, ErrInvalidWindow
	}
	if config.MaxIdentities <= 0 {
		config.MaxIdentities = 10000
	}

	return &FixedWindow{
		config: config,
		states: make(map[string]*list.Element),
		order:  list.New(),
		now:    time.Now,
	}, nil
}

// Check evaluates and, if admitted, consumes one slot for identity.
// The count resets whenever the current time crosses into a new window.
// An admitted slot is never refunded, even if the request later fails.
func (fw *FixedWindow) Check(identity string) Decision {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.now()
	windowStart := now.Truncate(fw.config.Window)
	resetAt := windowStart.Add(fw.config.Window)

	el, ok := fw.states[identity]
	if !ok {
		el = fw.insertLocked(identity, windowStart)
	}
	fw.order.MoveToFront(el)

	state := el.Value.(*identityState)
	if !state.windowStart.Equal(windowStart) {
		// Window rolled over: reset, don't destroy
		state.windowStart = windowStart
		state.count = 0
	}

	if state.count < fw.config.Limit {
		state.count++
		return Decision{
			Allowed:   true,
			Remaining: fw.config.Limit - state.count,
			ResetAt:   resetAt,
		}
	}

	return Decision{
		Allowed:    false,
		Remaining:  0,
		RetryAfter: resetAt.Sub(now),
		ResetAt:    resetAt,
	}
}

// Allow is a convenience wrapper returning only the admission verdict.
func (fw *FixedWindow) Allow(identity string) bool {
	return fw.Check(identity).Allowed
}

// Identities returns the current size of the identity table.
func (fw *FixedWindow) Identities() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.order.Len()
}

// Config returns the limiter configuration.
func (fw *FixedWindow) Config() Config {
	return fw.config
}

// insertLocked creates state for a new identity, evicting the
// least-recently-seen identity if the table is at its cap.
func (fw *FixedWindow) insertLocked(identity string, windowStart time.Time) *list.Element {
	if fw.order.Len() >= fw.config.MaxIdentities {
		oldest := fw.order.Back()
		if oldest != nil {
			old := oldest.Value.(*identityState)
			delete(fw.states, old.identity)
			fw.order.Remove(oldest)
		}
	}

	el := fw.order.PushFront(&identityState{
		identity:    identity,
		windowStart: windowStart,
	})
	fw.states[identity] = el
	return el
}

package upstream

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// GuardConfig configures the upstream call guard.
type GuardConfig struct {
	// MaxFailures is the consecutive-failure count that opens the circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long an open circuit waits before probing.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// MaxAttempts is the total attempts per call (including the first).
	// Default: 1 (no retries)
	MaxAttempts int

	// InitialDelay is the backoff before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the backoff between retries.
	// Default: 2 seconds
	MaxDelay time.Duration

	// MaxConcurrent caps in-flight calls through the guard.
	// Default: 64
	MaxConcurrent int
}

// circuitState tracks the breaker position.
type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// Guard protects an upstream service: it caps concurrency, opens a circuit
// after consecutive failures, and retries transient errors with jittered
// exponential backoff. Invalid-input errors are never retried and never
// count against the circuit.
type Guard struct {
	config GuardConfig
	sem    chan struct{}

	mu          sync.Mutex
	state       circuitState
	failures    int
	lastFailure time.Time
}

// NewGuard creates a guard with defaults applied.
func NewGuard(config GuardConfig) *Guard {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 2 * time.Second
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 64
	}

	return &Guard{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Execute runs op through the guard. The returned error is always
// classified into the upstream taxonomy.
func (g *Guard) Execute(ctx context.Context, op func(context.Context) error) error {
	// Concurrency cap: saturation means the service is effectively
	// unavailable for this call.
	select {
	case g.sem <- struct{}{}:
	default:
		return fmt.Errorf("%w: too many in-flight calls", ErrUnavailable)
	}
	defer func() { <-g.sem }()

	if err := g.beforeCall(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		err := Classify(op(ctx))
		if err == nil {
			g.recordSuccess()
			return nil
		}

		lastErr = err
		if !Retryable(err) {
			// Bad input is the caller's fault, not the service's
			return err
		}
		g.recordFailure()

		if attempt == g.config.MaxAttempts {
			break
		}
		if g.isOpen() {
			break
		}

		select {
		case <-ctx.Done():
			return Classify(ctx.Err())
		case <-time.After(g.backoff(attempt)):
		}
	}

	return lastErr
}

// State exposes the circuit position for health reporting.
func (g *Guard) State() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case circuitOpen:
		return "open"
	case circuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

func (g *Guard) beforeCall() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == circuitOpen {
		if time.Since(g.lastFailure) < g.config.ResetTimeout {
			return fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		g.state = circuitHalfOpen
	}
	return nil
}

func (g *Guard) recordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = 0
	g.state = circuitClosed
}

func (g *Guard) recordFailure() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failures++
	g.lastFailure = time.Now()
	if g.state == circuitHalfOpen || g.failures >= g.config.MaxFailures {
		g.state = circuitOpen
	}
}

func (g *Guard) isOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == circuitOpen
}

// backoff computes the jittered exponential delay for the given attempt.
func (g *Guard) backoff(attempt int) time.Duration {
	delay := g.config.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= g.config.MaxDelay {
			delay = g.config.MaxDelay
			break
		}
	}
	// Jitter in [0.5, 1.0) of the computed delay
	return delay/2 + time.Duration(rand.Int64N(int64(delay/2)+1))
}

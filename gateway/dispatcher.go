package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/embedgate/embedgate/cache"
	"github.com/embedgate/embedgate/identity"
	"github.com/embedgate/embedgate/ratelimit"
	"github.com/embedgate/embedgate/telemetry"
	"github.com/embedgate/embedgate/upstream"
)

// Result sources.
const (
	// SourceCache marks a response served from the cache.
	SourceCache = "cache"

	// SourceUpstream marks a response produced by an upstream call.
	SourceUpstream = "upstream"
)

// Response is the outcome of a dispatched request.
type Response struct {
	// RequestID is the per-request identifier, set on every response.
	RequestID string

	// Value is the result payload. Nil on failure.
	Value []byte

	// Source reports where the value came from: cache or upstream.
	Source string

	// RetryAfter is how long the caller should wait before retrying.
	// Set only on rate-limited rejections.
	RetryAfter time.Duration
}

// Dispatcher coordinates rate limiting, caching, and upstream calls.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ordering: the rate check runs first; a rejected request touches
//   neither the cache nor the upstream.
// - An admitted slot is never refunded, even when the request fails.
// - Failures are never cached.
type Dispatcher struct {
	store   cache.Cache
	keyer   cache.Keyer
	policy  cache.Policy
	limiter *ratelimit.FixedWindow
	up      upstream.Upstream

	upstreamTimeout time.Duration

	// flight collapses concurrent identical misses when enabled.
	flight *singleflight.Group

	logger  telemetry.Logger
	tracer  telemetry.Tracer
	metrics telemetry.Metrics

	newRequestID func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSingleFlight enables deduplication of concurrent identical cache
// misses: only one upstream call runs per cache key, and every waiter
// receives its result. Off by default because waiters also share the
// failure of the winning call.
func WithSingleFlight() Option {
	return func(d *Dispatcher) {
		d.flight = &singleflight.Group{}
	}
}

// WithUpstreamTimeout sets the per-call deadline applied to upstream
// requests. Default: 5 seconds.
func WithUpstreamTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.upstreamTimeout = timeout
		}
	}
}

// WithObserver wires the dispatcher's logging, tracing, and metrics to
// the given observer.
func WithObserver(obs telemetry.Observer) Option {
	return func(d *Dispatcher) {
		if obs == nil {
			return
		}
		d.logger = obs.Logger()
		d.tracer = telemetry.NewTracer(obs.Tracer())
		if m, err := telemetry.NewMetrics(obs.Meter()); err == nil {
			d.metrics = m
		}
	}
}

// WithMetrics overrides the metrics sink.
func WithMetrics(m telemetry.Metrics) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// CacheEventHook adapts a metrics sink into a cache event hook, so
// evictions and expirations land on the same instrument as the hit and
// miss events the dispatcher records itself. Pass the result to
// cache.WithEventHook when constructing the store.
func CacheEventHook(m telemetry.Metrics) cache.EventHook {
	return func(event string) {
		if m != nil {
			m.RecordCacheEvent(context.Background(), event)
		}
	}
}

// NewDispatcher creates a dispatcher over the given collaborators.
func NewDispatcher(store cache.Cache, keyer cache.Keyer, policy cache.Policy, limiter *ratelimit.FixedWindow, up upstream.Upstream, opts ...Option) (*Dispatcher, error) {
	if store == nil || keyer == nil || limiter == nil || up == nil {
		return nil, ErrNilDependency
	}

	d := &Dispatcher{
		store:           store,
		keyer:           keyer,
		policy:          policy,
		limiter:         limiter,
		up:              up,
		upstreamTimeout: 5 * time.Second,
		metrics:         telemetry.NoopMetrics(),
		newRequestID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch runs one request through the gateway sequence. The returned
// Response always carries the request ID; Value and Source are set only
// on success. Upstream failures come back classified under the upstream
// package's taxonomy.
func (d *Dispatcher) Dispatch(ctx context.Context, identity string, req upstream.Request) (*Response, error) {
	start := time.Now()
	resp := &Response{RequestID: d.newRequestID()}

	meta := telemetry.RequestMeta{
		RequestID: resp.RequestID,
		Operation: string(req.Op),
		Identity:  identity,
	}
	log := d.requestLogger(meta)
	ctx, span := d.startSpan(ctx, meta)

	if err := req.Validate(); err != nil {
		d.endSpan(span, err)
		d.metrics.RecordDispatch(ctx, string(req.Op), "invalid", time.Since(start))
		return resp, err
	}

	// Rate check first: a rejected request must not touch the cache or
	// the upstream, and an admitted slot is kept even on later failure.
	decision := d.limiter.Check(identity)
	if !decision.Allowed {
		resp.RetryAfter = decision.RetryAfter
		if log != nil {
			log.Warn(ctx, "request rate limited",
				telemetry.Field{Key: "retry_after", Value: decision.RetryAfter.String()},
			)
		}
		d.endSpan(span, ErrRateLimited)
		d.metrics.RecordDispatch(ctx, string(req.Op), "rate_limited", time.Since(start))
		return resp, ErrRateLimited
	}

	key, err := d.keyer.Key(string(req.Op), req.Inputs)
	if err != nil {
		d.endSpan(span, err)
		d.metrics.RecordDispatch(ctx, string(req.Op), "invalid", time.Since(start))
		return resp, err
	}

	if value, ok := d.store.Get(ctx, key); ok {
		resp.Value = value
		resp.Source = SourceCache
		if log != nil {
			log.Debug(ctx, "served from cache",
				telemetry.Field{Key: "key", Value: key},
			)
		}
		d.endSpan(span, nil)
		d.metrics.RecordCacheEvent(ctx, "hit")
		d.metrics.RecordDispatch(ctx, string(req.Op), "cache_hit", time.Since(start))
		return resp, nil
	}
	d.metrics.RecordCacheEvent(ctx, "miss")

	value, err := d.callUpstream(ctx, key, req)
	if err != nil {
		if log != nil {
			log.Error(ctx, "upstream call failed",
				telemetry.Field{Key: "code", Value: upstream.Code(err)},
			)
		}
		d.endSpan(span, err)
		d.metrics.RecordDispatch(ctx, string(req.Op), "upstream_error", time.Since(start))
		return resp, err
	}

	// Store-and-respond. A store failure is not a request failure: the
	// caller still gets the value, the entry is just not cached.
	if ttl := d.policy.EffectiveTTL(0); ttl > 0 {
		if serr := d.store.Set(ctx, key, value, ttl); serr != nil && log != nil {
			log.Warn(ctx, "cache store failed",
				telemetry.Field{Key: "key", Value: key},
				telemetry.Field{Key: "error", Value: serr.Error()},
			)
		}
	}

	resp.Value = value
	resp.Source = SourceUpstream
	d.endSpan(span, nil)
	d.metrics.RecordDispatch(ctx, string(req.Op), "upstream", time.Since(start))
	return resp, nil
}

// DispatchFromContext dispatches using the rate-limit principal attached
// to the context. Requests without an attached identity share the
// anonymous principal's allowance.
func (d *Dispatcher) DispatchFromContext(ctx context.Context, req upstream.Request) (*Response, error) {
	return d.Dispatch(ctx, identity.PrincipalFromContext(ctx), req)
}

// callUpstream performs the upstream call under the configured timeout,
// collapsing concurrent identical misses when single-flight is enabled.
func (d *Dispatcher) callUpstream(ctx context.Context, key string, req upstream.Request) ([]byte, error) {
	start := time.Now()

	call := func() ([]byte, error) {
		callCtx, cancel := context.WithTimeout(ctx, d.upstreamTimeout)
		defer cancel()
		value, err := d.up.Execute(callCtx, req)
		if err != nil {
			return nil, upstream.Classify(err)
		}
		return value, nil
	}

	var value []byte
	var err error
	if d.flight != nil {
		var v any
		v, err, _ = d.flight.Do(key, func() (any, error) {
			return call()
		})
		if b, ok := v.([]byte); ok {
			value = b
		}
	} else {
		value, err = call()
	}

	d.metrics.RecordUpstream(ctx, string(req.Op), upstream.Code(err), time.Since(start))
	return value, err
}

// spanRef carries a started span together with the tracer that must end
// it, so the no-tracer case stays a cheap zero value.
type spanRef struct {
	span   trace.Span
	tracer telemetry.Tracer
}

func (d *Dispatcher) requestLogger(meta telemetry.RequestMeta) telemetry.Logger {
	if d.logger == nil {
		return nil
	}
	return d.logger.WithRequest(meta)
}

func (d *Dispatcher) startSpan(ctx context.Context, meta telemetry.RequestMeta) (context.Context, spanRef) {
	if d.tracer == nil {
		return ctx, spanRef{}
	}
	spanCtx, span := d.tracer.StartSpan(ctx, meta)
	return spanCtx, spanRef{span: span, tracer: d.tracer}
}

func (d *Dispatcher) endSpan(ref spanRef, err error) {
	if ref.tracer != nil {
		ref.tracer.EndSpan(ref.span, err)
	}
}

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records gateway dispatch activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; never blocks the dispatch path.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordDispatch records one dispatched request with its outcome
	// (cache_hit, upstream, rate_limited, upstream_error) and duration.
	RecordDispatch(ctx context.Context, operation, outcome string, duration time.Duration)

	// RecordCacheEvent records a cache event (hit, miss, eviction, expired).
	RecordCacheEvent(ctx context.Context, event string)

	// RecordUpstream records an upstream call with its error code
	// ("" on success) and duration.
	RecordUpstream(ctx context.Context, operation, code string, duration time.Duration)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter         metric.Meter
	dispatchCount metric.Int64Counter
	dispatchHist  metric.Float64Histogram
	cacheEvents   metric.Int64Counter
	upstreamCount metric.Int64Counter
	upstreamHist  metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	dispatchCount, err := meter.Int64Counter(
		"gateway.dispatch.total",
		metric.WithDescription("Total number of dispatched requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	dispatchHist, err := meter.Float64Histogram(
		"gateway.dispatch.duration_ms",
		metric.WithDescription("Dispatch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheEvents, err := meter.Int64Counter(
		"gateway.cache.events",
		metric.WithDescription("Cache hits, misses, evictions, and expirations"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	upstreamCount, err := meter.Int64Counter(
		"gateway.upstream.total",
		metric.WithDescription("Total number of upstream calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	upstreamHist, err := meter.Float64Histogram(
		"gateway.upstream.duration_ms",
		metric.WithDescription("Upstream call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:         meter,
		dispatchCount: dispatchCount,
		dispatchHist:  dispatchHist,
		cacheEvents:   cacheEvents,
		upstreamCount: upstreamCount,
		upstreamHist:  upstreamHist,
	}, nil
}

func (m *metricsImpl) RecordDispatch(ctx context.Context, operation, outcome string, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("gateway.operation", operation),
		attribute.String("gateway.outcome", outcome),
	)
	m.dispatchCount.Add(ctx, 1, opt)
	m.dispatchHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheEvent(ctx context.Context, event string) {
	m.cacheEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.event", event),
	))
}

func (m *metricsImpl) RecordUpstream(ctx context.Context, operation, code string, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("gateway.operation", operation),
		attribute.String("upstream.code", code),
	)
	m.upstreamCount.Add(ctx, 1, opt)
	m.upstreamHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// NoopMetrics returns a metrics implementation that does nothing.
func NoopMetrics() Metrics {
	return &noopMetrics{}
}

type noopMetrics struct{}

func (m *noopMetrics) RecordDispatch(context.Context, string, string, time.Duration) {}
func (m *noopMetrics) RecordCacheEvent(context.Context, string)                      {}
func (m *noopMetrics) RecordUpstream(context.Context, string, string, time.Duration) {}

package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	ctx := context.Background()
	m.RecordDispatch(ctx, "embed", "upstream", 25*time.Millisecond)
	m.RecordDispatch(ctx, "embed", "rate_limited", 0)
	m.RecordCacheEvent(ctx, "miss")
	m.RecordCacheEvent(ctx, "eviction")
	m.RecordUpstream(ctx, "vector_search", "unavailable", 120*time.Millisecond)
	m.RecordUpstream(ctx, "embed", "", 40*time.Millisecond)
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics()
	ctx := context.Background()
	m.RecordDispatch(ctx, "embed", "cache_hit", 0)
	m.RecordCacheEvent(ctx, "hit")
	m.RecordUpstream(ctx, "embed", "timeout", 0)
}

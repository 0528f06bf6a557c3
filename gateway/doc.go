// Package gateway implements the request dispatcher.
//
// The Dispatcher runs each request through a fixed sequence: rate-limit
// check, cache lookup, upstream call, cache store, respond. Rate-limited
// requests are rejected before any cache or upstream work. Cache hits
// short-circuit the upstream call. Upstream failures are classified and
// returned to the caller, never cached.
//
// An admitted rate-limit slot is consumed whether or not the request
// ultimately succeeds. No lock is held across upstream I/O.
//
// # Basic Usage
//
//	d, err := gateway.NewDispatcher(store, keyer, policy, limiter, provider)
//	if err != nil {
//	    return err
//	}
//	resp, err := d.Dispatch(ctx, "key-abc", upstream.Request{
//	    Op:     upstream.OpEmbed,
//	    Inputs: map[string]any{"text": "hello world"},
//	})
//
// Optional single-flight deduplication collapses concurrent identical
// misses into one upstream call:
//
//	d, err := gateway.NewDispatcher(store, keyer, policy, limiter, provider,
//	    gateway.WithSingleFlight())
package gateway

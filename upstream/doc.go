// Package upstream defines the external operations the gateway dispatches
// to on a cache miss: embedding generation, vector search, and metadata
// lookup.
//
// It provides the Upstream interface the dispatcher consumes, a stable
// error taxonomy (timeout, unavailable, invalid input), an operation
// router, and JSON-over-HTTP clients for embedding and vector-store
// services. Retry and circuit-breaking live here, on the collaborator
// side; the dispatcher itself never retries.
package upstream

// Package cache provides bounded result caching for gateway dispatch.
//
// It provides a Cache interface with an LRU implementation combining a hard
// capacity bound with per-entry TTL expiry, SHA-256-based key derivation
// over normalized request inputs, TTL policies, and a background reaper
// that sweeps expired entries outside the request path.
package cache

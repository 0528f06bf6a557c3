// Package ratelimit provides per-identity admission control for the gateway.
//
// It implements a fixed-window counter: each identity gets at most Limit
// admissions per Window, with the counter reset at window boundaries.
// Rejections carry a machine-readable retry-after. The identity table is
// bounded; least-recently-seen identities are evicted when the cap is hit.
package ratelimit

// Package identity resolves the caller identity that partitions rate-limit
// state.
//
// Extraction is deliberately narrow: an API key or the unverified subject
// claim of a bearer token. Verification and authorization belong to the
// surrounding deployment, not to the gateway core.
package identity

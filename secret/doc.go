// Package secret resolves environment references in configuration values.
//
// Upstream credentials (API keys, base URLs) are written as ${VAR}
// references and expanded strictly at construction time, so a missing
// variable fails startup instead of producing an empty credential.
package secret

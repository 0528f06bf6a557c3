package upstream

import (
	"context"
	"strings"
)

// Op identifies an upstream operation type.
type Op string

const (
	// OpEmbed generates an embedding vector for input text.
	OpEmbed Op = "embed"

	// OpVectorSearch performs a similarity search in the vector store.
	OpVectorSearch Op = "vector_search"

	// OpMetadataLookup fetches stored metadata for a point.
	OpMetadataLookup Op = "metadata_lookup"
)

// Valid reports whether op is a known operation type.
func (op Op) Valid() bool {
	switch op {
	case OpEmbed, OpVectorSearch, OpMetadataLookup:
		return true
	}
	return false
}

// Request describes one upstream invocation. Inputs are normalized before
// reaching this package; the same map feeds cache key derivation, so the
// pair (Op, Inputs) fully determines the result for cacheable operations.
type Request struct {
	Op     Op
	Inputs map[string]any
}

// Validate checks the request shape.
func (r Request) Validate() error {
	if !r.Op.Valid() {
		return wrapInvalid("unknown operation %q", string(r.Op))
	}
	return nil
}

// Upstream is the external collaborator contract consumed by the dispatcher.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Execute must honor cancellation/deadlines.
// - Errors: failures are classified via this package's taxonomy; Execute
//   must be side-effect-free with respect to the cache layer.
type Upstream interface {
	// Execute performs the operation and returns the raw result payload.
	Execute(ctx context.Context, req Request) ([]byte, error)
}

// Func is an adapter to allow ordinary functions to be used as Upstreams.
type Func func(ctx context.Context, req Request) ([]byte, error)

// Execute calls f.
func (f Func) Execute(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// stringInput extracts a trimmed string field from request inputs.
func stringInput(inputs map[string]any, key string) string {
	v, ok := inputs[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

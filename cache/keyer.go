package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Keyer generates deterministic cache keys from gateway request parameters.
//
// Contract:
// - Determinism: same inputs must produce same key, regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key from operation and normalized inputs.
	Key(operation string, inputs any) (string, error)
}

// DefaultKeyer generates SHA-256 based cache keys.
//
// Normalization policy, fixed by design because it determines hit rate:
// string values are trimmed of surrounding whitespace, map keys are sorted,
// and case is preserved (embedding inputs are case-sensitive).
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
// Format: embed:<operation>:<hash>
// where hash is the first 32 characters of SHA-256(canonical JSON(inputs))
func (k *DefaultKeyer) Key(operation string, inputs any) (string, error) {
	if strings.TrimSpace(operation) == "" {
		return "", fmt.Errorf("cache: operation is required: %w", ErrInvalidKey)
	}

	// Canonicalize inputs to ensure deterministic serialization
	canonical, err := canonicalize(inputs)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize inputs: %w", err)
	}

	// Hash the canonical representation
	hash := sha256.Sum256(canonical)
	hashStr := hex.EncodeToString(hash[:16]) // First 16 bytes = 32 hex chars

	return fmt.Sprintf("embed:%s:%s", operation, hashStr), nil
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key and string values are trimmed.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case string:
		return json.Marshal(strings.TrimSpace(val))
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// For other types, use standard JSON encoding
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	// Sort keys
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Build ordered JSON object
	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		// Key
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		// Value (recursively canonicalize)
		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/embedgate/embedgate/secret"
)

// VectorConfig configures the HTTP vector-store client.
type VectorConfig struct {
	// BaseURL of the vector store. Supports ${ENV} references. Required.
	BaseURL string

	// APIKey sent as the api-key header. Supports ${ENV} references. Optional.
	APIKey string

	// Collection is the collection searched and read. Required.
	Collection string

	// TopK is the default result count for searches.
	// Default: 5
	TopK int

	// Timeout for a single HTTP call.
	// Default: 5 seconds
	Timeout time.Duration

	// Guard configures circuit breaking, retry, and concurrency caps.
	Guard GuardConfig
}

// HTTPVectorClient serves OpVectorSearch and OpMetadataLookup against a
// Qdrant-style HTTP API:
//
//	POST <BaseURL>/collections/<collection>/points/search
//	POST <BaseURL>/collections/<collection>/points
type HTTPVectorClient struct {
	config VectorConfig
	http   *http.Client
	guard  *Guard
}

// NewHTTPVectorClient creates a vector-store client. Environment references
// in BaseURL and APIKey are resolved strictly at construction.
func NewHTTPVectorClient(config VectorConfig) (*HTTPVectorClient, error) {
	baseURL, err := secret.ExpandEnvStrict(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("upstream: resolving vector base URL: %w", err)
	}
	if baseURL == "" {
		return nil, errors.New("upstream: vector base URL is required")
	}
	config.BaseURL = baseURL

	apiKey, err := secret.ExpandEnvStrict(config.APIKey)
	if err != nil {
		return nil, fmt.Errorf("upstream: resolving vector API key: %w", err)
	}
	config.APIKey = apiKey

	if config.Collection == "" {
		return nil, errors.New("upstream: vector collection is required")
	}
	if config.TopK <= 0 {
		config.TopK = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	return &HTTPVectorClient{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		guard:  NewGuard(config.Guard),
	}, nil
}

// Execute handles OpVectorSearch ("vector" input required, "limit" and
// "filter" optional) and OpMetadataLookup ("id" input required).
func (c *HTTPVectorClient) Execute(ctx context.Context, req Request) ([]byte, error) {
	var path string
	var payload map[string]any

	switch req.Op {
	case OpVectorSearch:
		vector, ok := req.Inputs["vector"]
		if !ok {
			return nil, wrapInvalid("vector_search requires a vector input")
		}
		limit := c.config.TopK
		if v, ok := req.Inputs["limit"].(int); ok && v > 0 {
			limit = v
		}
		path = fmt.Sprintf("/collections/%s/points/search", c.config.Collection)
		payload = map[string]any{
			"vector":       vector,
			"limit":        limit,
			"with_payload": true,
		}
		if filter, ok := req.Inputs["filter"]; ok {
			payload["filter"] = filter
		}

	case OpMetadataLookup:
		id, ok := req.Inputs["id"]
		if !ok {
			return nil, wrapInvalid("metadata_lookup requires an id input")
		}
		path = fmt.Sprintf("/collections/%s/points", c.config.Collection)
		payload = map[string]any{
			"ids":          []any{id},
			"with_payload": true,
		}

	default:
		return nil, wrapInvalid("vector client cannot serve operation %q", string(req.Op))
	}

	var result []byte
	err := c.guard.Execute(ctx, func(ctx context.Context) error {
		out, err := c.call(ctx, path, payload)
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPVectorClient) call(ctx context.Context, path string, payload map[string]any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("api-key", c.config.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode)
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading vector response: %v", ErrUnavailable, err)
	}
	return out, nil
}

// Ensure HTTPVectorClient implements Upstream
var _ Upstream = (*HTTPVectorClient)(nil)

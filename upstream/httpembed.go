package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/embedgate/embedgate/secret"
)

// EmbedderConfig configures the HTTP embedding client.
type EmbedderConfig struct {
	// BaseURL of the embedding service. Supports ${ENV} references.
	// Required.
	BaseURL string

	// APIKey sent as a bearer token. Supports ${ENV} references. Optional.
	APIKey string

	// DefaultModel used when the request does not name one.
	// Default: text-embedding-3-small
	DefaultModel string

	// Timeout for a single HTTP call.
	// Default: 5 seconds
	Timeout time.Duration

	// Guard configures circuit breaking, retry, and concurrency caps.
	Guard GuardConfig
}

// HTTPEmbedder generates embeddings through a JSON-over-HTTP service
// exposing POST <BaseURL>/embeddings.
type HTTPEmbedder struct {
	config EmbedderConfig
	http   *http.Client
	guard  *Guard
}

type embedPayload struct {
	Texts []string `json:"texts"`
	Model string   `json:"model"`
}

type embedReply struct {
	Embeddings [][]float64 `json:"embeddings"`
	Dimensions int         `json:"dimensions"`
	ModelUsed  string      `json:"model_used"`
}

// EmbedResult is the cached result payload for OpEmbed.
type EmbedResult struct {
	Embedding  []float64 `json:"embedding"`
	Dimensions int       `json:"dimensions"`
	Model      string    `json:"model"`
}

// NewHTTPEmbedder creates an embedding client. Environment references in
// BaseURL and APIKey are resolved strictly; a missing variable is a
// construction error.
func NewHTTPEmbedder(config EmbedderConfig) (*HTTPEmbedder, error) {
	baseURL, err := secret.ExpandEnvStrict(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("upstream: resolving embedder base URL: %w", err)
	}
	if baseURL == "" {
		return nil, errors.New("upstream: embedder base URL is required")
	}
	config.BaseURL = baseURL

	apiKey, err := secret.ExpandEnvStrict(config.APIKey)
	if err != nil {
		return nil, fmt.Errorf("upstream: resolving embedder API key: %w", err)
	}
	config.APIKey = apiKey

	if config.DefaultModel == "" {
		config.DefaultModel = "text-embedding-3-small"
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	return &HTTPEmbedder{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		guard:  NewGuard(config.Guard),
	}, nil
}

// Execute handles OpEmbed requests. The "text" input is required; "model"
// overrides the configured default.
func (e *HTTPEmbedder) Execute(ctx context.Context, req Request) ([]byte, error) {
	if req.Op != OpEmbed {
		return nil, wrapInvalid("embedder cannot serve operation %q", string(req.Op))
	}

	text := stringInput(req.Inputs, "text")
	if text == "" {
		return nil, wrapInvalid("embed requires a non-empty text input")
	}
	model := stringInput(req.Inputs, "model")
	if model == "" {
		model = e.config.DefaultModel
	}

	var result []byte
	err := e.guard.Execute(ctx, func(ctx context.Context) error {
		out, err := e.call(ctx, text, model)
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

func (e *HTTPEmbedder) call(ctx context.Context, text, model string) ([]byte, error) {
	body, err := json.Marshal(embedPayload{Texts: []string{text}, Model: model})
	if err != nil {
		return nil, err
	}

	url := e.config.BaseURL + "/embeddings"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode)
	}

	var reply embedReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: decoding embeddings response: %v", ErrUnavailable, err)
	}
	if len(reply.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrUnavailable)
	}

	return json.Marshal(EmbedResult{
		Embedding:  reply.Embeddings[0],
		Dimensions: reply.Dimensions,
		Model:      reply.ModelUsed,
	})
}

// Ensure HTTPEmbedder implements Upstream
var _ Upstream = (*HTTPEmbedder)(nil)

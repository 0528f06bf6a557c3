package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newVectorClient(t *testing.T, srvURL string) *HTTPVectorClient {
	t.Helper()
	c, err := NewHTTPVectorClient(VectorConfig{
		BaseURL:    srvURL,
		Collection: "embeddings",
	})
	if err != nil {
		t.Fatalf("NewHTTPVectorClient failed: %v", err)
	}
	return c
}

func TestNewHTTPVectorClient_Validation(t *testing.T) {
	if _, err := NewHTTPVectorClient(VectorConfig{Collection: "c"}); err == nil {
		t.Error("empty base URL should fail construction")
	}
	if _, err := NewHTTPVectorClient(VectorConfig{BaseURL: "http://x"}); err == nil {
		t.Error("empty collection should fail construction")
	}
}

func TestHTTPVectorClient_VectorSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/embeddings/points/search" {
			t.Errorf("path = %q, want search endpoint", r.URL.Path)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if payload["with_payload"] != true {
			t.Error("with_payload should be true")
		}
		if _, ok := payload["vector"]; !ok {
			t.Error("vector missing from payload")
		}
		if payload["limit"] != float64(3) {
			t.Errorf("limit = %v, want 3", payload["limit"])
		}

		_, _ = w.Write([]byte(`{"result":[{"id":1,"score":0.9,"payload":{"doc":"a"}}]}`))
	}))
	defer srv.Close()

	c := newVectorClient(t, srv.URL)

	out, err := c.Execute(context.Background(), Request{
		Op: OpVectorSearch,
		Inputs: map[string]any{
			"vector": []any{0.1, 0.2},
			"limit":  3,
		},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var reply map[string]any
	if err := json.Unmarshal(out, &reply); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if _, ok := reply["result"]; !ok {
		t.Error("result missing from response")
	}
}

func TestHTTPVectorClient_MetadataLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/embeddings/points" {
			t.Errorf("path = %q, want points endpoint", r.URL.Path)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		ids, ok := payload["ids"].([]any)
		if !ok || len(ids) != 1 {
			t.Errorf("ids = %v, want one id", payload["ids"])
		}

		_, _ = w.Write([]byte(`{"result":[{"id":"p1","payload":{"doc":"a"}}]}`))
	}))
	defer srv.Close()

	c := newVectorClient(t, srv.URL)

	_, err := c.Execute(context.Background(), Request{
		Op:     OpMetadataLookup,
		Inputs: map[string]any{"id": "p1"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}

func TestHTTPVectorClient_InvalidRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called for invalid requests")
	}))
	defer srv.Close()

	c := newVectorClient(t, srv.URL)
	ctx := context.Background()

	// Missing vector
	_, err := c.Execute(ctx, Request{Op: OpVectorSearch, Inputs: map[string]any{}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing vector error = %v, want errors.Is ErrInvalidInput", err)
	}

	// Missing id
	_, err = c.Execute(ctx, Request{Op: OpMetadataLookup, Inputs: map[string]any{}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing id error = %v, want errors.Is ErrInvalidInput", err)
	}

	// Unsupported op
	_, err = c.Execute(ctx, Request{Op: OpEmbed, Inputs: map[string]any{"text": "x"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unsupported op error = %v, want errors.Is ErrInvalidInput", err)
	}
}

func TestHTTPVectorClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newVectorClient(t, srv.URL)

	_, err := c.Execute(context.Background(), Request{
		Op:     OpVectorSearch,
		Inputs: map[string]any{"vector": []any{0.1}},
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Execute() = %v, want errors.Is ErrUnavailable", err)
	}
}

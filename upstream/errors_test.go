package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"timeout", ErrTimeout, CodeTimeout},
		{"wrapped timeout", fmt.Errorf("call: %w", ErrTimeout), CodeTimeout},
		{"unavailable", ErrUnavailable, CodeUnavailable},
		{"invalid input", ErrInvalidInput, CodeInvalidInput},
		{"unclassified", errors.New("mystery"), CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"deadline exceeded", context.DeadlineExceeded, ErrTimeout},
		{"wrapped deadline", fmt.Errorf("do: %w", context.DeadlineExceeded), ErrTimeout},
		{"plain error", errors.New("connection refused"), ErrUnavailable},
		{"already classified timeout", ErrTimeout, ErrTimeout},
		{"already classified invalid", ErrInvalidInput, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Errorf("Classify(nil) = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want errors.Is %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_PreservesClassifiedWrapping(t *testing.T) {
	wrapped := fmt.Errorf("embedder: %w", ErrInvalidInput)
	if got := Classify(wrapped); got != wrapped {
		t.Errorf("Classify should pass through already-classified errors unchanged")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrInvalidInput},
		{http.StatusUnprocessableEntity, ErrInvalidInput},
		{http.StatusRequestTimeout, ErrTimeout},
		{http.StatusGatewayTimeout, ErrTimeout},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusTooManyRequests, ErrUnavailable},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); !errors.Is(got, tt.want) {
			t.Errorf("classifyStatus(%d) = %v, want errors.Is %v", tt.status, got, tt.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) {
		t.Error("nil should not be retryable")
	}
	if Retryable(fmt.Errorf("x: %w", ErrInvalidInput)) {
		t.Error("invalid input should not be retryable")
	}
	if !Retryable(ErrTimeout) {
		t.Error("timeout should be retryable")
	}
	if !Retryable(ErrUnavailable) {
		t.Error("unavailable should be retryable")
	}
}

func TestRequest_Validate(t *testing.T) {
	if err := (Request{Op: OpEmbed}).Validate(); err != nil {
		t.Errorf("valid op should pass validation, got %v", err)
	}
	err := (Request{Op: "unknown"}).Validate()
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown op error = %v, want errors.Is ErrInvalidInput", err)
	}
}

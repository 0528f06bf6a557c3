package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Sentinel errors forming the upstream failure taxonomy.
var (
	// ErrTimeout indicates the operation exceeded its deadline.
	ErrTimeout = errors.New("upstream: operation timed out")

	// ErrUnavailable indicates the upstream service could not serve the
	// request (connection failure, 5xx, open circuit, saturation).
	ErrUnavailable = errors.New("upstream: service unavailable")

	// ErrInvalidInput indicates the upstream rejected the request content.
	ErrInvalidInput = errors.New("upstream: invalid input")
)

// Stable error codes surfaced to callers instead of internal detail.
const (
	CodeTimeout      = "timeout"
	CodeUnavailable  = "unavailable"
	CodeInvalidInput = "invalid_input"
)

// Code maps a classified error to its stable code. Unclassified errors map
// to CodeUnavailable so callers never see internal detail. Returns "" for nil.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	default:
		return CodeUnavailable
	}
}

// Classify maps a transport-level error into the taxonomy, preserving the
// cause for errors.Is/As. Already-classified errors pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrInvalidInput) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// classifyStatus maps an HTTP status code into the taxonomy.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: http status %d", ErrInvalidInput, status)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: http status %d", ErrTimeout, status)
	default:
		return fmt.Errorf("%w: http status %d", ErrUnavailable, status)
	}
}

// Retryable reports whether a classified error is worth retrying.
// Invalid input never is; the same request would fail again.
func Retryable(err error) bool {
	return err != nil && !errors.Is(err, ErrInvalidInput)
}

func wrapInvalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

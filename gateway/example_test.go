package gateway_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/embedgate/embedgate/cache"
	"github.com/embedgate/embedgate/gateway"
	"github.com/embedgate/embedgate/ratelimit"
	"github.com/embedgate/embedgate/upstream"
)

func ExampleDispatcher_Dispatch() {
	store, _ := cache.NewLRUCache(64, cache.DefaultPolicy())
	limiter, _ := ratelimit.NewFixedWindow(ratelimit.Config{
		Limit:  100,
		Window: time.Minute,
	})
	provider := upstream.Func(func(ctx context.Context, req upstream.Request) ([]byte, error) {
		return []byte(`{"embedding":[0.1,0.2]}`), nil
	})

	d, _ := gateway.NewDispatcher(store, cache.NewDefaultKeyer(), cache.DefaultPolicy(), limiter, provider)

	req := upstream.Request{
		Op:     upstream.OpEmbed,
		Inputs: map[string]any{"text": "hello world"},
	}

	resp, _ := d.Dispatch(context.Background(), "client-a", req)
	fmt.Println("first:", resp.Source)

	resp, _ = d.Dispatch(context.Background(), "client-a", req)
	fmt.Println("second:", resp.Source)

	// Output:
	// first: upstream
	// second: cache
}

func ExampleDispatcher_Dispatch_rateLimited() {
	store, _ := cache.NewLRUCache(64, cache.DefaultPolicy())
	limiter, _ := ratelimit.NewFixedWindow(ratelimit.Config{
		Limit:  1,
		Window: time.Minute,
	})
	provider := upstream.Func(func(ctx context.Context, req upstream.Request) ([]byte, error) {
		return []byte(`{}`), nil
	})

	d, _ := gateway.NewDispatcher(store, cache.NewDefaultKeyer(), cache.DefaultPolicy(), limiter, provider)

	req := upstream.Request{
		Op:     upstream.OpEmbed,
		Inputs: map[string]any{"text": "hello"},
	}

	_, _ = d.Dispatch(context.Background(), "client-a", req)
	_, err := d.Dispatch(context.Background(), "client-a", req)
	fmt.Println(errors.Is(err, gateway.ErrRateLimited))

	// Output:
	// true
}

package upstream_test

import (
	"context"
	"fmt"

	"github.com/embedgate/embedgate/upstream"
)

func ExampleNewRouter() {
	router := upstream.NewRouter()

	router.Register(upstream.OpEmbed, upstream.Func(
		func(ctx context.Context, req upstream.Request) ([]byte, error) {
			return []byte(`{"embedding":[0.1,0.2]}`), nil
		}))

	out, err := router.Execute(context.Background(), upstream.Request{
		Op:     upstream.OpEmbed,
		Inputs: map[string]any{"text": "hello"},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(string(out))
	// Output:
	// {"embedding":[0.1,0.2]}
}

func ExampleCode() {
	fmt.Println(upstream.Code(upstream.ErrTimeout))
	fmt.Println(upstream.Code(upstream.ErrInvalidInput))
	fmt.Println(upstream.Code(nil) == "")
	// Output:
	// timeout
	// invalid_input
	// true
}

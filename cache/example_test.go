package cache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/embedgate/embedgate/cache"
)

func ExampleNewLRUCache() {
	c, err := cache.NewLRUCache(128, cache.DefaultPolicy())
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	// Store a value
	_ = c.Set(ctx, "my-key", []byte("hello"), 5*time.Minute)

	// Retrieve the value
	value, ok := c.Get(ctx, "my-key")
	if ok {
		fmt.Println("Value:", string(value))
	}
	// Output:
	// Value: hello
}

func ExampleLRUCache_Set() {
	c, _ := cache.NewLRUCache(2, cache.DefaultPolicy())
	ctx := context.Background()

	// At capacity, inserting a new key evicts the least recently used
	_ = c.Set(ctx, "a", []byte("1"), time.Hour)
	_ = c.Set(ctx, "b", []byte("2"), time.Hour)
	_ = c.Set(ctx, "c", []byte("3"), time.Hour)

	_, okA := c.Get(ctx, "a")
	_, okB := c.Get(ctx, "b")
	_, okC := c.Get(ctx, "c")
	fmt.Println("a:", okA, "b:", okB, "c:", okC)
	fmt.Println("Len:", c.Len())
	// Output:
	// a: false b: true c: true
	// Len: 2
}

func ExampleDefaultKeyer() {
	keyer := cache.NewDefaultKeyer()

	// Identical inputs always derive the same key
	key1, _ := keyer.Key("embed", map[string]any{"text": "hello", "model": "m1"})
	key2, _ := keyer.Key("embed", map[string]any{"model": "m1", "text": "hello"})
	fmt.Println("Equal:", key1 == key2)
	// Output:
	// Equal: true
}

func ExampleNewReaper() {
	c, _ := cache.NewLRUCache(128, cache.DefaultPolicy())

	reaper, err := cache.NewReaper(c, cache.ReaperConfig{
		Interval: time.Minute,
	})
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper.Start(ctx)
	defer reaper.Stop()

	fmt.Println("reaper running")
	// Output:
	// reaper running
}

package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

// BenchmarkFixedWindow_Check_SingleIdentity measures the hot path for one client.
func BenchmarkFixedWindow_Check_SingleIdentity(b *testing.B) {
	fw, _ := NewFixedWindow(Config{Limit: 1 << 30, Window: time.Hour})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fw.Check("client")
	}
}

// BenchmarkFixedWindow_Check_ManyIdentities measures table churn.
func BenchmarkFixedWindow_Check_ManyIdentities(b *testing.B) {
	fw, _ := NewFixedWindow(Config{Limit: 100, Window: time.Hour, MaxIdentities: 1024})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fw.Check(fmt.Sprintf("client-%d", i%4096))
	}
}

// BenchmarkFixedWindow_Check_Parallel measures contended checks.
func BenchmarkFixedWindow_Check_Parallel(b *testing.B) {
	fw, _ := NewFixedWindow(Config{Limit: 1 << 30, Window: time.Hour})

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			fw.Check(fmt.Sprintf("client-%d", i%64))
			i++
		}
	})
}

package cache

import (
	"strconv"
	"testing"
)

func BenchmarkCacheHit(b *testing.B) {
	c := New[string, int]()
	c.GetOrCreate("50", func() int { return 50 })

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetOrCreate("50", func() int { return 0 })
	}
}

func BenchmarkCacheGetOrCreate(b *testing.B) {
	c := New[string, int]()
	keys := make([]string, 100)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetOrCreate(keys[i%100], func() int { return i })
	}
}

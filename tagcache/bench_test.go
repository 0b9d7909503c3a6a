package tagcache

import (
	"context"
	"fmt"
	"testing"

	"github.com/jonwraymond/tagcache/store"
)

func BenchmarkSet_NoTags(b *testing.B) {
	c, _ := New(store.NewMemoryStore())
	ctx := context.Background()
	value := []byte("value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(ctx, "key", value, 0)
	}
}

func BenchmarkSet_ThreeTags(b *testing.B) {
	c, _ := New(store.NewMemoryStore())
	ctx := context.Background()
	value := []byte("value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(ctx, "key", value, 0, "a", "b", "c")
	}
}

func BenchmarkGet(b *testing.B) {
	c, _ := New(store.NewMemoryStore())
	ctx := context.Background()
	_ = c.Set(ctx, "key", []byte("value"), 0, "users")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = c.Get(ctx, "key")
	}
}

func BenchmarkGetByTag_100Keys(b *testing.B) {
	c, _ := New(store.NewMemoryStore())
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		_ = c.Set(ctx, fmt.Sprintf("key-%03d", i), []byte("value"), 0, "users")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.GetByTag(ctx, "users", PageOptions{})
	}
}

func BenchmarkKeyLock_Uncontended(b *testing.B) {
	l := newKeyLock()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.lock("key")
		l.unlock("key")
	}
}

func BenchmarkKeyLock_Parallel(b *testing.B) {
	l := newKeyLock()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.lock("key")
			l.unlock("key")
		}
	})
}

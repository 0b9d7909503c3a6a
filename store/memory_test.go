package store

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := s.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if string(value) != "value1" {
		t.Errorf("Get() = %q, want %q", value, "value1")
	}
}

func TestMemoryStore_GetMiss(t *testing.T) {
	s := NewMemoryStore()

	value, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for missing key")
	}
	if value != nil {
		t.Errorf("Get() = %v, want nil", value)
	}
}

func TestMemoryStore_NoTTLNeverExpires(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Zero TTL means no expiration, not "do not cache".
	if _, ok, _ := s.Get(ctx, "forever"); !ok {
		t.Error("key with zero TTL should be present")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "ephemeral", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, ok, _ := s.Get(ctx, "ephemeral"); !ok {
		t.Fatal("key should be present before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := s.Get(ctx, "ephemeral"); ok {
		t.Error("key should be absent after expiry")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Set(ctx, "key1", []byte("v"), 0)

	existed, err := s.Delete(ctx, "key1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !existed {
		t.Error("Delete() existed = false, want true")
	}

	// Idempotent - second delete reports nothing removed.
	existed, err = s.Delete(ctx, "key1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if existed {
		t.Error("Delete() existed = true for already-removed key")
	}
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Set(ctx, "ephemeral", []byte("v"), 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	existed, err := s.Delete(ctx, "ephemeral")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if existed {
		t.Error("Delete() existed = true for expired key")
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"), 0)
	_ = s.Set(ctx, "b", []byte("2"), 0)

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	for _, key := range []string{"a", "b"} {
		if _, ok, _ := s.Get(ctx, key); ok {
			t.Errorf("key %q present after Clear()", key)
		}
	}
}

func TestMemoryStore_Keys(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"), 0)
	_ = s.Set(ctx, "b", []byte("2"), 0)
	_ = s.Set(ctx, "expired", []byte("3"), 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	sort.Strings(keys)

	want := []string{"a", "b"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "key" + string(rune('a'+n%26))
			_ = s.Set(ctx, key, []byte("v"), 0)
			_, _, _ = s.Get(ctx, key)
			_, _ = s.Delete(ctx, key)
		}(i)
	}
	wg.Wait()
}

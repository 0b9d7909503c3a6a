package tagcache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	l := newKeyLock()

	var inCritical atomic.Int32
	var overlapped atomic.Bool
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.lock("k")
			defer l.unlock("k")

			if inCritical.Add(1) > 1 {
				overlapped.Store(true)
			}
			time.Sleep(time.Millisecond)
			inCritical.Add(-1)
		}()
	}
	wg.Wait()

	if overlapped.Load() {
		t.Error("two holders observed in the critical section at once")
	}
}

func TestKeyLock_DifferentKeysDoNotBlock(t *testing.T) {
	l := newKeyLock()

	l.lock("a")
	done := make(chan struct{})
	go func() {
		l.lock("b")
		l.unlock("b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	l.unlock("a")
}

func TestKeyLock_ShrinksWhenUncontended(t *testing.T) {
	l := newKeyLock()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%5))
			l.lock(key)
			l.unlock(key)
		}(i)
	}
	wg.Wait()

	// All slots released; the map holds only contended keys.
	if got := l.held(); got != 0 {
		t.Errorf("held() = %d after all releases, want 0", got)
	}
}

package tagcache

import "sync"

// keyLock serializes compound operations per key. A writer acquires the
// key's slot before touching the store; later writers for the same key wait
// on the holder's completion channel, queued rather than rejected. Slots are
// removed on release, so the map only holds currently-contended keys.
type keyLock struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newKeyLock() *keyLock {
	return &keyLock{slots: make(map[string]chan struct{})}
}

func (l *keyLock) lock(key string) {
	l.mu.Lock()
	for {
		ch, held := l.slots[key]
		if !held {
			break
		}
		l.mu.Unlock()
		<-ch
		l.mu.Lock()
	}
	l.slots[key] = make(chan struct{})
	l.mu.Unlock()
}

func (l *keyLock) unlock(key string) {
	l.mu.Lock()
	ch := l.slots[key]
	delete(l.slots, key)
	l.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// held reports how many keys currently hold a slot.
func (l *keyLock) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

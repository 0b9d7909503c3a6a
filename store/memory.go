package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation with lazy expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*storeEntry
}

type storeEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

func (e *storeEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*storeEntry),
	}
}

// Get retrieves a value. Returns (nil, false, nil) on miss or expiry.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if entry.expired(time.Now()) {
		// Expired - clean up lazily
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores a value. ttl <= 0 means the key never expires.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &storeEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()

	return nil
}

// Delete removes a value. Returns true iff a live value was present.
func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	delete(s.entries, key)

	// An expired entry counts as already gone.
	if entry.expired(time.Now()) {
		return false, nil
	}
	return true, nil
}

// Clear empties the store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]*storeEntry)
	s.mu.Unlock()
	return nil
}

// Keys returns every live key in the store.
func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	now := time.Now()

	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for k, entry := range s.entries {
		if entry.expired(now) {
			continue
		}
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	return keys, nil
}

// Ensure MemoryStore implements Store and KeyLister
var (
	_ Store     = (*MemoryStore)(nil)
	_ KeyLister = (*MemoryStore)(nil)
)

package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a store key.
const MaxKeyLength = 512

// Sentinel errors for store operations.
var (
	ErrNilStore   = errors.New("store: store is nil")
	ErrInvalidKey = errors.New("store: key is invalid")
	ErrKeyTooLong = errors.New("store: key exceeds max length")
)

// Store is the primary key-value store the tag index and tagged cache sit on
// top of. The overlay never owns the store; entries may expire or be evicted
// out from under it at any time.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent single-key use.
//   No multi-key atomicity is assumed or required.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get returns (nil, false, nil) on miss; errors are reserved for
//   genuine I/O failure.
type Store interface {
	// Get retrieves a value. Returns (nil, false, nil) when the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl > 0 expires the key after that duration;
	// ttl <= 0 means the key never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Returns true iff a value was present. Idempotent.
	Delete(ctx context.Context, key string) (bool, error)

	// Clear empties the entire store, including any index records colocated
	// in it.
	Clear(ctx context.Context) error
}

// KeyLister is an optional capability for stores that can enumerate their
// keys. The tag index uses it to discover tag records; stores without it
// cannot serve AllTags.
type KeyLister interface {
	// Keys returns every key currently present, in no particular order.
	Keys(ctx context.Context) ([]string, error)
}

// ValidateKey checks if a key is valid for storage.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

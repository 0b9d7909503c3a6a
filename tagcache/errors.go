package tagcache

import "errors"

// Sentinel errors for tagged cache operations.
var (
	// ErrNilStore indicates the cache was constructed without a store.
	ErrNilStore = errors.New("tagcache: store is nil")
)

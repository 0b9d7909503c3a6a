package index

import (
	"context"
	"errors"
)

// Key-namespace prefixes for the two index record families. Records live in
// the same store as payloads; the prefixes keep the namespaces disjoint.
const (
	// TagNamespace prefixes records mapping one tag to its key list.
	TagNamespace = "_tags:"

	// KeyNamespace prefixes records mapping one key to its tag set.
	KeyNamespace = "_keys:"
)

// Sentinel errors for index operations.
var (
	// ErrNilStore indicates the index was constructed without a store.
	ErrNilStore = errors.New("index: store is nil")

	// ErrTagsRequired is returned by Compact when no tags are given. Global
	// compaction across all tags is not implemented.
	ErrTagsRequired = errors.New("index: compaction requires an explicit tag list")

	// ErrScanUnsupported indicates the backing store cannot enumerate keys,
	// so AllTags has no way to discover tag records.
	ErrScanUnsupported = errors.New("index: store does not support key enumeration")
)

// Index is the tag index contract: the sole owner of tag membership state.
// All mutations to which keys carry which tags pass through it.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use, but
//   individual operations are not atomic across their sub-steps; callers
//   own serialization of compound updates (see tagcache).
// - Errors: read operations treat malformed or missing records as empty,
//   never as failures. Errors are reserved for store I/O.
type Index interface {
	// AddKeyToTag associates key with tag. Idempotent - repeated calls with
	// the same pair produce no duplicate.
	AddKeyToTag(ctx context.Context, key, tag string) error

	// RemoveKeyFromTag dissociates key from tag. No-op when either does not
	// exist. Deletes the tag record once it holds no keys.
	RemoveKeyFromTag(ctx context.Context, key, tag string) error

	// KeysForTag returns the tag's key list verbatim, in insertion order.
	// The list may include stale keys since the last compaction.
	KeysForTag(ctx context.Context, tag string) ([]string, error)

	// TagsForKey returns the set of tags recorded for key.
	TagsForKey(ctx context.Context, key string) ([]string, error)

	// SetTagsForKey replaces key's full tag set. The key is first removed
	// from every currently recorded tag; an empty tags list leaves the key
	// untagged. Not atomic across its sub-steps - a failure partway leaves
	// the key associated with a subset of old or new tags, and callers must
	// clean up.
	SetTagsForKey(ctx context.Context, key string, tags []string) error

	// DeleteTag removes the tag from every member key's tag set, then
	// deletes the tag record itself. No-op for an unknown tag.
	DeleteTag(ctx context.Context, tag string) error

	// DeleteKeyFromAllTags removes key from every tag's key list and deletes
	// key's tag record. No-op for an untagged key.
	DeleteKeyFromAllTags(ctx context.Context, key string) error

	// Compact reconciles each named tag's key list against the store:
	// duplicates are dropped (first occurrence wins), as are keys whose
	// payload no longer exists. Returns ErrTagsRequired when tags is empty.
	Compact(ctx context.Context, tags []string) error

	// AllTags returns the distinct tags that currently index at least one
	// key.
	AllTags(ctx context.Context) ([]string, error)

	// Clear removes all index state.
	Clear(ctx context.Context) error
}

// Package index maintains the bidirectional mapping between cache keys and
// tags as records persisted inside the primary store.
//
// Two record families are kept under fixed key-namespace prefixes: one list
// of keys per tag, and one set of tags per key. Consistency between the two
// is best effort; compaction reconciles a tag's key list against the store's
// actual contents.
package index

// Package tagcache layers tag-aware operations over a primary key-value
// store. Entries can be written with tags, then invalidated or enumerated
// by tag without scanning the full key space.
//
// The cache keeps the payload and its tag memberships consistent on a
// best-effort basis: compound writes are serialized per key, failed writes
// are cleaned up rather than left half-indexed, and stale index entries are
// filtered on read and reconciled by compaction.
package tagcache

// Package store defines the primary key-value store contract consumed by the
// tag index and tagged cache, plus an in-memory reference implementation.
package store

// Package observe provides the minimal structured logging used across the
// tagcache library. Cleanup and sweep failures that the cache records
// without failing the caller go through a Logger.
package observe

package tagcache

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/tagcache/index"
	"github.com/jonwraymond/tagcache/observe"
	"github.com/jonwraymond/tagcache/store"
)

// Entry is one cache write: a value stored under a key, optionally expiring
// after TTL, optionally indexed under Tags.
type Entry struct {
	Key   string
	Value []byte

	// TTL expires the entry after this duration. Zero means no expiration.
	TTL time.Duration

	// Tags index the entry for bulk query and invalidation.
	Tags []string
}

// Cache wraps a primary store and a tag index, keeping payload and tag
// memberships consistent on a best-effort basis.
//
// Set and Delete on the same key are serialized against each other; reads
// and tag-bulk operations are not, and may observe transient intermediate
// states that compaction later reconciles.
type Cache struct {
	store  store.Store
	index  index.Index
	log    observe.Logger
	tracer trace.Tracer

	locks   *keyLock
	compact singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithIndex replaces the default store-colocated tag index.
func WithIndex(idx index.Index) Option {
	return func(c *Cache) { c.index = idx }
}

// WithLogger sets the logger for cleanup and sweep failures that do not fail
// the calling operation. Defaults to the nop logger.
func WithLogger(l observe.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithTracer enables span instrumentation of cache operations. Defaults to
// the noop tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Cache) { c.tracer = t }
}

// New creates a tagged cache over the given store. Unless WithIndex is
// given, tag records are colocated in the same store under the index
// package's namespace prefixes.
func New(s store.Store, opts ...Option) (*Cache, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	c := &Cache{
		store:  s,
		log:    observe.NopLogger(),
		tracer: noopTracer(),
		locks:  newKeyLock(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.index == nil {
		idx, err := index.NewManager(s)
		if err != nil {
			return nil, err
		}
		c.index = idx
	}

	return c, nil
}

// Set writes value under key with the given ttl and tags. This is the
// positional form of SetEntry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	return c.SetEntry(ctx, Entry{Key: key, Value: value, TTL: ttl, Tags: tags})
}

// SetEntry writes an entry and replaces its tag memberships. On a store
// failure nothing else is touched. On an index failure the just-written
// payload and any partial tag associations are removed before the error is
// returned, so a failed set leaves the key absent and untagged (best
// effort - cleanup failures are logged, not returned, to avoid masking the
// root cause).
func (c *Cache) SetEntry(ctx context.Context, e Entry) error {
	ctx, span := c.startSpan(ctx, "tagcache.Set",
		attribute.String("cache.key", e.Key),
		attribute.Int("cache.tag_count", len(e.Tags)))
	defer span.End()

	if err := store.ValidateKey(e.Key); err != nil {
		return c.recordErr(span, err)
	}

	c.locks.lock(e.Key)
	defer c.locks.unlock(e.Key)

	if err := c.store.Set(ctx, e.Key, e.Value, e.TTL); err != nil {
		return c.recordErr(span, fmt.Errorf("tagcache: set %q: %w", e.Key, err))
	}

	if len(e.Tags) == 0 {
		return nil
	}

	if err := c.index.SetTagsForKey(ctx, e.Key, e.Tags); err != nil {
		c.cleanupFailedSet(ctx, e.Key)
		return c.recordErr(span, fmt.Errorf("tagcache: update tags for %q: %w", e.Key, err))
	}
	return nil
}

// cleanupFailedSet removes the payload and any partial tag state left behind
// by a set whose index update failed.
func (c *Cache) cleanupFailedSet(ctx context.Context, key string) {
	if _, err := c.store.Delete(ctx, key); err != nil {
		c.log.Error(ctx, "cleanup after failed set: delete payload",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
	}
	if err := c.index.DeleteKeyFromAllTags(ctx, key); err != nil {
		c.log.Error(ctx, "cleanup after failed set: remove tag associations",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
	}
}

// Get retrieves a value. Returns (nil, false, nil) when the key is absent or
// expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("tagcache: get %q: %w", key, err)
	}
	return value, ok, nil
}

// Has reports whether key currently holds a value. It inherits Get's
// semantics; there is no separate existence primitive.
func (c *Cache) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := c.Get(ctx, key)
	return ok, err
}

// Delete removes a key's tag associations and then its payload, under the
// key's exclusion slot. A failure while untagging is logged and does not
// abort the deletion. Returns whether a payload existed.
func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	ctx, span := c.startSpan(ctx, "tagcache.Delete",
		attribute.String("cache.key", key))
	defer span.End()

	c.locks.lock(key)
	defer c.locks.unlock(key)

	if err := c.index.DeleteKeyFromAllTags(ctx, key); err != nil {
		c.log.Error(ctx, "delete: remove tag associations",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
	}

	existed, err := c.store.Delete(ctx, key)
	if err != nil {
		return false, c.recordErr(span, fmt.Errorf("tagcache: delete %q: %w", key, err))
	}
	return existed, nil
}

// Clear empties the payload store and the index together.
func (c *Cache) Clear(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, "tagcache.Clear")
	defer span.End()

	if err := c.store.Clear(ctx); err != nil {
		return c.recordErr(span, fmt.Errorf("tagcache: clear store: %w", err))
	}
	if err := c.index.Clear(ctx); err != nil {
		return c.recordErr(span, fmt.Errorf("tagcache: clear index: %w", err))
	}
	return nil
}

// AllTags returns the distinct tags currently indexing at least one key.
func (c *Cache) AllTags(ctx context.Context) ([]string, error) {
	tags, err := c.index.AllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("tagcache: list tags: %w", err)
	}
	return tags, nil
}

// TagsForKey returns the tags recorded for key.
func (c *Cache) TagsForKey(ctx context.Context, key string) ([]string, error) {
	tags, err := c.index.TagsForKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("tagcache: tags for %q: %w", key, err)
	}
	return tags, nil
}

package tagcache

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/tagcache/observe"
)

// DefaultPageLimit is the page size GetByTag uses when none is given.
const DefaultPageLimit = 50

// PageOptions selects one page of a tag's keys.
type PageOptions struct {
	// Page is 1-based. Values below 1 are treated as page 1.
	Page int

	// Limit is the page size. Values below 1 fall back to DefaultPageLimit.
	Limit int
}

// KeyValue is one GetByTag result.
type KeyValue struct {
	Key   string
	Value []byte
}

// InvalidateTag deletes every payload indexed under tag, then the tag record
// itself. Per-key deletion failures and a failed tag-record removal are
// logged and do not fail the sweep; only a failure to look the tag up at all
// fails the call. No-op for a tag with no keys.
//
// The sweep bypasses the per-key exclusion slots, so it may race with an
// in-flight Set or Delete on one of the keys; compaction reconciles any
// resulting staleness.
func (c *Cache) InvalidateTag(ctx context.Context, tag string) error {
	ctx, span := c.startSpan(ctx, "tagcache.InvalidateTag",
		attribute.String("cache.tag", tag))
	defer span.End()

	keys, err := c.index.KeysForTag(ctx, tag)
	if err != nil {
		return c.recordErr(span, fmt.Errorf("tagcache: invalidate tag %q: %w", tag, err))
	}
	if len(keys) == 0 {
		return nil
	}

	for _, key := range keys {
		if _, err := c.store.Delete(ctx, key); err != nil {
			c.log.Error(ctx, "invalidate tag: delete payload",
				observe.Field{Key: "tag", Value: tag},
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()})
		}
	}

	if err := c.index.DeleteTag(ctx, tag); err != nil {
		c.log.Error(ctx, "invalidate tag: delete tag record",
			observe.Field{Key: "tag", Value: tag},
			observe.Field{Key: "error", Value: err.Error()})
	}
	return nil
}

// InvalidateTags invalidates each tag in turn. Every tag is attempted
// regardless of earlier failures; if any failed, the individual errors are
// joined into one aggregate.
func (c *Cache) InvalidateTags(ctx context.Context, tags []string) error {
	var errs []error
	for _, tag := range tags {
		if err := c.InvalidateTag(ctx, tag); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetByTag returns one page of the entries indexed under tag, in the index's
// insertion order. Keys whose payload is gone are excluded rather than
// reported as errors; finding any triggers a compaction of the tag as a side
// effect (its failure is logged, not returned). An unknown tag and an
// out-of-range page both yield an empty result.
func (c *Cache) GetByTag(ctx context.Context, tag string, opts PageOptions) ([]KeyValue, error) {
	ctx, span := c.startSpan(ctx, "tagcache.GetByTag",
		attribute.String("cache.tag", tag),
		attribute.Int("cache.page", opts.Page))
	defer span.End()

	keys, err := c.index.KeysForTag(ctx, tag)
	if err != nil {
		return nil, c.recordErr(span, fmt.Errorf("tagcache: keys for tag %q: %w", tag, err))
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = DefaultPageLimit
	}

	offset := (page - 1) * limit
	if offset >= len(keys) {
		return nil, nil
	}
	end := offset + limit
	if end > len(keys) {
		end = len(keys)
	}

	results := make([]KeyValue, 0, end-offset)
	dead := false
	for _, key := range keys[offset:end] {
		value, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, c.recordErr(span, fmt.Errorf("tagcache: get %q for tag %q: %w", key, tag, err))
		}
		if !ok {
			dead = true
			continue
		}
		results = append(results, KeyValue{Key: key, Value: value})
	}

	if dead {
		c.compactTag(ctx, tag)
	}
	return results, nil
}

// compactTag runs a side-effect compaction of one tag. Concurrent readers
// hitting dead keys on the same tag share a single compaction run.
func (c *Cache) compactTag(ctx context.Context, tag string) {
	_, err, _ := c.compact.Do(tag, func() (any, error) {
		return nil, c.index.Compact(ctx, []string{tag})
	})
	if err != nil {
		c.log.Warn(ctx, "compaction after dead keys",
			observe.Field{Key: "tag", Value: tag},
			observe.Field{Key: "error", Value: err.Error()})
	}
}

// SetMany applies SetEntry to each entry in order. Every entry is attempted
// regardless of earlier failures; if any failed, the individual errors are
// joined into one aggregate.
func (c *Cache) SetMany(ctx context.Context, entries []Entry) error {
	var errs []error
	for _, e := range entries {
		if err := c.SetEntry(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CompactTags reconciles the named tags' key lists against the store. It
// propagates the index's index.ErrTagsRequired unchanged when tags is empty.
func (c *Cache) CompactTags(ctx context.Context, tags []string) error {
	ctx, span := c.startSpan(ctx, "tagcache.CompactTags",
		attribute.Int("cache.tag_count", len(tags)))
	defer span.End()

	if err := c.index.Compact(ctx, tags); err != nil {
		return c.recordErr(span, err)
	}
	return nil
}

package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/tagcache/store"
)

// Manager is the default Index implementation. It colocates both record
// families in the same store as the payloads, under the package's namespace
// prefixes.
type Manager struct {
	store store.Store
}

// NewManager creates an index backed by the given store.
func NewManager(s store.Store) (*Manager, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	return &Manager{store: s}, nil
}

func tagRecordKey(tag string) string { return TagNamespace + tag }
func keyRecordKey(key string) string { return KeyNamespace + key }

// readRecord loads a record, decoding malformed or missing data as empty.
func (m *Manager) readRecord(ctx context.Context, storageKey string) ([]string, error) {
	data, ok, err := m.store.Get(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("index: read record %q: %w", storageKey, err)
	}
	if !ok {
		return nil, nil
	}
	return decodeStrings(data), nil
}

func (m *Manager) writeRecord(ctx context.Context, storageKey string, values []string) error {
	data, err := encodeStrings(values)
	if err != nil {
		return fmt.Errorf("index: encode record %q: %w", storageKey, err)
	}
	if err := m.store.Set(ctx, storageKey, data, 0); err != nil {
		return fmt.Errorf("index: write record %q: %w", storageKey, err)
	}
	return nil
}

func (m *Manager) deleteRecord(ctx context.Context, storageKey string) error {
	if _, err := m.store.Delete(ctx, storageKey); err != nil {
		return fmt.Errorf("index: delete record %q: %w", storageKey, err)
	}
	return nil
}

// AddKeyToTag appends key to the tag's key list unless already present.
func (m *Manager) AddKeyToTag(ctx context.Context, key, tag string) error {
	keys, err := m.readRecord(ctx, tagRecordKey(tag))
	if err != nil {
		return err
	}
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	return m.writeRecord(ctx, tagRecordKey(tag), append(keys, key))
}

// RemoveKeyFromTag filters key out of the tag's key list, deleting the record
// once empty. No-op when the tag or membership does not exist.
func (m *Manager) RemoveKeyFromTag(ctx context.Context, key, tag string) error {
	keys, err := m.readRecord(ctx, tagRecordKey(tag))
	if err != nil {
		return err
	}

	filtered := keys[:0:0]
	for _, k := range keys {
		if k != key {
			filtered = append(filtered, k)
		}
	}
	if len(filtered) == len(keys) {
		return nil
	}
	if len(filtered) == 0 {
		return m.deleteRecord(ctx, tagRecordKey(tag))
	}
	return m.writeRecord(ctx, tagRecordKey(tag), filtered)
}

// KeysForTag returns the tag's key list in insertion order, possibly stale.
func (m *Manager) KeysForTag(ctx context.Context, tag string) ([]string, error) {
	return m.readRecord(ctx, tagRecordKey(tag))
}

// TagsForKey returns the tags recorded for key.
func (m *Manager) TagsForKey(ctx context.Context, key string) ([]string, error) {
	return m.readRecord(ctx, keyRecordKey(key))
}

// SetTagsForKey replaces key's full tag set: first detach from every current
// tag, then record and attach the new set. Not atomic across sub-steps.
func (m *Manager) SetTagsForKey(ctx context.Context, key string, tags []string) error {
	if err := m.DeleteKeyFromAllTags(ctx, key); err != nil {
		return err
	}
	tags = dedupe(tags)
	if len(tags) == 0 {
		return nil
	}
	if err := m.writeRecord(ctx, keyRecordKey(key), tags); err != nil {
		return err
	}
	for _, tag := range tags {
		if err := m.AddKeyToTag(ctx, key, tag); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTag detaches the tag from every member key, then removes the tag
// record itself. No-op for an unknown tag.
func (m *Manager) DeleteTag(ctx context.Context, tag string) error {
	keys, err := m.readRecord(ctx, tagRecordKey(tag))
	if err != nil {
		return err
	}

	for _, key := range keys {
		tags, err := m.readRecord(ctx, keyRecordKey(key))
		if err != nil {
			return err
		}
		remaining := tags[:0:0]
		for _, t := range tags {
			if t != tag {
				remaining = append(remaining, t)
			}
		}
		if len(remaining) == len(tags) {
			continue
		}
		if len(remaining) == 0 {
			if err := m.deleteRecord(ctx, keyRecordKey(key)); err != nil {
				return err
			}
			continue
		}
		if err := m.writeRecord(ctx, keyRecordKey(key), remaining); err != nil {
			return err
		}
	}

	return m.deleteRecord(ctx, tagRecordKey(tag))
}

// DeleteKeyFromAllTags detaches key from every tag it carries and removes
// key's tag record. No-op for an untagged key.
func (m *Manager) DeleteKeyFromAllTags(ctx context.Context, key string) error {
	tags, err := m.readRecord(ctx, keyRecordKey(key))
	if err != nil {
		return err
	}
	for _, tag := range tags {
		if err := m.RemoveKeyFromTag(ctx, key, tag); err != nil {
			return err
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return m.deleteRecord(ctx, keyRecordKey(key))
}

// Compact reconciles each named tag's key list against the store. Duplicates
// are dropped first (first occurrence wins), then every surviving key is
// probed and dropped when its payload is gone. The record is rewritten only
// if the list changed, and deleted when it empties.
func (m *Manager) Compact(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return ErrTagsRequired
	}

	for _, tag := range tags {
		keys, err := m.readRecord(ctx, tagRecordKey(tag))
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			continue
		}

		live := keys[:0:0]
		seen := make(map[string]struct{}, len(keys))
		for _, key := range keys {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			_, ok, err := m.store.Get(ctx, key)
			if err != nil {
				return fmt.Errorf("index: probe key %q for tag %q: %w", key, tag, err)
			}
			if ok {
				live = append(live, key)
			}
		}

		if len(live) == len(keys) {
			continue
		}
		if len(live) == 0 {
			if err := m.deleteRecord(ctx, tagRecordKey(tag)); err != nil {
				return err
			}
			continue
		}
		if err := m.writeRecord(ctx, tagRecordKey(tag), live); err != nil {
			return err
		}
	}

	return nil
}

// AllTags scans the store's key space for tag records. Requires the store to
// implement store.KeyLister; returns ErrScanUnsupported otherwise.
func (m *Manager) AllTags(ctx context.Context) ([]string, error) {
	lister, ok := m.store.(store.KeyLister)
	if !ok {
		return nil, ErrScanUnsupported
	}

	keys, err := lister.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("index: list store keys: %w", err)
	}

	var tags []string
	for _, k := range keys {
		if strings.HasPrefix(k, TagNamespace) {
			tags = append(tags, strings.TrimPrefix(k, TagNamespace))
		}
	}
	return tags, nil
}

// Clear delegates to the store's global clear; index records share the store
// with the payloads they describe.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("index: clear: %w", err)
	}
	return nil
}

// dedupe removes duplicates preserving first occurrence.
func dedupe(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Ensure Manager implements Index
var _ Index = (*Manager)(nil)

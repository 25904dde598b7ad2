// Package memory provides in-process store implementations. They back the
// test suites and single-node deployments; the gorm-backed stores in the
// parent package are the durable variant.
package memory

import (
	"sort"
	"sync"

	"gorm.io/gorm"
)

// bucket is a string-keyed map with lexicographic range scans, shared by
// the per-aggregate stores.
type bucket[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	clone func(T) T
}

func newBucket[T any](clone func(T) T) *bucket[T] {
	return &bucket[T]{
		items: make(map[string]T),
		clone: clone,
	}
}

func (b *bucket[T]) get(key string) (T, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	item, ok := b.items[key]
	if !ok {
		var zero T
		return zero, gorm.ErrRecordNotFound
	}
	return b.clone(item), nil
}

func (b *bucket[T]) put(key string, item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[key] = b.clone(item)
}

func (b *bucket[T]) remove(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.items, key)
}

// scan returns up to limit items in ascending key order, strictly after
// startAfter.
func (b *bucket[T]) scan(startAfter string, limit int) ([]string, []T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.items))
	for key := range b.items {
		if key > startAfter {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	if limit >= 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	items := make([]T, 0, len(keys))
	for _, key := range keys {
		items = append(items, b.clone(b.items[key]))
	}
	return keys, items
}

package warehouse

import "fmt"

// Cache is a capacity-bounded, string-keyed item registry returning stable
// 1-based indices — the backing store for the registry's optional
// name-to-handle lookups (NameComponent, NameSystem, NameTemplate).
type Cache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

// NewCache creates an empty cache that holds at most capacity items.
func NewCache[T any](capacity int) *Cache[T] {
	return &Cache[T]{itemIndices: make(map[string]int), maxCapacity: capacity}
}

// GetIndex returns the 1-based index registered under key, if any.
func (c *Cache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

// GetItem returns a pointer to the item at 1-based index.
func (c *Cache[T]) GetItem(index int) *T {
	return &c.items[index-1]
}

// GetItem32 is GetItem taking a uint32 index, for callers addressing items
// by a handle type.
func (c *Cache[T]) GetItem32(index uint32) *T {
	return &c.items[index-1]
}

// Register stores item under key, returning its assigned 1-based index, or
// an error once the cache has reached its capacity.
func (c *Cache[T]) Register(key string, item T) (int, error) {
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("cache at maximum capacity (%d)", c.maxCapacity)
	}
	index := len(c.items) + 1
	c.itemIndices[key] = index
	c.items = append(c.items, item)
	return index, nil
}

// Clear empties the cache.
func (c *Cache[T]) Clear() {
	c.items = nil
	c.itemIndices = make(map[string]int)
}

package warehouse

import (
	"testing"
)

// TestCacheBasicOperations tests the basic operations of Cache.
func TestCacheBasicOperations(t *testing.T) {
	const capacity = 10
	cache := NewCache[string](capacity)

	items := []string{"item1", "item2", "item3", "item4", "item5"}
	indices := make([]int, len(items))

	for i, item := range items {
		index, err := cache.Register(item, item)
		if err != nil {
			t.Errorf("Failed to register item %s: %v", item, err)
		}
		indices[i] = index

		if index != i+1 {
			t.Errorf("Index for item %s is %d, expected %d", item, index, i+1)
		}
	}

	for i, item := range items {
		index, found := cache.GetIndex(item)
		if !found {
			t.Errorf("Item %s not found in cache", item)
		}
		if index != indices[i] {
			t.Errorf("Index for item %s is %d, expected %d", item, index, indices[i])
		}
	}

	for i, item := range items {
		cachedItem := *cache.GetItem(indices[i])
		if cachedItem != item {
			t.Errorf("Item at index %d is %s, expected %s", indices[i], cachedItem, item)
		}
	}

	for i, item := range items {
		cachedItem := *cache.GetItem32(uint32(indices[i]))
		if cachedItem != item {
			t.Errorf("Item at index %d is %s, expected %s", indices[i], cachedItem, item)
		}
	}

	_, found := cache.GetIndex("nonexistent")
	if found {
		t.Errorf("Found non-existent item in cache")
	}
}

// TestCacheCapacity tests the cache capacity limits.
func TestCacheCapacity(t *testing.T) {
	const capacity = 5
	cache := NewCache[int](capacity)

	for i := 1; i <= capacity; i++ {
		key := "item" + string(rune(i+'0'))
		_, err := cache.Register(key, i)
		if err != nil {
			t.Errorf("Failed to register item %s: %v", key, err)
		}
	}

	_, err := cache.Register("overflow", 100)
	if err == nil {
		t.Errorf("Expected error when exceeding cache capacity, but got none")
	}
}

// TestCacheClear tests the cache clear functionality.
func TestCacheClear(t *testing.T) {
	cache := NewCache[string](10)

	items := []string{"item1", "item2", "item3"}
	for _, item := range items {
		_, err := cache.Register(item, item)
		if err != nil {
			t.Errorf("Failed to register item %s: %v", item, err)
		}
	}

	cache.Clear()

	for _, item := range items {
		_, found := cache.GetIndex(item)
		if found {
			t.Errorf("Item %s still found after cache clear", item)
		}
	}

	for _, item := range items {
		_, err := cache.Register(item, item)
		if err != nil {
			t.Errorf("Failed to register item %s after clear: %v", item, err)
		}
	}
}

type cacheTestPosition struct {
	X, Y float64
}

// TestCacheWithComplexTypes tests the cache with a struct value type.
func TestCacheWithComplexTypes(t *testing.T) {
	cache := NewCache[cacheTestPosition](10)

	positions := []cacheTestPosition{
		{X: 1.0, Y: 2.0},
		{X: 3.0, Y: 4.0},
		{X: 5.0, Y: 6.0},
	}

	keys := []string{"pos1", "pos2", "pos3"}

	for i, pos := range positions {
		_, err := cache.Register(keys[i], pos)
		if err != nil {
			t.Errorf("Failed to register position %v: %v", pos, err)
		}
	}

	for i, key := range keys {
		index, found := cache.GetIndex(key)
		if !found {
			t.Errorf("Position with key %s not found", key)
			continue
		}

		pos := cache.GetItem(index)
		if pos.X != positions[i].X || pos.Y != positions[i].Y {
			t.Errorf("Position at index %d is %v, expected %v", index, pos, positions[i])
		}
	}
}

// TestCacheSequentialAccess exercises interleaved registration and lookup,
// the pattern a data-driven loader uses when it discovers names incrementally.
func TestCacheSequentialAccess(t *testing.T) {
	cache := NewCache[int](100)

	initialIndex, err := cache.Register("item", 42)
	if err != nil {
		t.Fatalf("Failed to register initial item: %v", err)
	}

	for i := 0; i < 1000; i++ {
		item := cache.GetItem(initialIndex)
		if *item != 42 {
			t.Errorf("Expected item value 42, got %d", *item)
		}
	}

	for i := 0; i < 50; i++ {
		key := "new_item" + string(rune(i+'0'))
		if _, err := cache.Register(key, i); err != nil {
			break
		}
	}
}

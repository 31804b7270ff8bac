package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/brickstream/internal/resource"
)

// LRUBlockCache implements BlockCache with least-recently-used eviction.
type LRUBlockCache struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[BlockKey]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   BlockKey
	value []byte
}

// NewLRUBlockCache creates a cache holding at most capacity bytes.
// If rc is non-nil, cached bytes are also reserved from it.
func NewLRUBlockCache(capacity int64, rc *resource.Controller) *LRUBlockCache {
	return &LRUBlockCache{
		capacity:  capacity,
		items:     make(map[BlockKey]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a cached block.
func (c *LRUBlockCache) Get(_ context.Context, key BlockKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return el.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a block. Blocks larger than the capacity are ignored, as
// are blocks the resource controller refuses to admit.
func (c *LRUBlockCache) Set(_ context.Context, key BlockKey, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	newSize := int64(len(b))

	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)
		ent := el.Value.(*entry)
		oldSize := int64(len(ent.value))
		if newSize > oldSize && !c.rc.TryAcquireMemory(newSize-oldSize) {
			// Keep the old value rather than exceed the global limit.
			return
		}
		if newSize < oldSize {
			c.rc.ReleaseMemory(oldSize - newSize)
		}
		c.size += newSize - oldSize
		ent.value = b
		c.evict()
		return
	}

	if newSize > c.capacity {
		return
	}

	// Make room locally first so released bytes go back to rc before
	// we reserve again.
	for c.size+newSize > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			break
		}
		c.removeElement(el)
	}

	if !c.rc.TryAcquireMemory(newSize) {
		return
	}

	c.items[key] = c.evictList.PushFront(&entry{key: key, value: b})
	c.size += newSize
}

// Invalidate removes entries matching the predicate.
func (c *LRUBlockCache) Invalidate(predicate func(key BlockKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, el := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, el)
		}
	}
	for _, el := range toRemove {
		c.removeElement(el)
	}
}

func (c *LRUBlockCache) evict() {
	for c.size > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			return
		}
		c.removeElement(el)
	}
}

// Close drops every entry and returns its memory to the controller.
func (c *LRUBlockCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.evictList.Back(); el != nil; el = c.evictList.Back() {
		c.removeElement(el)
	}
	return nil
}

// Stats returns hit and miss counters.
func (c *LRUBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRUBlockCache) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	ent := el.Value.(*entry)
	delete(c.items, ent.key)
	n := int64(len(ent.value))
	c.size -= n
	c.rc.ReleaseMemory(n)
}

// Size returns the cached bytes.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached blocks.
func (c *LRUBlockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

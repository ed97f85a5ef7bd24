// Package cache implements the capacity-bounded, recency-ordered content
// cache used by the archive backend. Decompression is the only expensive
// read path in the system, so decoded entry content is kept in memory up to
// a byte budget and evicted least-recently-used first.
package cache

import (
	"container/list"
	"sync"
)

// record is one cached entry. Eviction is whole-record only.
type record struct {
	key   string
	value string
	size  int64
}

// ContentCache maps logical paths to decoded text content, bounded by a byte
// budget. Get and Put serialize on an internal mutex: Get mutates recency
// order, so even reads are writes here.
type ContentCache struct {
	mu      sync.Mutex
	budget  int64
	usage   int64
	entries map[string]*list.Element
	// order holds *record elements, least-recently-used at the front.
	order *list.List
}

// New creates a cache with the given byte budget. A zero or negative budget
// still caches single records; they are evicted as soon as another arrives.
func New(budget int64) *ContentCache {
	return &ContentCache{
		budget:  budget,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached content for key and marks it most-recently-used.
func (c *ContentCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.order.MoveToBack(elem)
	return elem.Value.(*record).value, true
}

// Put inserts content under key, evicting least-recently-used records until
// the budget holds. Replacing an existing key does not double-count its
// size. A record larger than the whole budget is still inserted: correctness
// of reads outweighs strict budget adherence for oversized singletons.
func (c *ContentCache) Put(key, value string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.usage -= elem.Value.(*record).size
		c.order.Remove(elem)
		delete(c.entries, key)
	}

	for c.usage+size > c.budget && c.order.Len() > 0 {
		oldest := c.order.Front()
		rec := oldest.Value.(*record)
		c.usage -= rec.size
		c.order.Remove(oldest)
		delete(c.entries, rec.key)
	}

	elem := c.order.PushBack(&record{key: key, value: value, size: size})
	c.entries[key] = elem
	c.usage += size
}

// Clear drops all records and resets usage to zero. Safe to call repeatedly.
func (c *ContentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.usage = 0
}

// Usage returns the total bytes currently held.
func (c *ContentCache) Usage() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// Len returns the number of records currently held.
func (c *ContentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Budget returns the configured byte budget.
func (c *ContentCache) Budget() int64 {
	return c.budget
}

// internal/cache/lru.go
//
// Small LRU cache.  DocForge uses it to hold parsed locale dictionaries
// and other read-mostly lookups; capacity stays in the tens, so a plain
// container/list implementation is plenty.
package cache

import "container/list"

// LRU is a least-recently-used cache keyed by string.  Not safe for
// concurrent use; callers wrap it with their own lock.
type LRU struct {
	cap  int
	ll   *list.List
	dict map[string]*list.Element
}

type entry struct {
	key string
	val any
}

// New returns an LRU with the given capacity.  Panics on cap < 1.
func New(capacity int) *LRU {
	if capacity < 1 {
		panic("cache: capacity must be positive")
	}
	return &LRU{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a value and marks it most recently used.
func (c *LRU) Get(key string) (any, bool) {
	if ele, hit := c.dict[key]; hit {
		c.ll.MoveToFront(ele)
		return ele.Value.(entry).val, true
	}
	return nil, false
}

// Add inserts or updates a value, evicting the LRU entry when full.
func (c *LRU) Add(key string, val any) {
	if ele, hit := c.dict[key]; hit {
		ele.Value = entry{key, val}
		c.ll.MoveToFront(ele)
		return
	}
	c.dict[key] = c.ll.PushFront(entry{key, val})
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(entry).key)
	}
}

// Remove drops one key if present.
func (c *LRU) Remove(key string) {
	if ele, hit := c.dict[key]; hit {
		c.ll.Remove(ele)
		delete(c.dict, key)
	}
}

// Len reports the current entry count.
func (c *LRU) Len() int { return c.ll.Len() }

package cache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"time"
)

// Cache is an in-memory TTL cache with LRU eviction, safe for concurrent
// use. The chat service uses it for property snapshots consulted on every
// first-contact send.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]*record
	order    *list.List // MRU at front
	maxItems int        // 0 = unlimited

	done      chan struct{}
	closeOnce sync.Once
}

type record struct {
	key  string
	val  any
	exp  int64 // unix seconds; 0 = no expiry
	elem *list.Element
}

var (
	defaultCache *Cache
	once         sync.Once
	defaultMax   = 500
)

// Default returns the process-wide cache instance.
func Default() *Cache {
	once.Do(func() {
		defaultCache = New(defaultMax)
	})
	return defaultCache
}

// New creates a cache capped at maxItems entries (0 = unlimited) and starts
// its expiry janitor.
func New(maxItems int) *Cache {
	c := &Cache{
		items:    make(map[string]*record),
		order:    list.New(),
		maxItems: maxItems,
		done:     make(chan struct{}),
	}
	go c.janitor(60 * time.Second)
	return c
}

// Get returns the value for key if present and not expired. The record's
// value and expiry are only ever touched under the write lock, so the whole
// lookup runs as one critical section.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	now := time.Now().Unix()
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if r.exp != 0 && r.exp < now {
		c.removeLocked(key)
		return nil, false
	}
	if r.elem != nil {
		c.order.MoveToFront(r.elem)
	}
	return r.val, true
}

// Set stores a value with TTL; ttl<=0 means no expiry.
func (c *Cache) Set(key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).Unix()
	}
	c.mu.Lock()
	if r, ok := c.items[key]; ok {
		r.val, r.exp = v, exp
		if r.elem != nil {
			c.order.MoveToFront(r.elem)
		}
	} else {
		r := &record{key: key, val: v, exp: exp}
		r.elem = c.order.PushFront(r)
		c.items[key] = r
		if c.maxItems > 0 && c.order.Len() > c.maxItems {
			c.evictOldestLocked()
		}
	}
	c.mu.Unlock()
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.removeLocked(key)
	c.mu.Unlock()
}

// SetMaxItems updates capacity, trimming if the cache is already over it.
func (c *Cache) SetMaxItems(n int) {
	if n < 0 {
		n = 0
	}
	c.mu.Lock()
	c.maxItems = n
	for c.maxItems > 0 && c.order.Len() > c.maxItems {
		c.evictOldestLocked()
	}
	c.mu.Unlock()
}

// Close stops the janitor goroutine. The cache stays usable afterwards;
// expired entries are then only dropped lazily on Get.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Cache) janitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			now := time.Now().Unix()
			c.mu.Lock()
			for k, r := range c.items {
				if r.exp != 0 && r.exp < now {
					c.removeLocked(k)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *Cache) removeLocked(key string) {
	if r, ok := c.items[key]; ok {
		if r.elem != nil {
			c.order.Remove(r.elem)
		}
		delete(c.items, key)
	}
}

func (c *Cache) evictOldestLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.order.Remove(back)
	if r, ok := back.Value.(*record); ok {
		delete(c.items, r.key)
	}
}

// KeyFromStrings builds a compact stable key from parts.
func KeyFromStrings(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	return string(h.Sum(nil))
}

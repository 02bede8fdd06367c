package geocode

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// cacheKey rounds coordinates to four decimals (~11m) so that nearby
// lookups share a cache slot.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f:%.4f", lat, lon)
}

type cacheEntry struct {
	key       string
	address   *Address
	expiresAt time.Time
}

// Cache is a bounded TTL cache for reverse-geocode results. The oldest
// entry is evicted once the size cap is reached.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List
	now     func() time.Time
}

// NewCache builds a cache holding at most maxSize entries for ttl each.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 1024
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Get returns the cached address for the coordinates, if still fresh.
func (c *Cache) Get(lat, lon float64) (*Address, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[cacheKey(lat, lon)]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.entries, entry.key)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry.address, true
}

// Put stores an address for the coordinates, evicting the least
// recently used entry when full.
func (c *Cache) Put(lat, lon float64, address *Address) {
	if c == nil || address == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(lat, lon)
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.address = address
		entry.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	for len(c.entries) >= c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}

	elem := c.order.PushFront(&cacheEntry{
		key:       key,
		address:   address,
		expiresAt: c.now().Add(c.ttl),
	})
	c.entries[key] = elem
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

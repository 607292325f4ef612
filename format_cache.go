package gridcore

import (
	"container/list"
	"sync"
)

// formatCache implements a thread-safe LRU cache for compiled format codes.
// Format codes repeat heavily across a sheet, so compilation happens once
// per distinct code until the least recently used entry is evicted.
type formatCache struct {
	mu       sync.Mutex
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List
}

// formatCacheEntry represents a key-value pair in the cache.
type formatCacheEntry struct {
	key      string
	compiled *compiledFormat
}

// newFormatCache creates a cache with the specified capacity.
func newFormatCache(capacity int) *formatCache {
	return &formatCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

// load retrieves a compiled format and marks it most recently used.
func (c *formatCache) load(key string) (*compiledFormat, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		return elem.Value.(*formatCacheEntry).compiled, true
	}
	return nil, false
}

// store adds or refreshes a compiled format, evicting the least recently
// used entry at capacity. Returns true if an entry was evicted.
func (c *formatCache) store(key string, compiled *compiledFormat) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*formatCacheEntry).compiled = compiled
		return false
	}

	evicted := false
	if c.lruList.Len() >= c.capacity {
		if oldest := c.lruList.Back(); oldest != nil {
			c.lruList.Remove(oldest)
			delete(c.cache, oldest.Value.(*formatCacheEntry).key)
			evicted = true
		}
	}

	c.cache[key] = c.lruList.PushFront(&formatCacheEntry{key: key, compiled: compiled})
	return evicted
}

// clear removes all entries.
func (c *formatCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*list.Element)
	c.lruList = list.New()
}

// size returns the current number of entries.
func (c *formatCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lruList.Len()
}

// defaultFormatCache backs compiledFormatFor. 512 distinct format codes is
// far beyond what a workbook carries in practice.
var defaultFormatCache = newFormatCache(512)

// compiledFormatFor returns the compiled form of a format code, consulting
// the process-wide cache first. The raw code is the whole cache key:
// compilation is independent of category and locale, which are applied at
// render time.
func compiledFormatFor(code string) *compiledFormat {
	if compiled, ok := defaultFormatCache.load(code); ok {
		return compiled
	}
	compiled := compileFormat(code)
	defaultFormatCache.store(code, compiled)
	return compiled
}

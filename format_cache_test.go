package gridcore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCacheBasicOperations(t *testing.T) {
	cache := newFormatCache(3)

	assert.Equal(t, 0, cache.size())
	_, found := cache.load("0.00")
	assert.False(t, found)

	cache.store("0.00", compileFormat("0.00"))
	got, found := cache.load("0.00")
	assert.True(t, found)
	assert.Len(t, got.sections, 1)
	assert.Equal(t, 1, cache.size())
}

func TestFormatCacheEviction(t *testing.T) {
	cache := newFormatCache(2)

	assert.False(t, cache.store("a", compileFormat("0")))
	assert.False(t, cache.store("b", compileFormat("0")))
	// Touch "a" so "b" is the LRU entry.
	_, found := cache.load("a")
	assert.True(t, found)

	assert.True(t, cache.store("c", compileFormat("0")))
	assert.Equal(t, 2, cache.size())

	_, found = cache.load("b")
	assert.False(t, found)
	_, found = cache.load("a")
	assert.True(t, found)
	_, found = cache.load("c")
	assert.True(t, found)
}

func TestFormatCacheStoreRefreshesExisting(t *testing.T) {
	cache := newFormatCache(2)
	cache.store("a", compileFormat("0"))
	replacement := compileFormat("0.00")
	assert.False(t, cache.store("a", replacement))
	assert.Equal(t, 1, cache.size())
	got, _ := cache.load("a")
	assert.Equal(t, replacement, got)
}

func TestFormatCacheClear(t *testing.T) {
	cache := newFormatCache(4)
	cache.store("a", compileFormat("0"))
	cache.store("b", compileFormat("0"))
	cache.clear()
	assert.Equal(t, 0, cache.size())
	_, found := cache.load("a")
	assert.False(t, found)
}

func TestFormatCacheConcurrentAccess(t *testing.T) {
	cache := newFormatCache(16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("code-%d", (g+i)%32)
				if _, ok := cache.load(key); !ok {
					cache.store(key, compileFormat("0"))
				}
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.size(), 16)
}

func TestCompiledFormatForIsCached(t *testing.T) {
	first := compiledFormatFor("#,##0.00;[Red]-#,##0.00")
	second := compiledFormatFor("#,##0.00;[Red]-#,##0.00")
	assert.Same(t, first, second)
}

package pattern

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds the process-wide cache. The spec leaves
// eviction implementation-defined ("a bounded LRU or unbounded
// concurrent map are both acceptable"); DESIGN.md records the
// decision to bound it rather than leave it unbounded like the
// original source does.
const defaultCacheSize = 512

// Cache maps pattern text (plus mode) to an already-compiled Pattern,
// so repeat invocations with the same (text, mode) skip recompilation
// (spec §4.1). Safe for concurrent use: one mutex is held across the
// lookup and any compile, so concurrent Compile calls (for the same
// or different keys) are serialized, the cache is never corrupted,
// and a key is never compiled twice.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, *Pattern]
}

// NewCache creates a cache bounded to size entries.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, _ := lru.New[string, *Pattern](size)
	return &Cache{lru: c}
}

func cacheKey(text string, mode Mode) string {
	return mode.String() + ":" + text
}

// Compile returns the cached Pattern for (text, mode) if present, else
// compiles it with opts, stores, and returns it. opts is not part of
// the key: a later call with different opts gets the cached Pattern.
func (c *Cache) Compile(text string, mode Mode, opts Options) (*Pattern, error) {
	key := cacheKey(text, mode)

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.lru.Get(key); ok {
		return p, nil
	}
	p, err := Compile(text, mode, opts)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, p)
	return p, nil
}

// Len reports the number of cached patterns.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

var defaultCache = NewCache(defaultCacheSize)

// Default returns the process-wide pattern cache, for callers (e.g.
// the search subcommand) that want process-wide reuse without
// plumbing a Cache through explicitly. Tests and the orchestrator
// should prefer constructing their own Cache via NewCache so runs
// remain independent (spec §9 design note on global singletons).
func Default() *Cache { return defaultCache }

package page

import (
	"runtime/debug"
	"sync"
)

// Cache memoizes decoded resources for one page load. The first caller for a
// key runs fn; concurrent and later callers share its value and error.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	v    any
	err  error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]*cacheEntry{}}
}

// Do returns the memoized result for key, computing it with fn once. A panic
// in fn is memoized as a *PanicError.
func (c *Cache) Do(key string, fn func() (any, error)) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()
	e.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				e.v, e.err = nil, &PanicError{Key: key, Value: r, Stack: debug.Stack()}
			}
		}()
		e.v, e.err = fn()
	})
	return e.v, e.err
}

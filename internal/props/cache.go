package props

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// Cache memoizes parsed device requirements for the duration of a run.
// Real file tables frequently point many rows at the same property file;
// entries are keyed by the murmur3 128-bit hash of the file content, so
// identical property files reached through different paths still share
// one parse.
type Cache struct {
	mu      sync.Mutex
	entries map[contentKey]*DeviceRequirements
	hits    int64
	misses  int64
}

type contentKey struct {
	h1, h2 uint64
}

// NewCache creates an empty requirements cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[contentKey]*DeviceRequirements),
	}
}

// Parse returns the device requirements for the given property file
// content, parsing at most once per distinct content. The returned
// requirements are shared and must be treated as read-only. The second
// return value reports whether the result came from the cache.
func (c *Cache) Parse(data []byte) (*DeviceRequirements, bool, error) {
	h1, h2 := murmur3.Sum128(data)
	key := contentKey{h1, h2}

	c.mu.Lock()
	if req, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return req, true, nil
	}
	c.mu.Unlock()

	// Parse outside the lock; a duplicate parse of the same content is
	// harmless and both goroutines store the same logical value.
	req, err := Parse(data)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[key] = req
	c.misses++
	c.mu.Unlock()
	return req, false, nil
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

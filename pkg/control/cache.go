package control

import "github.com/goliatone/go-formtree/pkg/formconfig"

// KeyCache memoizes the ordered attribute keys of each spec for the recursive
// build and patch passes. It is keyed by spec identity and belongs to one
// session; a nil *KeyCache computes keys on every call.
type KeyCache struct {
	keys   map[*formconfig.Spec][]string
	hits   int
	misses int
}

// NewKeyCache returns an empty cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{keys: make(map[*formconfig.Spec][]string)}
}

// Keys returns the ordered keys of spec.
func (c *KeyCache) Keys(spec *formconfig.Spec) []string {
	if spec == nil {
		return nil
	}
	if c == nil {
		return spec.Keys()
	}
	if keys, ok := c.keys[spec]; ok {
		c.hits++
		return keys
	}
	c.misses++
	keys := spec.Keys()
	c.keys[spec] = keys
	return keys
}

// Stats returns hit and miss counters.
func (c *KeyCache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	return c.hits, c.misses
}

// Len returns the number of cached specs.
func (c *KeyCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Reset drops every entry.
func (c *KeyCache) Reset() {
	if c == nil {
		return
	}
	c.keys = make(map[*formconfig.Spec][]string)
	c.hits, c.misses = 0, 0
}

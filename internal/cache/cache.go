// Package cache holds one built connectivity graph per design file,
// keyed by file identity and modification signature.
package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/starford/raido/internal/circuit"
)

// BuildFunc produces a graph for a cache miss. It is invoked at most
// once per (key, signature) pair even under concurrent demand.
type BuildFunc func() (*circuit.Graph, error)

type entry struct {
	signature string
	graph     *circuit.Graph
}

// Cache serves built graphs until the caller-supplied modification
// signature changes. Entries persist for the process lifetime unless
// cleared explicitly; a failed build is never cached and leaves any
// prior good entry in place.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
}

// New creates an empty cache. Each instance is independent; construct
// one per host process or per test.
func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// GetOrBuild returns the cached graph for key when the stored signature
// matches, and otherwise runs build and replaces the entry. Concurrent
// calls for the same key and signature collapse into a single build:
// waiters receive the same graph (or the same error) as the initiator.
func (c *Cache) GetOrBuild(key, signature string, build BuildFunc) (*circuit.Graph, error) {
	if g, ok := c.lookup(key, signature); ok {
		return g, nil
	}

	v, err, _ := c.group.Do(key+"\x00"+signature, func() (any, error) {
		// Re-check: another flight may have stored this signature
		// between our lookup and acquiring the flight.
		if g, ok := c.lookup(key, signature); ok {
			return g, nil
		}
		g, err := build()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = &entry{signature: signature, graph: g}
		c.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*circuit.Graph), nil
}

// Get returns the cached graph for key regardless of signature, or nil.
func (c *Cache) Get(key string) *circuit.Graph {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return e.graph
	}
	return nil
}

// Clear drops the entry for key. The next GetOrBuild rebuilds.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of cached graphs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key, signature string) (*circuit.Graph, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok && e.signature == signature {
		return e.graph, true
	}
	return nil, false
}

package memory

import (
	"context"
	"sync"

	"github.com/honeycarbs/idmapping/internal/repository"
)

var _ repository.IDCache = (*Cache)(nil)

// Cache is a process-lifetime IDCache
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]string
}

// NewCache creates an empty Cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]string)}
}

func (c *Cache) Get(_ context.Context, id string) ([]string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targets, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), targets...), true, nil
}

func (c *Cache) Put(_ context.Context, id string, targets []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = append(make([]string, 0, len(targets)), targets...)
	return nil
}

// Len returns the number of cached ids
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

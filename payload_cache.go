package assetengine

import "sync"

// PayloadCache holds intermediate artifacts a loader may want to reuse
// across requests for the same asset (e.g. fetched bytes shared by loads
// at different sizes). One cache exists per (asset, loader) pair and is
// discarded whenever the asset's resolved location changes.
type PayloadCache struct {
	mu     sync.Mutex
	values map[string]any
}

func NewPayloadCache() *PayloadCache {
	return &PayloadCache{values: make(map[string]any)}
}

func (c *PayloadCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *PayloadCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *PayloadCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

func (c *PayloadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

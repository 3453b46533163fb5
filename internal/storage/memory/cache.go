package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Cache is a process-local domain.Cache. Values are stored as JSON so reads
// behave like the Redis cache: callers always get a copy.
type Cache struct {
	mu  sync.Mutex
	m   map[string]cacheEntry
	now func() time.Time
}

type cacheEntry struct {
	b   []byte
	exp time.Time
}

func NewCache() *Cache {
	return &Cache{m: map[string]cacheEntry{}, now: time.Now}
}

func (c *Cache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	e, ok := c.m[key]
	if ok && !e.exp.IsZero() && !c.now().Before(e.exp) {
		delete(c.m, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.b, dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *Cache) Set(_ context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := cacheEntry{b: b}
	if ttlSec > 0 {
		e.exp = c.now().Add(time.Duration(ttlSec) * time.Second)
	}
	c.mu.Lock()
	c.m[key] = e
	c.mu.Unlock()
	return nil
}

func (c *Cache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

// Package memory is an in-process cache.Cache used when no Redis address
// is configured. Entries expire lazily on read.
package memory

import (
	"context"
	"sync"
	"time"

	"hirefeed/internal/cache"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	closed     bool
	now        func() time.Time
}

func New(opts cache.Options) *Cache {
	ttl := opts.DefaultTTL
	if ttl == 0 {
		ttl = cache.DefaultOptions().DefaultTTL
	}

	return &Cache{
		entries:    make(map[string]entry),
		defaultTTL: ttl,
		now:        time.Now,
	}
}

func (c *Cache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return cache.ErrClosed
	}
	c.entries[key] = entry{value: data, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *Cache) Get(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return cache.ErrClosed
	}
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return cache.ErrNotFound
	}
	return cache.Decode(e.value, value)
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = nil
	return nil
}

// Package memory provides an in-process cache implementation.
package memory

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Client implements the cache.Client interface in process memory.
type Client struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewClient creates an empty in-memory cache.
func NewClient() *Client {
	return &Client{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *Client) live(e entry) bool {
	return e.expiresAt.IsZero() || c.now().Before(e.expiresAt)
}

// Get retrieves a copy of the value stored under key.
func (c *Client) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.live(e) {
		return nil, nil
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a copy of value under key.
func (c *Client) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *Client) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	delete(c.entries, key)
	return c.live(e), nil
}

// Keys returns the live keys matching pattern in lexical order. Expired
// entries found along the way are dropped.
func (c *Client) Keys(_ context.Context, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for key, e := range c.entries {
		if !c.live(e) {
			delete(c.entries, key)
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Ping always succeeds.
func (c *Client) Ping(context.Context) error { return nil }

// Close drops every entry.
func (c *Client) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

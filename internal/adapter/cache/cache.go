// Package cache keeps list results for the remote backend. Entries live in
// namespaces (one per entity) and a namespace is flushed as a whole after
// every mutation by bumping its generation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process cache used when no Redis address is configured.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	gens    map[string]int64
	entries map[string]entry
}

type entry struct {
	data    []byte
	expires time.Time
}

// NewMemory creates an in-process cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		gens:    make(map[string]int64),
		entries: make(map[string]entry),
	}
}

// Generation returns the current generation of ns. Callers read it before
// loading from the store and pass it to Get and Set.
func (c *Memory) Generation(_ context.Context, ns string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[ns], nil
}

// Get decodes the value cached for key in generation gen into dest and
// reports whether it was present.
func (c *Memory) Get(_ context.Context, ns string, gen int64, key string, dest any) (bool, error) {
	c.mu.Lock()
	k := entryKey(ns, gen, key)
	e, ok := c.entries[k]
	if ok && !c.now().Before(e.expires) {
		delete(c.entries, k)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, fmt.Errorf("cache.Memory.Get: %w", err)
	}
	return true, nil
}

// Set stores v under key in generation gen. A write for a generation that
// has since been invalidated is dropped: its data may predate the mutation.
func (c *Memory) Set(_ context.Context, ns string, gen int64, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache.Memory.Set: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gens[ns] {
		return nil
	}
	c.entries[entryKey(ns, gen, key)] = entry{data: data, expires: c.now().Add(c.ttl)}
	return nil
}

// Invalidate starts a new generation for ns and drops the old entries.
func (c *Memory) Invalidate(_ context.Context, ns string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[ns]++
	prefix := ns + ":"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

func entryKey(ns string, gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", ns, gen, key)
}

package memstore

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	expires time.Time
}

// Counters reproduit INCR + EXPIRE : la fenêtre repart à chaque incrément.
type Counters struct {
	mu   sync.Mutex
	keys map[string]window
	now  func() time.Time
}

func NewCounters() *Counters {
	return &Counters{keys: make(map[string]window), now: time.Now}
}

func (c *Counters) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	w := c.keys[key]
	if now.After(w.expires) {
		w.count = 0
	}
	w.count++
	w.expires = now.Add(ttl)
	c.keys[key] = w
	return w.count, nil
}

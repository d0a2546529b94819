package server

import (
	"context"
	"sync"
	"time"

	"github.com/mj1618/luckydog/internal/model"
)

// Dumper produces a full hierarchy of the current screen.
type Dumper interface {
	Dump(ctx context.Context) (*model.Hierarchy, error)
}

// TreeCache provides a TTL-based cache of the last screen dump. It serves
// inspection tools only; claiming always reads a fresh snapshot.
type TreeCache struct {
	mu        sync.Mutex
	hier      *model.Hierarchy
	timestamp time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewTreeCache creates a new cache. A ttl of 0 disables caching.
func NewTreeCache(ttl time.Duration) *TreeCache {
	return &TreeCache{ttl: ttl, now: time.Now}
}

// Dump returns the cached hierarchy if within TTL, otherwise dumps fresh.
func (c *TreeCache) Dump(ctx context.Context, d Dumper) (*model.Hierarchy, error) {
	if c.ttl == 0 {
		return d.Dump(ctx)
	}

	c.mu.Lock()
	if c.hier != nil && c.now().Sub(c.timestamp) < c.ttl {
		h := c.hier
		c.mu.Unlock()
		return h, nil
	}
	c.mu.Unlock()

	h, err := d.Dump(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.hier = h
	c.timestamp = c.now()
	c.mu.Unlock()

	return h, nil
}

// Invalidate drops the cached dump after an action changed the screen.
func (c *TreeCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hier = nil
}

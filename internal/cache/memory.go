package cache

import (
	"context"
	"sync"
	"time"

	"hikari/internal/models"
)

type memoryEntry struct {
	tables    []models.Table
	expiresAt time.Time
}

type MemoryTableCache struct {
	entries sync.Map
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryTableCache returns an in-process cache. ttl <= 0 keeps entries forever.
func NewMemoryTableCache(ttl time.Duration) *MemoryTableCache {
	return &MemoryTableCache{ttl: ttl, now: time.Now}
}

func (c *MemoryTableCache) Get(ctx context.Context, key string) ([]models.Table, bool, error) {
	val, ok := c.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := val.(*memoryEntry)
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.entries.Delete(key)
		return nil, false, nil
	}
	return append([]models.Table(nil), entry.tables...), true, nil
}

func (c *MemoryTableCache) Set(ctx context.Context, key string, tables []models.Table) error {
	entry := &memoryEntry{tables: append([]models.Table(nil), tables...)}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.entries.Store(key, entry)
	return nil
}

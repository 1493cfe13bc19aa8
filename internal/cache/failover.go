package cache

import (
	"context"
	"sync"
	"time"

	"hikari/internal/models"

	"github.com/rs/zerolog"
)

const recoverAfter = time.Minute

// FailoverTableCache reads and writes the primary until it fails, then serves the
// fallback and probes the primary again once recoverAfter has passed.
type FailoverTableCache struct {
	primary  TableCache
	fallback TableCache
	logger   *zerolog.Logger

	mu       sync.Mutex
	down     bool
	downedAt time.Time
	now      func() time.Time
}

func NewFailoverTableCache(primary, fallback TableCache, logger *zerolog.Logger) *FailoverTableCache {
	return &FailoverTableCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (c *FailoverTableCache) usePrimary() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.down || c.now().Sub(c.downedAt) > recoverAfter
}

func (c *FailoverTableCache) markDown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.down {
		c.logger.Error().Err(err).Msg("primary table cache failed, falling back to memory")
	}
	c.down = true
	c.downedAt = c.now()
}

func (c *FailoverTableCache) markUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		c.logger.Info().Msg("primary table cache recovered")
	}
	c.down = false
}

func (c *FailoverTableCache) Get(ctx context.Context, key string) ([]models.Table, bool, error) {
	if c.usePrimary() {
		tables, ok, err := c.primary.Get(ctx, key)
		if err == nil {
			c.markUp()
			return tables, ok, nil
		}
		c.markDown(err)
	}
	return c.fallback.Get(ctx, key)
}

func (c *FailoverTableCache) Set(ctx context.Context, key string, tables []models.Table) error {
	if c.usePrimary() {
		err := c.primary.Set(ctx, key, tables)
		if err == nil {
			c.markUp()
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.Set(ctx, key, tables)
}

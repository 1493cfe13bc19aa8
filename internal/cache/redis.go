package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hikari/internal/config"
	"hikari/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hikari:tables:"

type RedisTableCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client from the redis config section.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisTableCache(client *redis.Client, ttl time.Duration) *RedisTableCache {
	return &RedisTableCache{client: client, ttl: ttl}
}

func (c *RedisTableCache) Get(ctx context.Context, key string) ([]models.Table, bool, error) {
	if c.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get tables from redis: %w", err)
	}

	var tables []models.Table
	if err := json.Unmarshal(val, &tables); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal tables: %w", err)
	}
	return tables, true, nil
}

func (c *RedisTableCache) Set(ctx context.Context, key string, tables []models.Table) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(tables)
	if err != nil {
		return fmt.Errorf("failed to marshal tables: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set tables in redis: %w", err)
	}
	return nil
}

// Ping checks the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

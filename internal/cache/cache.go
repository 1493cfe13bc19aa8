// Package cache keeps the backend table list between page loads.
package cache

import (
	"context"

	"hikari/internal/models"
)

// TableCache stores normalized table lists by key.
// Get reports a miss with ok=false and a nil error.
type TableCache interface {
	Get(ctx context.Context, key string) (tables []models.Table, ok bool, err error)
	Set(ctx context.Context, key string, tables []models.Table) error
}

package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"hikari/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sampleTables = []models.Table{
	{ID: 1, Name: "L-B-1", Type: models.IconTwoHorz, Capacity: 2, X: 25, Y: 94, IsActive: true},
	{ID: 5, Name: "L-4-1", Type: models.IconFour, Capacity: 4, X: 32, Y: 78, IsActive: true},
}

func TestRedisTableCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	c := NewRedisTableCache(client, time.Minute)
	ctx := context.Background()

	t.Run("Miss", func(t *testing.T) {
		got, ok, err := c.Get(ctx, "all")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "all", sampleTables))

		got, ok, err := c.Get(ctx, "all")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, sampleTables, got)
		assert.True(t, s.Exists(keyPrefix+"all"))
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", sampleTables))
		s.FastForward(2 * time.Minute)

		_, ok, err := c.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("CorruptValue", func(t *testing.T) {
		require.NoError(t, s.Set(keyPrefix+"bad", "{not json"))
		_, _, err := c.Get(ctx, "bad")
		assert.Error(t, err)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("NilClient", func(t *testing.T) {
		nilCache := NewRedisTableCache(nil, time.Minute)
		_, _, err := nilCache.Get(ctx, "all")
		assert.Error(t, err)
		assert.Error(t, nilCache.Set(ctx, "all", sampleTables))
	})
}

func TestMemoryTableCache(t *testing.T) {
	c := NewMemoryTableCache(time.Minute)
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "all", sampleTables))

	got, ok, err := c.Get(ctx, "all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sampleTables, got)

	// callers must not be able to mutate the cached slice
	got[0].Name = "changed"
	again, _, _ := c.Get(ctx, "all")
	assert.Equal(t, "L-B-1", again[0].Name)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.Get(ctx, "all")
	require.NoError(t, err)
	assert.False(t, ok)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]models.Table, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.Table), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, tables []models.Table) error {
	return m.Called(ctx, key, tables).Error(0)
}

func TestFailoverTableCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	logger := zerolog.New(io.Discard)
	c := NewFailoverTableCache(primary, fallback, &logger)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Get", ctx, "a").Return(sampleTables, true, nil).Once()

		got, ok, err := c.Get(ctx, "a")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, sampleTables, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("Set", ctx, "b", sampleTables).Return(errors.New("conn refused")).Once()
		fallback.On("Set", ctx, "b", sampleTables).Return(nil).Once()

		assert.NoError(t, c.Set(ctx, "b", sampleTables))
		assert.True(t, c.down)
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		fallback.On("Get", ctx, "b").Return(sampleTables, true, nil).Once()

		_, ok, err := c.Get(ctx, "b")
		assert.NoError(t, err)
		assert.True(t, ok)
		primary.AssertNotCalled(t, "Get", ctx, "b")
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("Get", ctx, "c").Return(nil, false, nil).Once()

		_, ok, err := c.Get(ctx, "c")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, c.down)
		primary.AssertExpectations(t)
	})
}

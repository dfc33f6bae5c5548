package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-registry-service/internal/domain/user"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func newTestCache(t *testing.T, client *redis.Client) *RedisUserCache {
	return NewRedisUserCache(client, "test", 5*time.Minute, zaptest.NewLogger(t))
}

func TestRedisUserCache_SetThenGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := newTestCache(t, client)
	ctx := context.Background()

	user := &domain.User{ID: 1, Name: "John Doe", Email: "john@example.com"}
	require.NoError(t, c.Set(ctx, user))

	raw, err := mr.Get("test:user:1")
	require.NoError(t, err)
	var stored domain.User
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, *user, stored)
	assert.Equal(t, 5*time.Minute, mr.TTL("test:user:1"))

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestRedisUserCache_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := newTestCache(t, client)

	got, err := c.Get(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := newTestCache(t, client)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 7, Name: "Temp", Email: "temp@example.com"}))
	mr.FastForward(6 * time.Minute)

	got, err := c.Get(ctx, 7)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := newTestCache(t, client)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Name: "John Doe", Email: "john@example.com"}))
	require.NoError(t, c.Delete(ctx, 1))
	assert.False(t, mr.Exists("test:user:1"))

	// deleting an absent key is not an error
	assert.NoError(t, c.Delete(ctx, 1))
}

func TestRedisUserCache_SetNil(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := newTestCache(t, client)

	assert.EqualError(t, c.Set(context.Background(), nil), "cannot cache nil user")
}

func TestRedisUserCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := newTestCache(t, client)

	require.NoError(t, mr.Set("test:user:3", "{not json"))

	_, err := c.Get(context.Background(), 3)
	assert.ErrorContains(t, err, "cache decode")
}

func TestRedisUserCache_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := newTestCache(t, client)
	mr.Close()

	_, err := c.Get(context.Background(), 1)
	assert.ErrorContains(t, err, "cache get")
}

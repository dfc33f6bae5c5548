package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-registry-service/internal/config"
	"user-registry-service/internal/usecase/user"
)

func baseConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{HTTPPort: "8080", ShutdownTimeoutSeconds: 5},
		Store:  config.StoreConfig{Driver: config.DriverMemory, Seed: true},
		Logger: config.LoggerConfig{Level: "warn", ServiceName: "user-registry"},
	}
}

func TestNewContainer_Memory(t *testing.T) {
	c, err := NewContainer(context.Background(), baseConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.DB)
	assert.Nil(t, c.RedisClient)
	assert.False(t, c.RateLimiter.Enabled())

	resp, err := c.UserUC.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
}

func TestNewContainer_SQLiteWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.Store = config.StoreConfig{Driver: config.DriverSQLite, Seed: true, SQLitePath: filepath.Join(t.TempDir(), "registry.db")}
	cfg.DB.MaxIdleConns = 1
	cfg.Redis = config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mr.Port(), PoolSize: 2, CacheTTL: 60, KeyPrefix: "test"}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 10, BurstCapacity: 20}

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.NotNil(t, c.DB)
	assert.True(t, c.RateLimiter.Enabled())

	ctx := context.Background()
	created, err := c.UserUC.CreateUser(ctx, user.CreateUserRequest{Name: "Test User", Email: "test@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	got, err := c.UserUC.GetUser(ctx, user.GetUserRequest{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, "Test User", got.Name)
	assert.True(t, mr.Exists("test:user:3"))
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Store.Driver = "mongo"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))

	assert.ErrorContains(t, err, "config validation failed")
}

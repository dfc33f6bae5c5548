package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-registry-service/cmd/api/infrastructure"
	"user-registry-service/internal/adapter/cache"
	"user-registry-service/internal/adapter/db/sqlstore"
	ginhandler "user-registry-service/internal/adapter/gin/handler"
	"user-registry-service/internal/adapter/grpc/middleware"
	"user-registry-service/internal/adapter/repository/cached"
	"user-registry-service/internal/adapter/repository/memory"
	"user-registry-service/internal/config"
	domain "user-registry-service/internal/domain/user"
	"user-registry-service/internal/usecase/user"
	redisclient "user-registry-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	RedisClient   *redisclient.Client
	UserUC        user.UserUsecase
	RateLimiter   *middleware.RateLimiter
	GinHandler    *ginhandler.UserHandler
	HealthHandler *ginhandler.HealthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	repo, err := c.newRepository(ctx)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}

	// Redis backs both the read cache and the rate limiter
	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize Redis: %w", err), c.Close())
	}
	c.RedisClient = rdb

	var scripter goredis.Scripter
	if rdb != nil {
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			cfg.Redis.KeyPrefix,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewUserRepository(repo, userCache, l)
		scripter = rdb.Client
	}

	c.UserUC = user.New(repo, l)

	c.RateLimiter = middleware.NewRateLimiter(
		scripter,
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.HealthHandler = ginhandler.NewHealthHandler(cfg.Logger.ServiceName)

	return c, nil
}

// newRepository builds the registry backend named by STORE_DRIVER.
func (c *Container) newRepository(ctx context.Context) (user.Repository, error) {
	var seed []domain.User
	if c.Config.Store.Seed {
		seed = domain.DefaultSeed()
	}

	db, err := infrastructure.NewDatabase(c.Config, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if db == nil {
		c.Logger.Info("using in-memory user registry", zap.Int("seeded", len(seed)))
		return memory.NewUserRegistry(seed, c.Logger), nil
	}
	c.DB = db

	repo := sqlstore.NewUserRepo(db, c.Logger)
	if err := repo.Migrate(ctx, seed); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}

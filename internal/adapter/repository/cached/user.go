package cached

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-registry-service/internal/adapter/cache"
	domain "user-registry-service/internal/domain/user"
	"user-registry-service/internal/usecase/user"
	"user-registry-service/pkg/logger"
)

// UserRepository decorates a user.Repository with a read cache.
// Cache failures are logged and never fail the request.
type UserRepository struct {
	next  user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository wraps next. A nil cache disables caching.
func NewUserRepository(next user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		next:  next,
		cache: c,
		log:   log,
	}
}

// List delegates to the wrapped repository.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.next.List(ctx)
}

// Create delegates to the wrapped repository.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.next.Create(ctx, u)
}

// GetByID reads through the cache. Concurrent misses for the same id share one store lookup.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if r.cache == nil {
		return r.next.GetByID(ctx, id)
	}

	log := logger.WithContext(ctx, r.log)

	if cachedUser, err := r.cache.Get(ctx, id); err != nil {
		log.Warn("cache get error, falling back to store", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	result, err, shared := r.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		u, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(ctx, u); err != nil {
			log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("store lookup shared by concurrent callers", zap.Int64("id", id))
	}

	u := *result.(*domain.User)
	return &u, nil
}

// Update writes through to the store, then drops the cached entry.
func (r *UserRepository) Update(ctx context.Context, id int64, p domain.Patch) (*domain.User, error) {
	u, err := r.next.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return u, nil
}

// Delete removes from the store, then drops the cached entry.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *UserRepository) invalidate(ctx context.Context, id int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, r.log).Warn("failed to invalidate cache", zap.Int64("id", id), zap.Error(err))
	}
}

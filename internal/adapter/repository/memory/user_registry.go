package memory

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	domain "user-registry-service/internal/domain/user"
	"user-registry-service/internal/usecase/user"
)

// UserRegistry is the process-local user store: an ordered sequence of
// records plus a monotonically increasing id counter.
//
// The slice keeps insertion order for List; index maps an id to its
// position in the slice. All access goes through mu.
type UserRegistry struct {
	mu     sync.RWMutex
	users  []domain.User
	index  map[int64]int
	nextID int64
	log    *zap.Logger
}

var _ user.Repository = (*UserRegistry)(nil)

// NewUserRegistry creates a registry holding seed, in order.
// The counter starts just above the largest seeded id.
func NewUserRegistry(seed []domain.User, log *zap.Logger) *UserRegistry {
	r := &UserRegistry{
		users:  make([]domain.User, 0, len(seed)),
		index:  make(map[int64]int, len(seed)),
		nextID: domain.NextIDAfter(seed),
		log:    log,
	}
	for _, u := range seed {
		if _, dup := r.index[u.ID]; dup {
			continue
		}
		r.index[u.ID] = len(r.users)
		r.users = append(r.users, u)
	}
	return r
}

// NextID returns the id the next Create will assign.
func (r *UserRegistry) NextID() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextID
}

// List returns a copy of all records in insertion order.
func (r *UserRegistry) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

// GetByID returns a copy of the record with the given id.
func (r *UserRegistry) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := r.users[i]
	return &u, nil
}

// Create assigns the next id to u, appends it and advances the counter.
func (r *UserRegistry) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := domain.User{
		ID:    r.nextID,
		Name:  u.Name,
		Email: u.Email,
	}
	r.index[created.ID] = len(r.users)
	r.users = append(r.users, created)
	r.nextID++

	r.log.Debug("user appended to registry", zap.Int64("id", created.ID), zap.Int64("next_id", r.nextID))
	return &created, nil
}

// Update replaces the supplied fields of the record in place.
func (r *UserRegistry) Update(_ context.Context, id int64, p domain.Patch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.users[i].Apply(p)
	u := r.users[i]
	return &u, nil
}

// Delete removes the record. The counter is untouched so the id is never reissued.
func (r *UserRegistry) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return domain.ErrNotFound
	}

	r.users = append(r.users[:i], r.users[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.users); j++ {
		r.index[r.users[j].ID] = j
	}

	r.log.Debug("user removed from registry", zap.Int64("id", id))
	return nil
}

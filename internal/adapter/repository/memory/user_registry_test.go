package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-registry-service/internal/domain/user"
	pkgerrors "user-registry-service/pkg/errors"
)

func newSeededRegistry(t *testing.T) *UserRegistry {
	return NewUserRegistry(domain.DefaultSeed(), zaptest.NewLogger(t))
}

func TestUserRegistry_Seed(t *testing.T) {
	r := newSeededRegistry(t)
	ctx := context.Background()

	users, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "John Doe", users[0].Name)
	assert.Equal(t, "Jane Smith", users[1].Name)
	assert.Equal(t, int64(3), r.NextID())
}

func TestUserRegistry_CreateThenGet(t *testing.T) {
	r := newSeededRegistry(t)
	ctx := context.Background()

	created, err := r.Create(ctx, &domain.User{Name: "Test User", Email: "test@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: 3, Name: "Test User", Email: "test@example.com"}, *got)

	users, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Equal(t, int64(3), users[2].ID)
}

func TestUserRegistry_GetNotFound(t *testing.T) {
	r := newSeededRegistry(t)

	_, err := r.GetByID(context.Background(), 999)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Equal(t, "User not found", err.Error())
}

func TestUserRegistry_DeleteThenGet(t *testing.T) {
	r := newSeededRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Delete(ctx, 1))

	_, err := r.GetByID(ctx, 1)
	assert.True(t, pkgerrors.IsNotFound(err))

	// remaining record still reachable after the slice shifted
	got, err := r.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got.Name)

	assert.True(t, pkgerrors.IsNotFound(r.Delete(ctx, 1)))
}

func TestUserRegistry_IDsNeverReused(t *testing.T) {
	r := newSeededRegistry(t)
	ctx := context.Background()

	before := r.NextID()
	require.NoError(t, r.Delete(ctx, 2))

	created, err := r.Create(ctx, &domain.User{Name: "New", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, before, created.ID)
	assert.NotEqual(t, int64(2), created.ID)

	// deleting the newest record does not roll the counter back either
	require.NoError(t, r.Delete(ctx, created.ID))
	again, err := r.Create(ctx, &domain.User{Name: "Again", Email: "again@example.com"})
	require.NoError(t, err)
	assert.Equal(t, before+1, again.ID)
}

func TestUserRegistry_PartialUpdate(t *testing.T) {
	r := newSeededRegistry(t)
	ctx := context.Background()

	name := "Updated Name"
	u, err := r.Update(ctx, 1, domain.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", u.Name)
	assert.Equal(t, "john@example.com", u.Email)

	email := "jane.new@example.com"
	u, err = r.Update(ctx, 2, domain.Patch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", u.Name)
	assert.Equal(t, email, u.Email)

	_, err = r.Update(ctx, 999, domain.Patch{Name: &name})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRegistry_ReturnsCopies(t *testing.T) {
	r := newSeededRegistry(t)
	ctx := context.Background()

	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", again.Name)
}

func TestUserRegistry_ConcurrentCreateKeepsIDsUnique(t *testing.T) {
	r := NewUserRegistry(nil, zaptest.NewLogger(t))
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := r.Create(ctx, &domain.User{Name: "u", Email: "u@example.com"})
			if err == nil {
				ids <- u.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, int64(n+1), r.NextID())
}

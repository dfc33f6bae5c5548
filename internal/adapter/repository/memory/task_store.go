package memory

import (
	"context"
	"errors"
	"sync"

	domain "user-registry-service/internal/domain/task"
	"user-registry-service/internal/usecase/task"
)

// TaskStore keeps tasks in insertion order. Ids start at 1 and are never reused.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  []domain.Task
	index  map[int64]int
	nextID int64
}

var _ task.Repository = (*TaskStore)(nil)

func NewTaskStore() *TaskStore {
	return &TaskStore{index: make(map[int64]int), nextID: 1}
}

func (s *TaskStore) List(_ context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *TaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	t := s.tasks[i]
	return &t, nil
}

func (s *TaskStore) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	if t == nil {
		return nil, errors.New("task cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := *t
	created.ID = s.nextID
	s.index[created.ID] = len(s.tasks)
	s.tasks = append(s.tasks, created)
	s.nextID++
	return &created, nil
}

func (s *TaskStore) Update(_ context.Context, id int64, p domain.Patch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.tasks[i].Apply(p)
	t := s.tasks[i]
	return &t, nil
}

func (s *TaskStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.tasks); j++ {
		s.index[s.tasks[j].ID] = j
	}
	return nil
}

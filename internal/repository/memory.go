package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/todoplanner/apigateway/internal/domain"
)

// MemoryTodoRepository keeps records in memory. It backs tests and runs the
// service without a database.
type MemoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]domain.Todo
}

func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{todos: map[string]domain.Todo{}}
}

func (r *MemoryTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now()
	}
	r.todos[todo.ID] = *todo
	return nil
}

func (r *MemoryTodoRepository) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	t.Normalize()
	return &t, nil
}

func (r *MemoryTodoRepository) Update(ctx context.Context, id string, patch domain.TodoPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Status != nil {
		t.SetStatus(*patch.Status)
	}
	if patch.SetStartTime {
		t.StartTime = patch.StartTime
	}
	if patch.SetEndTime {
		t.EndTime = patch.EndTime
	}
	r.todos[id] = t
	return nil
}

func (r *MemoryTodoRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.todos, id)
	return nil
}

func (r *MemoryTodoRepository) ListAll(ctx context.Context) ([]domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		t.Normalize()
		out = append(out, t)
	}
	// Stable scan order for the reminder engine.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Package googlecloud provides a Google Cloud Datastore backed todo store.
// It is an alternative to the Postgres repository for deployments that run
// on GCP or against the local Datastore emulator.
package googlecloud

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/google/uuid"

	"github.com/todoplanner/apigateway/internal/domain"
)

// KindTodo is the Datastore entity kind for task records.
const KindTodo = "Todo"

// todoEntity is the stored shape of a record. Datastore has no NULL, so
// optional timestamps are stored as zero values and mapped back to nil
// pointers on load.
type todoEntity struct {
	Title       string    `datastore:"title"`
	Description string    `datastore:"description,noindex"`
	Important   bool      `datastore:"important"`
	StartTime   time.Time `datastore:"start_time"`
	EndTime     time.Time `datastore:"end_time"`
	Deadline    time.Time `datastore:"deadline"`
	Done        bool      `datastore:"done"`
	Status      string    `datastore:"status"`
	CreatedAt   time.Time `datastore:"created_at"`
}

func toEntity(t *domain.Todo) *todoEntity {
	e := &todoEntity{
		Title:       t.Title,
		Description: t.Description,
		Important:   t.Important,
		Done:        t.Done,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
	}
	if t.StartTime != nil {
		e.StartTime = *t.StartTime
	}
	if t.EndTime != nil {
		e.EndTime = *t.EndTime
	}
	if t.Deadline != nil {
		e.Deadline = *t.Deadline
	}
	return e
}

func (e *todoEntity) toDomain(id string) *domain.Todo {
	t := &domain.Todo{
		ID:          id,
		Title:       e.Title,
		Description: e.Description,
		Important:   e.Important,
		Done:        e.Done,
		Status:      domain.Status(e.Status),
		CreatedAt:   e.CreatedAt,
	}
	if !e.StartTime.IsZero() {
		start := e.StartTime
		t.StartTime = &start
	}
	if !e.EndTime.IsZero() {
		end := e.EndTime
		t.EndTime = &end
	}
	if !e.Deadline.IsZero() {
		deadline := e.Deadline
		t.Deadline = &deadline
	}
	t.Normalize()
	return t
}

// TodoStore implements domain.TodoRepository on top of Cloud Datastore.
type TodoStore struct {
	ds *datastore.Client
}

// NewTodoStore connects to Datastore for the given project. The official
// client detects DATASTORE_EMULATOR_HOST automatically; we log it here for
// visibility during development.
func NewTodoStore(ctx context.Context, projectID string) (*TodoStore, error) {
	if emulatorHost := os.Getenv("DATASTORE_EMULATOR_HOST"); emulatorHost != "" {
		fmt.Printf("Initializing Datastore todo store against emulator at %s\n", emulatorHost)
	}

	ds, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}

	return &TodoStore{ds: ds}, nil
}

// Close closes the underlying datastore client.
func (s *TodoStore) Close() error {
	return s.ds.Close()
}

func (s *TodoStore) Create(ctx context.Context, todo *domain.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now()
	}

	key := datastore.NameKey(KindTodo, todo.ID, nil)
	if _, err := s.ds.Put(ctx, key, toEntity(todo)); err != nil {
		return fmt.Errorf("failed to create todo %s: %w", todo.ID, err)
	}
	return nil
}

func (s *TodoStore) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	key := datastore.NameKey(KindTodo, id, nil)
	var e todoEntity
	if err := s.ds.Get(ctx, key, &e); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load todo %s: %w", id, err)
	}
	return e.toDomain(id), nil
}

// Update applies the patch inside a transaction so a concurrent writer or a
// failed Put never leaves a half-patched record.
func (s *TodoStore) Update(ctx context.Context, id string, patch domain.TodoPatch) error {
	key := datastore.NameKey(KindTodo, id, nil)
	_, err := s.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var e todoEntity
		if err := tx.Get(key, &e); err != nil {
			return err
		}

		if patch.Status != nil {
			e.Status = string(*patch.Status)
			e.Done = *patch.Status == domain.StatusCompleted
		}
		if patch.SetStartTime {
			e.StartTime = time.Time{}
			if patch.StartTime != nil {
				e.StartTime = *patch.StartTime
			}
		}
		if patch.SetEndTime {
			e.EndTime = time.Time{}
			if patch.EndTime != nil {
				e.EndTime = *patch.EndTime
			}
		}

		_, err := tx.Put(key, &e)
		return err
	})
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update todo %s: %w", id, err)
	}
	return nil
}

// Delete removes the record. Deleting a missing key is not an error, so the
// operation is idempotent like the other stores.
func (s *TodoStore) Delete(ctx context.Context, id string) error {
	key := datastore.NameKey(KindTodo, id, nil)
	if err := s.ds.Delete(ctx, key); err != nil && !errors.Is(err, datastore.ErrNoSuchEntity) {
		return fmt.Errorf("failed to delete todo %s: %w", id, err)
	}
	return nil
}

func (s *TodoStore) ListAll(ctx context.Context) ([]domain.Todo, error) {
	query := datastore.NewQuery(KindTodo).Order("created_at")

	var entities []todoEntity
	keys, err := s.ds.GetAll(ctx, query, &entities)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]domain.Todo, 0, len(entities))
	for i := range entities {
		todos = append(todos, *entities[i].toDomain(keys[i].Name))
	}
	// Records sharing a creation instant get a deterministic order.
	sort.SliceStable(todos, func(i, j int) bool {
		if todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].ID < todos[j].ID
		}
		return todos[i].CreatedAt.Before(todos[j].CreatedAt)
	})
	return todos, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/todoplanner/apigateway/internal/domain"
	"github.com/todoplanner/apigateway/internal/logger"
	"github.com/todoplanner/apigateway/internal/schedule"
)

// AddTodoInput is the validated-at-the-service creation payload. Timestamps
// arrive already parsed; the handler owns the ISO-8601 boundary.
type AddTodoInput struct {
	Title       string
	Description string
	Important   bool
	StartTime   *time.Time
	EndTime     *time.Time
	Deadline    *time.Time
}

// SearchIndexer mirrors todos into a secondary full-text index. Indexing is
// best effort and never blocks or fails the write path.
type SearchIndexer interface {
	Index(ctx context.Context, todo domain.Todo)
	Remove(ctx context.Context, id string)
	Search(ctx context.Context, query string) ([]string, error)
}

type TodoService interface {
	Add(ctx context.Context, in AddTodoInput) (*domain.Todo, error)
	Get(ctx context.Context, id string) (*domain.Todo, error)
	Remove(ctx context.Context, id string) error
	ToggleDone(ctx context.Context, id string, value bool) error
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	UpdateStartTime(ctx context.Context, id string, startTime *time.Time) error
	UpdateEndTime(ctx context.Context, id string, endTime *time.Time) error
	List(ctx context.Context, view schedule.View, ref time.Time) ([]domain.Todo, error)
	Search(ctx context.Context, query string) ([]domain.Todo, error)
}

type todoService struct {
	repo    domain.TodoRepository
	indexer SearchIndexer // nil when search is not configured
}

func NewTodoService(repo domain.TodoRepository, indexer SearchIndexer) TodoService {
	return &todoService{repo: repo, indexer: indexer}
}

func (s *todoService) Add(ctx context.Context, in AddTodoInput) (*domain.Todo, error) {
	todo, err := domain.NewTodo(in.Title, in.Description, in.Important, in.StartTime, in.EndTime, in.Deadline)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}
	if s.indexer != nil {
		s.indexer.Index(ctx, *todo)
	}
	return todo, nil
}

func (s *todoService) Get(ctx context.Context, id string) (*domain.Todo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *todoService) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.indexer != nil {
		s.indexer.Remove(ctx, id)
	}
	return nil
}

// ToggleDone sets the done flag together with its mirrored status.
func (s *todoService) ToggleDone(ctx context.Context, id string, value bool) error {
	status := domain.StatusPending
	if value {
		status = domain.StatusCompleted
	}
	return s.UpdateStatus(ctx, id, status)
}

func (s *todoService) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	if !domain.ValidStatus(status) {
		return &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	if err := s.repo.Update(ctx, id, domain.TodoPatch{Status: &status}); err != nil {
		return err
	}
	s.reindex(ctx, id)
	return nil
}

func (s *todoService) UpdateStartTime(ctx context.Context, id string, startTime *time.Time) error {
	return s.repo.Update(ctx, id, domain.TodoPatch{SetStartTime: true, StartTime: startTime})
}

func (s *todoService) UpdateEndTime(ctx context.Context, id string, endTime *time.Time) error {
	return s.repo.Update(ctx, id, domain.TodoPatch{SetEndTime: true, EndTime: endTime})
}

// List returns the view's tasks filtered and display-ordered.
func (s *todoService) List(ctx context.Context, view schedule.View, ref time.Time) ([]domain.Todo, error) {
	if !schedule.ValidView(view) {
		return nil, &domain.ValidationError{Field: "view", Reason: fmt.Sprintf("unknown view %q", view)}
	}
	todos, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.Sort(schedule.Classify(todos, view, ref)), nil
}

// Search resolves matching ids from the index, then loads current records
// from the primary store so results never show stale fields.
func (s *todoService) Search(ctx context.Context, query string) ([]domain.Todo, error) {
	if s.indexer == nil {
		return nil, fmt.Errorf("search is not configured")
	}
	ids, err := s.indexer.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	todos := make([]domain.Todo, 0, len(ids))
	for _, id := range ids {
		t, err := s.repo.GetByID(ctx, id)
		if err == domain.ErrNotFound {
			continue // index lag after a delete
		}
		if err != nil {
			return nil, err
		}
		todos = append(todos, *t)
	}
	return schedule.Sort(todos), nil
}

func (s *todoService) reindex(ctx context.Context, id string) {
	if s.indexer == nil {
		return
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.WarnLog(ctx, "reindex skipped for todo %s: %v", id, err)
		return
	}
	s.indexer.Index(ctx, *t)
}

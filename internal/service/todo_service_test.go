package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todoplanner/apigateway/internal/domain"
	"github.com/todoplanner/apigateway/internal/repository"
	"github.com/todoplanner/apigateway/internal/schedule"
	"github.com/todoplanner/apigateway/internal/service"
)

func tp(t time.Time) *time.Time { return &t }

func newService() (service.TodoService, *repository.MemoryTodoRepository) {
	repo := repository.NewMemoryTodoRepository()
	return service.NewTodoService(repo, nil), repo
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	t.Run("EmptyTitleRejected", func(t *testing.T) {
		_, err := svc.Add(ctx, service.AddTodoInput{Title: "   "})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("OverlongTitleRejected", func(t *testing.T) {
		_, err := svc.Add(ctx, service.AddTodoInput{Title: strings.Repeat("x", 121)})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("OverlongDescriptionRejected", func(t *testing.T) {
		_, err := svc.Add(ctx, service.AddTodoInput{Title: "ok", Description: strings.Repeat("y", 501)})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("StartAfterEndRejected", func(t *testing.T) {
		now := time.Now()
		_, err := svc.Add(ctx, service.AddTodoInput{
			Title:     "ok",
			StartTime: tp(now.Add(time.Hour)),
			EndTime:   tp(now),
		})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("TrimsAndCreatesPending", func(t *testing.T) {
		todo, err := svc.Add(ctx, service.AddTodoInput{Title: "  buy milk  ", Description: " soon "})
		require.NoError(t, err)
		assert.Equal(t, "buy milk", todo.Title)
		assert.Equal(t, "soon", todo.Description)
		assert.Equal(t, domain.StatusPending, todo.Status)
		assert.False(t, todo.Done)
		assert.NotEmpty(t, todo.ID)
		assert.False(t, todo.CreatedAt.IsZero())
	})
}

func TestToggleDone(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	todo, err := svc.Add(ctx, service.AddTodoInput{Title: "task"})
	require.NoError(t, err)

	require.NoError(t, svc.ToggleDone(ctx, todo.ID, true))
	got, err := repo.GetByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	require.NoError(t, svc.ToggleDone(ctx, todo.ID, false))
	got, err = repo.GetByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.False(t, got.Done)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	todo, err := svc.Add(ctx, service.AddTodoInput{Title: "task"})
	require.NoError(t, err)

	err = svc.UpdateStatus(ctx, todo.ID, domain.Status("archived"))
	assert.True(t, domain.IsValidation(err))
}

func TestListViews(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	ref := time.Now()
	todayStart, _ := schedule.DayWindow(ref, 0)

	_, err := svc.Add(ctx, service.AddTodoInput{Title: "timeless"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, service.AddTodoInput{Title: "today", StartTime: tp(todayStart.Add(10 * time.Hour))})
	require.NoError(t, err)
	_, err = svc.Add(ctx, service.AddTodoInput{Title: "tomorrow", StartTime: tp(todayStart.Add(30 * time.Hour))})
	require.NoError(t, err)

	today, err := svc.List(ctx, schedule.ViewToday, ref)
	require.NoError(t, err)
	if assert.Len(t, today, 1) {
		assert.Equal(t, "today", today[0].Title)
	}

	tomorrow, err := svc.List(ctx, schedule.ViewTomorrow, ref)
	require.NoError(t, err)
	if assert.Len(t, tomorrow, 1) {
		assert.Equal(t, "tomorrow", tomorrow[0].Title)
	}

	all, err := svc.List(ctx, schedule.ViewAll, ref)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// Timeless tasks sort after every scheduled one.
	assert.Equal(t, "timeless", all[2].Title)

	_, err = svc.List(ctx, schedule.View("yesterday"), ref)
	assert.True(t, domain.IsValidation(err))
}

func TestListAllOrdering(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	base := time.Now()
	_, err := svc.Add(ctx, service.AddTodoInput{Title: "plain-2h", StartTime: tp(base.Add(2 * time.Hour))})
	require.NoError(t, err)
	_, err = svc.Add(ctx, service.AddTodoInput{Title: "important-5h", Important: true, StartTime: tp(base.Add(5 * time.Hour))})
	require.NoError(t, err)
	_, err = svc.Add(ctx, service.AddTodoInput{Title: "plain-1h", StartTime: tp(base.Add(1 * time.Hour))})
	require.NoError(t, err)

	all, err := svc.List(ctx, schedule.ViewAll, base)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "important-5h", all[0].Title)
	assert.Equal(t, "plain-1h", all[1].Title)
	assert.Equal(t, "plain-2h", all[2].Title)
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	todo, err := svc.Add(ctx, service.AddTodoInput{Title: "task"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, todo.ID))
	require.NoError(t, svc.Remove(ctx, todo.ID))

	_, err = svc.Get(ctx, todo.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

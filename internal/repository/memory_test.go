package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoplanner/apigateway/internal/domain"
)

func seedTodo(t *testing.T, repo *MemoryTodoRepository, title string, start, end *time.Time) *domain.Todo {
	t.Helper()
	todo, err := domain.NewTodo(title, "", false, start, end, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), todo))
	return todo
}

func TestMemoryRepositoryPatchSemantics(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)
	todo := seedTodo(t, repo, "Plan trip", &start, &end)

	t.Run("nil fields leave the record untouched", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, todo.ID, domain.TodoPatch{}))

		got, err := repo.GetByID(ctx, todo.ID)
		require.NoError(t, err)
		require.NotNil(t, got.StartTime)
		require.NotNil(t, got.EndTime)
		assert.Equal(t, domain.StatusPending, got.Status)
	})

	t.Run("set flag with nil value clears the timestamp", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, todo.ID, domain.TodoPatch{SetStartTime: true}))

		got, err := repo.GetByID(ctx, todo.ID)
		require.NoError(t, err)
		assert.Nil(t, got.StartTime)
		assert.NotNil(t, got.EndTime)
	})

	t.Run("status patch keeps the done mirror", func(t *testing.T) {
		s := domain.StatusCompleted
		require.NoError(t, repo.Update(ctx, todo.ID, domain.TodoPatch{Status: &s}))

		got, err := repo.GetByID(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		assert.True(t, got.Done)
	})

	t.Run("updating a missing id is not found", func(t *testing.T) {
		err := repo.Update(ctx, "missing", domain.TodoPatch{SetEndTime: true})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMemoryRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	// Same creation instant forces the id tiebreak.
	created := time.Now()
	for _, title := range []string{"First", "Second", "Third"} {
		todo, err := domain.NewTodo(title, "", false, nil, nil, nil)
		require.NoError(t, err)
		todo.CreatedAt = created
		require.NoError(t, repo.Create(ctx, todo))
	}

	todos, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 3)

	again, err := repo.ListAll(ctx)
	require.NoError(t, err)
	for i := range todos {
		assert.Equal(t, todos[i].ID, again[i].ID)
	}
	assert.True(t, todos[0].ID < todos[1].ID && todos[1].ID < todos[2].ID)
}

func TestMemoryRepositoryUpgradesLegacyDeadlineRows(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	// Records from the deadline-only schema carry neither start/end times nor
	// a status. Reads upgrade them: endTime from the deadline, status from done.
	deadline := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, &domain.Todo{ID: "legacy", Title: "Old task", Deadline: &deadline}))
	require.NoError(t, repo.Create(ctx, &domain.Todo{ID: "legacy-done", Title: "Old done task", Deadline: &deadline, Done: true}))

	got, err := repo.GetByID(ctx, "legacy")
	require.NoError(t, err)
	require.NotNil(t, got.EndTime)
	assert.True(t, got.EndTime.Equal(deadline))
	assert.Nil(t, got.StartTime)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.False(t, got.Done)

	done, err := repo.GetByID(ctx, "legacy-done")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	assert.True(t, done.Done)

	// ListAll upgrades too, so every consumer of the scan sees the new schema.
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, todo := range all {
		assert.NotNil(t, todo.EndTime)
		assert.NotEmpty(t, todo.Status)
	}
}

func TestMemoryRepositoryDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	todo := seedTodo(t, repo, "Walk dog", nil, nil)
	require.NoError(t, repo.Delete(ctx, todo.ID))
	require.NoError(t, repo.Delete(ctx, todo.ID))

	_, err := repo.GetByID(ctx, todo.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package reminder_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todoplanner/apigateway/internal/domain"
	"github.com/todoplanner/apigateway/internal/reminder"
	"github.com/todoplanner/apigateway/internal/repository"
)

// fireStart seeds one overdue pending task and surfaces its start reminder.
func fireStart(t *testing.T, repo *repository.MemoryTodoRepository, engine *reminder.Engine, id string) {
	t.Helper()
	now := time.Now()
	seed(t, repo, domain.Todo{ID: id, Title: "task", StartTime: tp(now.Add(-10 * time.Minute)), Status: domain.StatusPending})
	ev, err := engine.Check(context.Background(), now)
	require.NoError(t, err)
	require.NotNil(t, ev)
}

func TestResolvePostpone(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTodoRepository()
	engine := reminder.NewEngine(repo, time.Second)
	fireStart(t, repo, engine, "a")

	newStart := time.Now().Add(2 * time.Hour).Truncate(time.Minute)
	require.NoError(t, engine.Resolve(ctx, reminder.DecisionPostpone, reminder.Payload{NewStartTime: &newStart}))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got.StartTime)
	assert.True(t, got.StartTime.Equal(newStart))
	// Postponing does not touch the status.
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, engine.Pending())
}

func TestResolveCancelDeletes(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTodoRepository()
	engine := reminder.NewEngine(repo, time.Second)
	fireStart(t, repo, engine, "a")

	require.NoError(t, engine.Resolve(ctx, reminder.DecisionCancel, reminder.Payload{}))

	_, err := repo.GetByID(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveCompleted(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTodoRepository()
	engine := reminder.NewEngine(repo, time.Second)
	fireStart(t, repo, engine, "a")

	require.NoError(t, engine.Resolve(ctx, reminder.DecisionCompleted, reminder.Payload{}))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.True(t, got.Done)
}

func TestResolvePartiallyDoneWithNewEnd(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTodoRepository()
	engine := reminder.NewEngine(repo, time.Second)
	fireStart(t, repo, engine, "a")

	newEnd := time.Now().Add(4 * time.Hour).Truncate(time.Minute)
	require.NoError(t, engine.Resolve(ctx, reminder.DecisionPartiallyDone, reminder.Payload{NewEndTime: &newEnd}))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartiallyDone, got.Status)
	assert.False(t, got.Done)
	require.NotNil(t, got.EndTime)
	assert.True(t, got.EndTime.Equal(newEnd))
}

func TestResolveWithoutPendingFails(t *testing.T) {
	repo := repository.NewMemoryTodoRepository()
	engine := reminder.NewEngine(repo, time.Second)

	err := engine.Resolve(context.Background(), reminder.DecisionStarted, reminder.Payload{})
	assert.Error(t, err)
}

func TestResolveUnknownDecisionKeepsDialog(t *testing.T) {
	repo := repository.NewMemoryTodoRepository()
	engine := reminder.NewEngine(repo, time.Second)
	fireStart(t, repo, engine, "a")

	err := engine.Resolve(context.Background(), reminder.Decision("jump"), reminder.Payload{})
	assert.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	// The typo is rejected before the dialog is dismissed, so the reminder
	// is still there for a corrected retry.
	assert.NotNil(t, engine.Pending())

	require.NoError(t, engine.Resolve(context.Background(), reminder.DecisionStarted, reminder.Payload{}))
	assert.Nil(t, engine.Pending())
}

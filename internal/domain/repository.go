package domain

import (
	"context"
	"time"
)

// TodoPatch carries a partial update. Nil fields are left untouched; the
// Set* flags distinguish "clear this timestamp" from "do not change it".
type TodoPatch struct {
	Status *Status

	SetStartTime bool
	StartTime    *time.Time

	SetEndTime bool
	EndTime    *time.Time
}

// TodoRepository is the record store the planner core is built on.
// Implementations must apply a patch atomically: a failed update leaves the
// stored record unchanged.
type TodoRepository interface {
	Create(ctx context.Context, todo *Todo) error
	GetByID(ctx context.Context, id string) (*Todo, error)
	Update(ctx context.Context, id string, patch TodoPatch) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]Todo, error)
}

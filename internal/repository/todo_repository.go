package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/todoplanner/apigateway/internal/domain"
)

// PostgresTodoRepository is the primary record store.
type PostgresTodoRepository struct {
	db *sql.DB
}

func NewPostgresTodoRepository(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db}
}

// EnsureSchema creates the todos table when it does not exist yet.
func (r *PostgresTodoRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS todos (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			important   BOOLEAN NOT NULL DEFAULT FALSE,
			start_time  TIMESTAMPTZ,
			end_time    TIMESTAMPTZ,
			deadline    TIMESTAMPTZ,
			done        BOOLEAN NOT NULL DEFAULT FALSE,
			status      TEXT NOT NULL DEFAULT 'pending',
			created_at  TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure todos schema: %w", err)
	}
	return nil
}

// Create inserts the record, assigning id and createdAt.
func (r *PostgresTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todos (id, title, description, important, start_time, end_time, deadline, done, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		todo.ID, todo.Title, todo.Description, todo.Important,
		todo.StartTime, todo.EndTime, todo.Deadline,
		todo.Done, string(todo.Status), todo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	return nil
}

func (r *PostgresTodoRepository) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, important, start_time, end_time, deadline, done, status, created_at
		FROM todos WHERE id = $1`, id)

	todo, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo %s: %w", id, err)
	}
	return todo, nil
}

// Update applies the patch in a single UPDATE statement, so a failure leaves
// the row unchanged. The done mirror is recomputed whenever status changes.
func (r *PostgresTodoRepository) Update(ctx context.Context, id string, patch domain.TodoPatch) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
		args = append(args, *patch.Status == domain.StatusCompleted)
		sets = append(sets, fmt.Sprintf("done = $%d", len(args)))
	}
	if patch.SetStartTime {
		args = append(args, patch.StartTime)
		sets = append(sets, fmt.Sprintf("start_time = $%d", len(args)))
	}
	if patch.SetEndTime {
		args = append(args, patch.EndTime)
		sets = append(sets, fmt.Sprintf("end_time = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE todos SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update todo %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the record. Deleting a missing id is a no-op success.
func (r *PostgresTodoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo %s: %w", id, err)
	}
	return nil
}

// ListAll returns every record in a stable order (creation time, then id).
func (r *PostgresTodoRepository) ListAll(ctx context.Context) ([]domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, important, start_time, end_time, deadline, done, status, created_at
		FROM todos ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo row: %w", err)
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todo rows: %w", err)
	}
	return todos, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	var (
		t      domain.Todo
		status string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Important,
		&t.StartTime, &t.EndTime, &t.Deadline, &t.Done, &status, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	// Legacy deadline-only rows are upgraded at the read boundary.
	t.Normalize()
	return &t, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/models"
)

type TodoRepository struct {
	db *sqlx.DB
}

func NewTodoRepository(db *sqlx.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// ListAll returns every todo, newest first.
func (r *TodoRepository) ListAll(ctx context.Context) ([]models.Todo, error) {
	const query = `
		SELECT id, title, description, completed, created_at, updated_at
		FROM todos
		ORDER BY created_at DESC, rowid DESC
	`

	todos := []models.Todo{}
	if err := r.db.SelectContext(ctx, &todos, query); err != nil {
		logger.Log.Errorw("failed to list todos", "error", err)
		return nil, err
	}

	return todos, nil
}

// GetByID returns the todo or nil when absent.
func (r *TodoRepository) GetByID(ctx context.Context, id string) (*models.Todo, error) {
	const query = `
		SELECT id, title, description, completed, created_at, updated_at
		FROM todos
		WHERE id = ?
		LIMIT 1
	`

	var todo models.Todo
	err := r.db.GetContext(ctx, &todo, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &todo, nil
}

// Create inserts a new todo with a fresh id and timestamps.
func (r *TodoRepository) Create(ctx context.Context, title string, description *string) (*models.Todo, error) {
	now := time.Now().UTC()
	todo := models.Todo{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const query = `
		INSERT INTO todos (id, title, description, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.Title, todo.Description, todo.Completed, todo.CreatedAt, todo.UpdatedAt,
	); err != nil {
		logger.Log.Errorw("failed to insert todo", "error", err)
		return nil, err
	}

	return &todo, nil
}

// Update merges the provided fields and bumps updated_at. Returns nil when
// the todo does not exist.
func (r *TodoRepository) Update(ctx context.Context, id string, updates models.TodoUpdate) (*models.Todo, error) {
	const query = `
		UPDATE todos
		SET title = COALESCE(?, title),
		    description = COALESCE(?, description),
		    completed = COALESCE(?, completed),
		    updated_at = ?
		WHERE id = ?
	`

	res, err := r.db.ExecContext(ctx, query, updates.Title, updates.Description, updates.Completed, time.Now().UTC(), id)
	if err != nil {
		logger.Log.Errorw("failed to update todo", "todo_id", id, "error", err)
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete removes the todo. Returns false when it does not exist.
func (r *TodoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		logger.Log.Errorw("failed to delete todo", "todo_id", id, "error", err)
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

package services

import (
	"context"
	"strings"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/models"
)

// TodoStore defines the storage operations the todo service needs.
type TodoStore interface {
	ListAll(ctx context.Context) ([]models.Todo, error)
	GetByID(ctx context.Context, id string) (*models.Todo, error)
	Create(ctx context.Context, title string, description *string) (*models.Todo, error)
	Update(ctx context.Context, id string, updates models.TodoUpdate) (*models.Todo, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// TodoService handles todo CRUD.
type TodoService struct {
	store TodoStore
}

// NewTodoService creates a new TodoService.
func NewTodoService(store TodoStore) *TodoService {
	return &TodoService{store: store}
}

// List returns every todo, newest first.
func (svc *TodoService) List(ctx context.Context) ([]models.Todo, error) {
	todos, err := svc.store.ListAll(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list todos", "err", err)
		return nil, apperrors.Internal(err)
	}
	return todos, nil
}

// Get returns a single todo by id.
func (svc *TodoService) Get(ctx context.Context, id string) (*models.Todo, error) {
	todo, err := svc.store.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get todo", "todo_id", id, "err", err)
		return nil, apperrors.Internal(err)
	}
	if todo == nil {
		return nil, apperrors.NotFound("Todo not found")
	}
	return todo, nil
}

// Create validates and stores a new todo. The title is required and
// trimmed.
func (svc *TodoService) Create(ctx context.Context, title string, description *string) (*models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.InvalidInput("Title is required")
	}

	todo, err := svc.store.Create(ctx, title, description)
	if err != nil {
		logger.Log.Errorw("failed to create todo", "err", err)
		return nil, apperrors.Internal(err)
	}
	return todo, nil
}

// Update merges the provided fields. A provided title must not be blank.
func (svc *TodoService) Update(ctx context.Context, id string, updates models.TodoUpdate) (*models.Todo, error) {
	if updates.Title != nil {
		trimmed := strings.TrimSpace(*updates.Title)
		if trimmed == "" {
			return nil, apperrors.InvalidInput("Title cannot be empty")
		}
		updates.Title = &trimmed
	}

	todo, err := svc.store.Update(ctx, id, updates)
	if err != nil {
		logger.Log.Errorw("failed to update todo", "todo_id", id, "err", err)
		return nil, apperrors.Internal(err)
	}
	if todo == nil {
		return nil, apperrors.NotFound("Todo not found")
	}
	return todo, nil
}

// Delete removes a todo by id.
func (svc *TodoService) Delete(ctx context.Context, id string) error {
	deleted, err := svc.store.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete todo", "todo_id", id, "err", err)
		return apperrors.Internal(err)
	}
	if !deleted {
		return apperrors.NotFound("Todo not found")
	}
	return nil
}

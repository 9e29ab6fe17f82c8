package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/models"
)

// TodoManager defines the interface that the todo service must implement.
type TodoManager interface {
	List(ctx context.Context) ([]models.Todo, error)
	Get(ctx context.Context, id string) (*models.Todo, error)
	Create(ctx context.Context, title string, description *string) (*models.Todo, error)
	Update(ctx context.Context, id string, updates models.TodoUpdate) (*models.Todo, error)
	Delete(ctx context.Context, id string) error
}

// CreateTodoRequest represents the JSON body for creating a todo
// swagger:model CreateTodoRequest
type CreateTodoRequest struct {
	// Title
	// required: true
	Title string `json:"title"`

	// Description
	Description *string `json:"description,omitempty"`
}

// NewListTodosHandler returns an HTTP handler listing all todos.
// @Summary List todos
// @Tags todos
// @Produce json
// @Success 200 {object} models.APIResponse "Todos, newest first"
// @Router /api/todos [get]
func NewListTodosHandler(svc TodoManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		todos, err := svc.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, todos, "")
	}
}

// NewGetTodoHandler returns an HTTP handler reading one todo.
// @Summary Get todo
// @Tags todos
// @Produce json
// @Param id path string true "Todo id"
// @Success 200 {object} models.APIResponse "Todo"
// @Failure 404 {object} models.APIResponse "Todo not found"
// @Router /api/todos/{id} [get]
func NewGetTodoHandler(svc TodoManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		todo, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, todo, "")
	}
}

// NewCreateTodoHandler returns an HTTP handler creating a todo.
// @Summary Create todo
// @Tags todos
// @Accept json
// @Produce json
// @Param createTodoRequest body handlers.CreateTodoRequest true "Todo create request"
// @Success 201 {object} models.APIResponse "Created todo"
// @Failure 400 {object} models.APIResponse "Title is required"
// @Router /api/todos [post]
func NewCreateTodoHandler(svc TodoManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTodoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, apperrors.InvalidInput("Invalid request body"))
			return
		}

		todo, err := svc.Create(r.Context(), req.Title, req.Description)
		if err != nil {
			respondError(w, err)
			return
		}
		respondSuccess(w, http.StatusCreated, todo, "")
	}
}

// NewUpdateTodoHandler returns an HTTP handler updating a todo.
// @Summary Update todo
// @Tags todos
// @Accept json
// @Produce json
// @Param id path string true "Todo id"
// @Param todoUpdate body models.TodoUpdate true "Fields to merge"
// @Success 200 {object} models.APIResponse "Updated todo"
// @Failure 400 {object} models.APIResponse "Title cannot be empty"
// @Failure 404 {object} models.APIResponse "Todo not found"
// @Router /api/todos/{id} [put]
func NewUpdateTodoHandler(svc TodoManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.TodoUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, apperrors.InvalidInput("Invalid request body"))
			return
		}

		todo, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			respondError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, todo, "")
	}
}

// NewDeleteTodoHandler returns an HTTP handler deleting a todo.
// @Summary Delete todo
// @Tags todos
// @Produce json
// @Param id path string true "Todo id"
// @Success 200 {object} models.APIResponse "Todo deleted"
// @Failure 404 {object} models.APIResponse "Todo not found"
// @Router /api/todos/{id} [delete]
func NewDeleteTodoHandler(svc TodoManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, nil, "Todo deleted successfully")
	}
}

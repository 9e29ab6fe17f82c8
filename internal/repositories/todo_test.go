package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taleik/taleik-api/internal/models"
)

func TestTodoRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	repo := NewTodoRepository(db)

	desc := "whole milk"
	created, err := repo.Create(ctx, "buy milk", &desc)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Completed)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "buy milk", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)

	got, err = repo.GetByID(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTodoRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	repo := NewTodoRepository(db)

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		todo, err := repo.Create(ctx, title, nil)
		require.NoError(t, err)
		ids = append(ids, todo.ID)
	}

	todos, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	for i, todo := range todos {
		assert.Equal(t, ids[len(ids)-1-i], todo.ID)
	}
}

func TestTodoRepository_Update(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	repo := NewTodoRepository(db)

	created, err := repo.Create(ctx, "buy milk", nil)
	require.NoError(t, err)

	completed := true
	updated, err := repo.Update(ctx, created.ID, models.TodoUpdate{Completed: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.Completed)
	assert.Equal(t, "buy milk", updated.Title)

	title := "buy oat milk"
	updated, err = repo.Update(ctx, created.ID, models.TodoUpdate{Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, title, updated.Title)
	// Fields absent from the update keep their values.
	assert.True(t, updated.Completed)

	updated, err = repo.Update(ctx, "no-such-id", models.TodoUpdate{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestTodoRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	repo := NewTodoRepository(db)

	created, err := repo.Create(ctx, "buy milk", nil)
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

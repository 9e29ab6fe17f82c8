package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taleik/taleik-api/internal/models"
)

// newTestDB opens a uniquely named shared in-memory database so parallel
// tests never see each other's rows.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	writer := NewUserWriteRepository(db)
	reader := NewUserReadRepository(db)

	phone := "+15551234567"
	created, err := writer.Create(ctx, "alice@example.com", &phone, models.Roles{models.RoleBuyer}, false, models.StatusActive, "hash-1")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Equal(t, models.Roles{models.RoleBuyer}, created.Roles)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := reader.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, created.ID, byID.ID)
	assert.Equal(t, models.Roles{models.RoleBuyer}, byID.Roles)
	require.NotNil(t, byID.Phone)
	assert.Equal(t, phone, *byID.Phone)

	byEmail, err := reader.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, created.ID, byEmail.ID)

	hash, err := reader.GetPasswordHash(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", hash)
}

func TestUserRepository_GetAbsent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	reader := NewUserReadRepository(db)

	user, err := reader.GetByID(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = reader.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	hash, err := reader.GetPasswordHash(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	writer := NewUserWriteRepository(db)
	reader := NewUserReadRepository(db)

	_, err := writer.Create(ctx, "Alice@Example.com", nil, models.Roles{models.RoleBuyer}, false, models.StatusActive, "hash-1")
	require.NoError(t, err)

	user, err := reader.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	writer := NewUserWriteRepository(db)

	created, err := writer.Create(ctx, "alice@example.com", nil, models.Roles{models.RoleBuyer}, false, models.StatusActive, "hash-1")
	require.NoError(t, err)

	phone := "+15559998888"
	updated, err := writer.Update(ctx, created.ID, &phone)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)

	// A nil phone leaves the stored value untouched.
	updated, err = writer.Update(ctx, created.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)

	// Unknown id.
	updated, err = writer.Update(ctx, "no-such-id", &phone)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestUserRepository_SetPasswordHash(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	writer := NewUserWriteRepository(db)
	reader := NewUserReadRepository(db)

	created, err := writer.Create(ctx, "alice@example.com", nil, models.Roles{models.RoleBuyer}, false, models.StatusActive, "hash-1")
	require.NoError(t, err)

	ok, err := writer.SetPasswordHash(ctx, created.ID, "hash-2")
	require.NoError(t, err)
	assert.True(t, ok)

	hash, err := reader.GetPasswordHash(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", hash)

	ok, err = writer.SetPasswordHash(ctx, "no-such-id", "hash-3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	writer := NewUserWriteRepository(db)
	reader := NewUserReadRepository(db)

	created, err := writer.Create(ctx, "alice@example.com", nil, models.Roles{models.RoleBuyer}, false, models.StatusActive, "hash-1")
	require.NoError(t, err)

	ok, err := writer.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// The credential goes with the user.
	user, err := reader.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, user)

	hash, err := reader.GetPasswordHash(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, hash)

	ok, err = writer.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_ListAll(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	writer := NewUserWriteRepository(db)
	reader := NewUserReadRepository(db)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := writer.Create(ctx, email, nil, models.Roles{models.RoleBuyer}, false, models.StatusActive, "hash")
		require.NoError(t, err)
	}

	users, err := reader.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/models"
)

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByID returns the user or nil when absent.
func (r *UserReadRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	const query = `
		SELECT id, email, phone, roles, mfa_enabled, status, created_at, updated_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)

	logger.Log.Infow("user query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail returns the user with exactly that email (case-sensitive)
// or nil when absent.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
		SELECT id, email, phone, roles, mfa_enabled, status, created_at, updated_at
		FROM users
		WHERE email = ?
		LIMIT 1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)

	logger.Log.Infow("user query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{email},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetPasswordHash returns the stored hash for the user, or "" when the user
// has no credential.
func (r *UserReadRepository) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	const query = `SELECT password_hash FROM credentials WHERE user_id = ? LIMIT 1`

	var hash string
	err := r.db.GetContext(ctx, &hash, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return hash, nil
}

// ListAll returns every user. Diagnostic use only.
func (r *UserReadRepository) ListAll(ctx context.Context) ([]models.User, error) {
	const query = `
		SELECT id, email, phone, roles, mfa_enabled, status, created_at, updated_at
		FROM users
		ORDER BY created_at
	`

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}

	return users, nil
}

type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Create assigns a fresh id and timestamps and inserts the user record and
// its credential in one transaction. Email uniqueness is the caller's
// responsibility; the store performs no check.
func (r *UserWriteRepository) Create(ctx context.Context, email string, phone *string, roles models.Roles, mfaEnabled bool, status string, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	user := models.User{
		ID:         uuid.NewString(),
		Email:      email,
		Phone:      phone,
		Roles:      roles,
		MFAEnabled: mfaEnabled,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const insertUser = `
		INSERT INTO users (id, email, phone, roles, mfa_enabled, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insertUser,
		user.ID, user.Email, user.Phone, user.Roles, user.MFAEnabled, user.Status, user.CreatedAt, user.UpdatedAt,
	); err != nil {
		logger.Log.Errorw("failed to insert user", "email", email, "error", err)
		return nil, err
	}

	const insertCredential = `INSERT INTO credentials (user_id, password_hash) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, insertCredential, user.ID, passwordHash); err != nil {
		logger.Log.Errorw("failed to insert credential", "user_id", user.ID, "error", err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &user, nil
}

// Update merges the provided fields over the existing record and bumps
// updated_at. A nil phone is left untouched. Returns nil when the user does
// not exist.
func (r *UserWriteRepository) Update(ctx context.Context, id string, phone *string) (*models.User, error) {
	const query = `
		UPDATE users
		SET phone = COALESCE(?, phone), updated_at = ?
		WHERE id = ?
	`

	res, err := r.db.ExecContext(ctx, query, phone, time.Now().UTC(), id)
	if err != nil {
		logger.Log.Errorw("failed to update user", "user_id", id, "error", err)
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, nil
	}

	return NewUserReadRepository(r.db).GetByID(ctx, id)
}

// SetPasswordHash replaces the stored hash. Returns false when the user has
// no credential to replace.
func (r *UserWriteRepository) SetPasswordHash(ctx context.Context, userID string, hash string) (bool, error) {
	const query = `UPDATE credentials SET password_hash = ? WHERE user_id = ?`

	res, err := r.db.ExecContext(ctx, query, hash, userID)
	if err != nil {
		logger.Log.Errorw("failed to set password hash", "user_id", userID, "error", err)
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// Delete removes the user and its credential in one transaction, so a
// credential never outlives its user. Returns false when the user does not
// exist. Audit entries are owned by the profile layer and erased there.
func (r *UserWriteRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "user_id", id, "error", err)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = ?`, id); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

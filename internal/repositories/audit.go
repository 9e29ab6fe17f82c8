package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/models"
)

type AuditLogReadRepository struct {
	db *sqlx.DB
}

func NewAuditLogReadRepository(db *sqlx.DB) *AuditLogReadRepository {
	return &AuditLogReadRepository{db: db}
}

// ListByUserID returns the user's entries ordered by created_at descending,
// sliced [offset, offset+limit). An unknown user yields an empty list.
// Insertion order breaks timestamp ties so pagination stays stable.
func (r *AuditLogReadRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, error) {
	const query = `
		SELECT id, user_id, action, details, ip_address, user_agent, created_at
		FROM audit_logs
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`

	logs := []models.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, userID, limit, offset); err != nil {
		logger.Log.Errorw("failed to list audit logs", "user_id", userID, "error", err)
		return nil, err
	}

	return logs, nil
}

// CountByUserID returns the number of entries stored for the user.
func (r *AuditLogReadRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM audit_logs WHERE user_id = ?`

	var total int
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, err
	}

	return total, nil
}

type AuditLogWriteRepository struct {
	db *sqlx.DB
}

func NewAuditLogWriteRepository(db *sqlx.DB) *AuditLogWriteRepository {
	return &AuditLogWriteRepository{db: db}
}

// Append writes a new immutable entry and returns it.
func (r *AuditLogWriteRepository) Append(ctx context.Context, userID, action string, details models.Details, provenance *models.Provenance) (*models.AuditLog, error) {
	entry := models.AuditLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if provenance != nil {
		entry.IPAddress = provenance.IPAddress
		entry.UserAgent = provenance.UserAgent
	}

	const query = `
		INSERT INTO audit_logs (id, user_id, action, details, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.Details, entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	); err != nil {
		logger.Log.Errorw("failed to append audit log", "user_id", userID, "action", action, "error", err)
		return nil, err
	}

	return &entry, nil
}

// DeleteByUserID erases every entry for the user.
func (r *AuditLogWriteRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM audit_logs WHERE user_id = ?`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		logger.Log.Errorw("failed to delete audit logs", "user_id", userID, "error", err)
	}

	return err
}

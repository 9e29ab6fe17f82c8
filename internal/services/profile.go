package services

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/models"
)

var (
	phonePattern   = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	phoneStripped  = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	defaultLogPage = 50
)

// AuditLogReader reads back audit entries.
type AuditLogReader interface {
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
}

// ProfileCache caches serialized user records.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	Set(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// ProfileService handles profile reads/mutations and the per-user audit log.
// The cache and the kafka writer are optional; nil disables them.
type ProfileService struct {
	reader      UserReader
	writer      UserWriter
	auditWriter AuditLogWriter
	auditReader AuditLogReader
	cache       ProfileCache
	kafkaWriter KafkaWriter
}

// NewProfileService creates a new ProfileService.
func NewProfileService(
	reader UserReader,
	writer UserWriter,
	auditWriter AuditLogWriter,
	auditReader AuditLogReader,
	cache ProfileCache,
	kafkaWriter KafkaWriter,
) *ProfileService {
	return &ProfileService{
		reader:      reader,
		writer:      writer,
		auditWriter: auditWriter,
		auditReader: auditReader,
		cache:       cache,
		kafkaWriter: kafkaWriter,
	}
}

// GetProfile returns the full user record, via the cache when one is
// configured.
func (svc *ProfileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if svc.cache != nil {
		if cached, err := svc.cache.Get(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", userID, "err", err)
		return nil, apperrors.Internal(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User not found")
	}

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, user); err != nil {
			logger.Log.Errorw("failed to cache profile", "user_id", userID, "err", err)
		}
	}

	return user, nil
}

// UpdateProfile validates and merges the provided fields, appends a
// profile_updated audit entry recording previous and updated values, and
// returns the updated user. An invalid phone leaves the record unmodified.
func (svc *ProfileService) UpdateProfile(ctx context.Context, userID string, phone *string, provenance *models.Provenance) (*models.User, error) {
	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", userID, "err", err)
		return nil, apperrors.Internal(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User not found")
	}

	if phone != nil && !phonePattern.MatchString(phoneStripped.Replace(*phone)) {
		return nil, apperrors.InvalidInput("Invalid phone number format")
	}

	updated, err := svc.writer.Update(ctx, userID, phone)
	if err != nil {
		logger.Log.Errorw("failed to update user", "user_id", userID, "err", err)
		return nil, apperrors.Internal(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("User not found")
	}

	svc.LogAuditAction(ctx, userID, models.AuditActionProfileUpdated, models.Details{
		"previous": map[string]any{"phone": user.Phone},
		"updated":  map[string]any{"phone": phone},
	}, provenance)

	if svc.cache != nil {
		if err := svc.cache.Delete(ctx, userID); err != nil {
			logger.Log.Errorw("failed to invalidate profile cache", "user_id", userID, "err", err)
		}
	}

	return updated, nil
}

// GetAuditLogs returns the user's entries newest first, sliced by limit and
// offset, plus the total count. An absent user yields an empty list, not an
// error; log storage is independent of user existence.
func (svc *ProfileService) GetAuditLogs(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, int, error) {
	if limit <= 0 {
		limit = defaultLogPage
	}
	if offset < 0 {
		offset = 0
	}

	logs, err := svc.auditReader.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}

	total, err := svc.auditReader.CountByUserID(ctx, userID)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}

	return logs, total, nil
}

// DeleteProfile removes the user, its credential and every audit entry, and
// drops the cached profile.
func (svc *ProfileService) DeleteProfile(ctx context.Context, userID string) error {
	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", userID, "err", err)
		return apperrors.Internal(err)
	}
	if user == nil {
		return apperrors.NotFound("User not found")
	}

	deleted, err := svc.writer.Delete(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "user_id", userID, "err", err)
		return apperrors.Internal(err)
	}
	if !deleted {
		return apperrors.NotFound("User not found")
	}

	if err := svc.auditWriter.DeleteByUserID(ctx, userID); err != nil {
		logger.Log.Errorw("failed to erase audit logs", "user_id", userID, "err", err)
		return apperrors.Internal(err)
	}

	if svc.cache != nil {
		if err := svc.cache.Delete(ctx, userID); err != nil {
			logger.Log.Errorw("failed to invalidate profile cache", "user_id", userID, "err", err)
		}
	}

	return nil
}

// LogAuditAction appends an audit entry. It never fails the caller: append
// errors are logged and swallowed. When a kafka writer is configured the
// entry is also published, synchronously and best-effort.
func (svc *ProfileService) LogAuditAction(ctx context.Context, userID, action string, details models.Details, provenance *models.Provenance) {
	entry, err := svc.auditWriter.Append(ctx, userID, action, details, provenance)
	if err != nil {
		logger.Log.Errorw("failed to append audit entry", "user_id", userID, "action", action, "err", err)
		return
	}

	svc.publishAuditEvent(ctx, entry)
}

// publishAuditEvent mirrors an audit entry to Kafka.
func (svc *ProfileService) publishAuditEvent(ctx context.Context, entry *models.AuditLog) {
	if svc.kafkaWriter == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Errorw("failed to marshal audit entry for Kafka", "audit_id", entry.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(entry.UserID),
		Value: data,
	}

	if err := svc.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish audit entry to Kafka", "audit_id", entry.ID, "error", err)
	}
}

// RevokeAllSessions writes a logout marker to the audit log. No token is
// invalidated: there is no session store, so previously issued tokens stay
// valid until expiry.
func (svc *ProfileService) RevokeAllSessions(ctx context.Context, userID string, provenance *models.Provenance) {
	svc.LogAuditAction(ctx, userID, models.AuditActionLogout, models.Details{
		"action":    "all_sessions_revoked",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, provenance)
}

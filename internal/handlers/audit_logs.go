package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/middlewares"
	"github.com/taleik/taleik-api/internal/models"
)

// AuditLogsGetter defines the audit-log read operation.
type AuditLogsGetter interface {
	GetAuditLogs(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, int, error)
}

// AuditLogsResponse represents an audit-log page
// swagger:model AuditLogsResponse
type AuditLogsResponse struct {
	UserID     string             `json:"userId,omitempty"`
	Logs       []models.AuditLog  `json:"logs"`
	Pagination *models.Pagination `json:"pagination"`
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit, offset = 50, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// NewGetAuditLogsHandler returns an HTTP handler for the authenticated
// user's own audit log.
// @Summary Get own audit logs
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page start" default(0)
// @Success 200 {object} models.APIResponse "Audit log page"
// @Router /api/profile/audit-logs [get]
func NewGetAuditLogsHandler(svc AuditLogsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			respondError(w, apperrors.Unauthorized("Access token is required"))
			return
		}

		limit, offset := paginationParams(r)

		logs, total, err := svc.GetAuditLogs(r.Context(), user.ID, limit, offset)
		if err != nil {
			respondError(w, err)
			return
		}

		respondSuccess(w, http.StatusOK, AuditLogsResponse{
			Logs:       logs,
			Pagination: &models.Pagination{Limit: limit, Offset: offset, Total: total},
		}, "Audit logs retrieved")
	}
}

// NewGetUserAuditLogsHandler returns an HTTP handler for reading another
// user's audit log. The router must gate it behind the admin/support roles.
// @Summary Get a user's audit logs
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User id"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page start" default(0)
// @Success 200 {object} models.APIResponse "Audit log page"
// @Failure 403 {object} models.APIResponse "Insufficient permissions"
// @Router /api/profile/{userId}/audit-logs [get]
func NewGetUserAuditLogsHandler(svc AuditLogsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		limit, offset := paginationParams(r)

		logs, total, err := svc.GetAuditLogs(r.Context(), userID, limit, offset)
		if err != nil {
			respondError(w, err)
			return
		}

		respondSuccess(w, http.StatusOK, AuditLogsResponse{
			UserID:     userID,
			Logs:       logs,
			Pagination: &models.Pagination{Limit: limit, Offset: offset, Total: total},
		}, "User audit logs retrieved")
	}
}

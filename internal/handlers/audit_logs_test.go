package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taleik/taleik-api/internal/middlewares"
	"github.com/taleik/taleik-api/internal/models"
)

func TestGetAuditLogsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockAuditLogsGetter(ctrl)

	user := &models.User{ID: "u-1", Status: models.StatusActive}
	logs := []models.AuditLog{{ID: "a-2", UserID: "u-1"}, {ID: "a-1", UserID: "u-1"}}

	mockSvc.EXPECT().GetAuditLogs(gomock.Any(), "u-1", 10, 5).Return(logs, 12, nil)

	rec := httptest.NewRecorder()
	NewGetAuditLogsHandler(mockSvc).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/profile/audit-logs?limit=10&offset=5", nil, user))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Data    AuditLogsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Audit logs retrieved", resp.Message)
	assert.Empty(t, resp.Data.UserID)
	assert.Len(t, resp.Data.Logs, 2)
	require.NotNil(t, resp.Data.Pagination)
	assert.Equal(t, 10, resp.Data.Pagination.Limit)
	assert.Equal(t, 5, resp.Data.Pagination.Offset)
	assert.Equal(t, 12, resp.Data.Pagination.Total)
}

func TestGetAuditLogsHandler_DefaultPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockAuditLogsGetter(ctrl)

	user := &models.User{ID: "u-1", Status: models.StatusActive}

	// Missing, garbage and non-positive values all fall back to 50/0.
	for _, query := range []string{"", "?limit=abc&offset=xyz", "?limit=0&offset=-5"} {
		mockSvc.EXPECT().GetAuditLogs(gomock.Any(), "u-1", 50, 0).Return([]models.AuditLog{}, 0, nil)

		rec := httptest.NewRecorder()
		NewGetAuditLogsHandler(mockSvc).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/profile/audit-logs"+query, nil, user))

		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestGetAuditLogsHandler_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := httptest.NewRecorder()
	NewGetAuditLogsHandler(NewMockAuditLogsGetter(ctrl)).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/profile/audit-logs", nil, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserAuditLogsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockAuditLogsGetter(ctrl)

	logs := []models.AuditLog{{ID: "a-1", UserID: "u-target"}}
	mockSvc.EXPECT().GetAuditLogs(gomock.Any(), "u-target", 50, 0).Return(logs, 1, nil)

	admin := &models.User{ID: "u-admin", Roles: models.Roles{models.RoleAdmin}, Status: models.StatusActive}

	router := chi.NewRouter()
	router.Get("/api/profile/{userId}/audit-logs", NewGetUserAuditLogsHandler(mockSvc))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/profile/u-target/audit-logs", nil, admin))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Data    AuditLogsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User audit logs retrieved", resp.Message)
	assert.Equal(t, "u-target", resp.Data.UserID)
	assert.Len(t, resp.Data.Logs, 1)
	assert.Equal(t, 1, resp.Data.Pagination.Total)
}

func TestGetUserAuditLogsHandler_RoleGate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockAuditLogsGetter(ctrl)
	mockSvc.EXPECT().GetAuditLogs(gomock.Any(), "u-target", 50, 0).Return([]models.AuditLog{}, 0, nil).Times(2)

	router := chi.NewRouter()
	router.Route("/api/profile", func(r chi.Router) {
		r.With(middlewares.RequireRoles(models.RoleAdmin, models.RoleSupport)).
			Get("/{userId}/audit-logs", NewGetUserAuditLogsHandler(mockSvc))
	})

	tests := []struct {
		name         string
		user         *models.User
		expectedCode int
	}{
		{"admin allowed", &models.User{ID: "u-a", Roles: models.Roles{models.RoleAdmin}, Status: models.StatusActive}, http.StatusOK},
		{"support allowed", &models.User{ID: "u-s", Roles: models.Roles{models.RoleSupport}, Status: models.StatusActive}, http.StatusOK},
		{"buyer forbidden", &models.User{ID: "u-b", Roles: models.Roles{models.RoleBuyer}, Status: models.StatusActive}, http.StatusForbidden},
		{"no identity", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/profile/u-target/audit-logs", nil, tt.user))
			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taleik/taleik-api/internal/jwt"
	"github.com/taleik/taleik-api/internal/middlewares"
	"github.com/taleik/taleik-api/internal/models"
	"github.com/taleik/taleik-api/internal/repositories"
	"github.com/taleik/taleik-api/internal/services"
)

// newTestAPI wires real services over an in-memory store, mirroring the
// production router.
func newTestAPI(t *testing.T) (chi.Router, *sqlx.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repositories.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	auditReadRepo := repositories.NewAuditLogReadRepository(db)
	auditWriteRepo := repositories.NewAuditLogWriteRepository(db)
	todoRepo := repositories.NewTodoRepository(db)

	tokens := jwt.New("test-secret", time.Hour)

	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokens, auditWriteRepo)
	profileService := services.NewProfileService(userReadRepo, userWriteRepo, auditWriteRepo, auditReadRepo, nil, nil)
	todoService := services.NewTodoService(todoRepo)

	authenticate := middlewares.Authenticate(tokens, authService)

	r := chi.NewRouter()

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", NewRegisterHandler(authService))
		r.Post("/login", NewLoginHandler(authService))

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", NewMeHandler())
			r.Put("/change-password", NewChangePasswordHandler(authService))
			r.Post("/logout", NewLogoutHandler(profileService))
		})
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", NewGetProfileHandler(profileService))
		r.Put("/", NewUpdateProfileHandler(profileService))
		r.Delete("/", NewDeleteProfileHandler(profileService))
		r.Get("/audit-logs", NewGetAuditLogsHandler(profileService))

		r.With(middlewares.RequireRoles(models.RoleAdmin, models.RoleSupport)).
			Get("/{userId}/audit-logs", NewGetUserAuditLogsHandler(profileService))
	})

	r.Route("/api/todos", func(r chi.Router) {
		r.Get("/", NewListTodosHandler(todoService))
		r.Post("/", NewCreateTodoHandler(todoService))
		r.Get("/{id}", NewGetTodoHandler(todoService))
		r.Put("/{id}", NewUpdateTodoHandler(todoService))
		r.Delete("/{id}", NewDeleteTodoHandler(todoService))
	})

	return r, db
}

func doJSON(t *testing.T, router chi.Router, method, target, token string, payload any) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		body = &bytes.Buffer{}
		require.NoError(t, json.NewEncoder(body).Encode(payload))
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return rec, resp
}

func registerUser(t *testing.T, router chi.Router, email, password string) (string, string) {
	t.Helper()

	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", RegisterRequest{Email: email, Password: password})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			User  models.User `json:"user"`
			Token string      `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)

	return resp.Data.User.ID, resp.Data.Token
}

func TestAPI_RegisterLoginMe(t *testing.T) {
	router, _ := newTestAPI(t)

	userID, token := registerUser(t, router, "alice@example.com", "password123")

	// The registration token works immediately.
	rec, resp := doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	// Login issues a fresh token for the same user.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var loginResp struct {
		Data struct {
			User  models.User `json:"user"`
			Token string      `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	assert.Equal(t, userID, loginResp.Data.User.ID)

	// Duplicate registration fails.
	rec, resp = doJSON(t, router, http.MethodPost, "/api/auth/register", "", RegisterRequest{Email: "alice@example.com", Password: "password123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists with this email", resp.Error)

	// No token at all.
	rec, resp = doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token is required", resp.Error)

	// Garbage token.
	rec, resp = doJSON(t, router, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", resp.Error)
}

func TestAPI_ChangePasswordFlow(t *testing.T) {
	router, _ := newTestAPI(t)

	_, token := registerUser(t, router, "alice@example.com", "password123")

	rec, resp := doJSON(t, router, http.MethodPut, "/api/auth/change-password", token,
		ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword456"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password changed successfully", resp.Message)

	// Old password no longer works.
	rec, resp = doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "alice@example.com", Password: "password123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", resp.Error)

	// New password does.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "alice@example.com", Password: "newpassword456"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// The pre-change token stays valid until expiry.
	rec, _ = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_AuditTrail(t *testing.T) {
	router, _ := newTestAPI(t)

	_, token := registerUser(t, router, "alice@example.com", "password123")

	// Login and a profile update both leave entries.
	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	phone := "+15551234567"
	rec, _ = doJSON(t, router, http.MethodPut, "/api/profile", token, UpdateProfileRequest{Phone: &phone})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/profile/audit-logs", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data AuditLogsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Logs, 2)
	// Newest first: the profile update precedes the login in the list.
	assert.Equal(t, models.AuditActionProfileUpdated, resp.Data.Logs[0].Action)
	assert.Equal(t, models.AuditActionLogin, resp.Data.Logs[1].Action)
	assert.Equal(t, 2, resp.Data.Pagination.Total)
}

func TestAPI_AdminAuditAccess(t *testing.T) {
	router, db := newTestAPI(t)

	targetID, _ := registerUser(t, router, "buyer@example.com", "password123")
	_, buyerToken := registerUser(t, router, "other@example.com", "password123")

	// Grant roles directly in the store. Token verification re-reads the
	// user, so existing tokens pick the roles up immediately.
	adminID, adminToken := registerUser(t, router, "admin@example.com", "password123")
	_, err := db.Exec(`UPDATE users SET roles = ? WHERE id = ?`, models.Roles{models.RoleBuyer, models.RoleAdmin}, adminID)
	require.NoError(t, err)

	supportID, supportToken := registerUser(t, router, "support@example.com", "password123")
	_, err = db.Exec(`UPDATE users SET roles = ? WHERE id = ?`, models.Roles{models.RoleSupport}, supportID)
	require.NoError(t, err)

	// Buyers cannot read another user's audit log.
	rec, resp := doJSON(t, router, http.MethodGet, "/api/profile/"+targetID+"/audit-logs", buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Insufficient permissions", resp.Error)

	// Admin and support can.
	rec, resp = doJSON(t, router, http.MethodGet, "/api/profile/"+targetID+"/audit-logs", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User audit logs retrieved", resp.Message)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/profile/"+targetID+"/audit-logs", supportToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// An unknown target user yields an empty page, not an error.
	rec, _ = doJSON(t, router, http.MethodGet, "/api/profile/no-such-user/audit-logs", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Data AuditLogsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Data.Logs)
	assert.Equal(t, 0, page.Data.Pagination.Total)

	// Without a token the gate answers 401 before the role check.
	rec, resp = doJSON(t, router, http.MethodGet, "/api/profile/"+targetID+"/audit-logs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token is required", resp.Error)
}

func TestAPI_DeleteProfileCascades(t *testing.T) {
	router, _ := newTestAPI(t)

	_, token := registerUser(t, router, "alice@example.com", "password123")

	rec, resp := doJSON(t, router, http.MethodDelete, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Profile deleted successfully", resp.Message)

	// The token maps to a user that no longer exists.
	rec, resp = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", resp.Error)

	// Login is gone too.
	rec, resp = doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "alice@example.com", Password: "password123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", resp.Error)
}

func TestAPI_TodoLifecycle(t *testing.T) {
	router, _ := newTestAPI(t)

	// Todos need no authentication.
	rec, _ := doJSON(t, router, http.MethodPost, "/api/todos", "", CreateTodoRequest{Title: "buy milk"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data models.Todo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.ID

	rec, _ = doJSON(t, router, http.MethodPut, "/api/todos/"+id, "", map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/todos/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Data models.Todo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Data.Completed)

	rec, resp := doJSON(t, router, http.MethodDelete, "/api/todos/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Todo deleted successfully", resp.Message)

	rec, resp = doJSON(t, router, http.MethodGet, "/api/todos/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Todo not found", resp.Error)
}

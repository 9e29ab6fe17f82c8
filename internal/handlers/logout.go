package handlers

import (
	"context"
	"net/http"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/middlewares"
	"github.com/taleik/taleik-api/internal/models"
)

// SessionsRevoker defines the interface that the logout flow must implement.
type SessionsRevoker interface {
	RevokeAllSessions(ctx context.Context, userID string, provenance *models.Provenance)
}

// NewLogoutHandler returns an HTTP handler for logout. Tokens are stateless,
// so this only writes an audit marker; clients discard the token themselves.
// @Summary Logout
// @Description Records a logout audit marker. No token is invalidated server-side.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "Logout recorded"
// @Failure 401 {object} models.APIResponse "Missing or invalid token"
// @Router /api/auth/logout [post]
func NewLogoutHandler(svc SessionsRevoker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			respondError(w, apperrors.Unauthorized("Access token is required"))
			return
		}

		svc.RevokeAllSessions(r.Context(), user.ID, provenanceFromRequest(r))

		respondSuccess(w, http.StatusOK, nil, "Logout successful")
	}
}

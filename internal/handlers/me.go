package handlers

import (
	"net/http"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/middlewares"
)

// NewMeHandler returns an HTTP handler serving the authenticated user's
// record as resolved by the auth middleware.
// @Summary Current user
// @Description Returns the profile of the token's owner.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "User profile"
// @Failure 401 {object} models.APIResponse "Missing or invalid token"
// @Router /api/auth/me [get]
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			respondError(w, apperrors.Unauthorized("Access token is required"))
			return
		}

		respondSuccess(w, http.StatusOK, user, "User profile retrieved")
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/middlewares"
	"github.com/taleik/taleik-api/internal/models"
)

// PasswordChanger defines the interface that the password change service must implement.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string, provenance *models.Provenance) error
}

// ChangePasswordRequest represents the JSON body for a password change
// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	// Current password
	// required: true
	CurrentPassword string `json:"currentPassword"`

	// New password, at least 8 characters
	// required: true
	NewPassword string `json:"newPassword"`
}

// NewChangePasswordHandler returns an HTTP handler for password changes.
// Previously issued tokens stay valid until expiry.
// @Summary Change password
// @Description Verifies the current password and stores a new hash.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param changePasswordRequest body handlers.ChangePasswordRequest true "Password change request"
// @Success 200 {object} models.APIResponse "Password changed"
// @Failure 400 {object} models.APIResponse "Wrong current password or new password too short"
// @Failure 404 {object} models.APIResponse "User no longer exists"
// @Router /api/auth/change-password [put]
func NewChangePasswordHandler(svc PasswordChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			respondError(w, apperrors.Unauthorized("Access token is required"))
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, apperrors.InvalidInput("Invalid request body"))
			return
		}

		if err := svc.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword, provenanceFromRequest(r)); err != nil {
			respondError(w, err)
			return
		}

		respondSuccess(w, http.StatusOK, nil, "Password changed successfully")
	}
}

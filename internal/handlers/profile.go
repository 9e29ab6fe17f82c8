package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/middlewares"
	"github.com/taleik/taleik-api/internal/models"
)

// ProfileGetter defines the profile read operation.
type ProfileGetter interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

// ProfileUpdater defines the profile update operation.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, userID string, phone *string, provenance *models.Provenance) (*models.User, error)
}

// ProfileDeleter defines the profile delete operation.
type ProfileDeleter interface {
	DeleteProfile(ctx context.Context, userID string) error
}

// UpdateProfileRequest represents the JSON body for a profile update
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	// Phone, international number
	// default: +15551234567
	Phone *string `json:"phone,omitempty"`
}

// NewGetProfileHandler returns an HTTP handler for reading the
// authenticated user's profile.
// @Summary Get profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "Profile"
// @Failure 401 {object} models.APIResponse "Missing or invalid token"
// @Router /api/profile [get]
func NewGetProfileHandler(svc ProfileGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			respondError(w, apperrors.Unauthorized("Access token is required"))
			return
		}

		profile, err := svc.GetProfile(r.Context(), user.ID)
		if err != nil {
			respondError(w, err)
			return
		}

		respondSuccess(w, http.StatusOK, profile, "Profile retrieved")
	}
}

// NewUpdateProfileHandler returns an HTTP handler for profile updates.
// @Summary Update profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param updateProfileRequest body handlers.UpdateProfileRequest true "Profile update request"
// @Success 200 {object} models.APIResponse "Updated profile"
// @Failure 400 {object} models.APIResponse "Invalid phone number format"
// @Router /api/profile [put]
func NewUpdateProfileHandler(svc ProfileUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			respondError(w, apperrors.Unauthorized("Access token is required"))
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, apperrors.InvalidInput("Invalid request body"))
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), user.ID, req.Phone, provenanceFromRequest(r))
		if err != nil {
			respondError(w, err)
			return
		}

		respondSuccess(w, http.StatusOK, updated, "Profile updated successfully")
	}
}

// NewDeleteProfileHandler returns an HTTP handler for profile deletion.
// Deletion cascades: credential and audit entries go with the user.
// @Summary Delete profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "Profile deleted"
// @Failure 404 {object} models.APIResponse "User no longer exists"
// @Router /api/profile [delete]
func NewDeleteProfileHandler(svc ProfileDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			respondError(w, apperrors.Unauthorized("Access token is required"))
			return
		}

		if err := svc.DeleteProfile(r.Context(), user.ID); err != nil {
			respondError(w, err)
			return
		}

		respondSuccess(w, http.StatusOK, nil, "Profile deleted successfully")
	}
}

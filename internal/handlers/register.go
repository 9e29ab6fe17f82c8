package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/models"
)

// Registerer defines the interface that the registration service must implement.
type Registerer interface {
	Register(ctx context.Context, email, password string, phone *string) (*models.User, string, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password, at least 8 characters
	// required: true
	// default: password123
	Password string `json:"password"`

	// Phone, optional international number
	// default: +15551234567
	Phone *string `json:"phone,omitempty"`
}

// AuthResponse represents a successful registration or login payload
// swagger:model AuthResponse
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new active user with the buyer role. Rejects malformed emails, short passwords and duplicate emails.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} models.APIResponse "User registered, token issued"
// @Failure 400 {object} models.APIResponse "Invalid email/password or duplicate email"
// @Router /api/auth/register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, apperrors.InvalidInput("Invalid request body"))
			return
		}

		user, token, err := svc.Register(r.Context(), req.Email, req.Password, req.Phone)
		if err != nil {
			respondError(w, err)
			return
		}

		respondSuccess(w, http.StatusCreated, AuthResponse{User: user, Token: token}, "User registered successfully")
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/models"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string, provenance *models.Provenance) (*models.User, string, error)
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: password123
	Password string `json:"password"`
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Authenticate a user and return a bearer token. Unknown email and wrong password share one error message.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login request"
// @Success 200 {object} models.APIResponse "Token issued"
// @Failure 401 {object} models.APIResponse "Invalid credentials or inactive account"
// @Router /api/auth/login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, apperrors.InvalidInput("Invalid request body"))
			return
		}

		user, token, err := svc.Login(r.Context(), req.Email, req.Password, provenanceFromRequest(r))
		if err != nil {
			respondError(w, err)
			return
		}

		respondSuccess(w, http.StatusOK, AuthResponse{User: user, Token: token}, "Login successful")
	}
}

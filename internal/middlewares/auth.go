package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/models"
)

// TokenExtractor pulls the bearer token out of a request.
type TokenExtractor interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// TokenVerifier resolves a token to its live user; nil means invalid.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) *models.User
}

// userKey is an unexported type for the identity context key.
type userKey struct{}

// SetUserToContext stores the resolved identity in the context.
func SetUserToContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext retrieves the resolved identity. Returns nil if the
// request was not authenticated.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey{}).(*models.User)
	return user
}

// deny writes the standard error envelope for an access-control failure.
func deny(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	json.NewEncoder(w).Encode(models.APIResponse{Success: false, Error: appErr.Message})
}

// Authenticate returns a middleware that requires a valid bearer token and
// injects the resolved user into the request context.
func Authenticate(extractor TokenExtractor, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, err := extractor.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				deny(w, apperrors.Unauthorized("Access token is required"))
				return
			}

			user := verifier.VerifyToken(ctx, token)
			if user == nil {
				deny(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(SetUserToContext(ctx, user)))
		})
	}
}

// RequireRoles returns a middleware that rejects authenticated identities
// whose role set has no intersection with allowed. It must run after
// Authenticate.
func RequireRoles(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				deny(w, apperrors.Unauthorized("Authentication required"))
				return
			}

			for _, role := range allowed {
				if user.Roles.Contains(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			deny(w, apperrors.Forbidden("Insufficient permissions"))
		})
	}
}

// OptionalAuth resolves the identity when a valid token is present but never
// fails the request; absence or invalidity simply leaves identity unset.
func OptionalAuth(extractor TokenExtractor, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, err := extractor.GetTokenFromRequest(ctx, r); err == nil {
				if user := verifier.VerifyToken(ctx, token); user != nil {
					r = r.WithContext(SetUserToContext(ctx, user))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

package services

import (
	"context"
	"net/http"
	"regexp"

	"github.com/taleik/taleik-api/internal/apperrors"
	"github.com/taleik/taleik-api/internal/jwt"
	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/models"
	"github.com/taleik/taleik-api/internal/password"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserReader defines read-only operations for users and credentials.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetPasswordHash(ctx context.Context, userID string) (string, error)
}

// UserWriter defines write operations for users and credentials.
type UserWriter interface {
	Create(ctx context.Context, email string, phone *string, roles models.Roles, mfaEnabled bool, status string, passwordHash string) (*models.User, error)
	Update(ctx context.Context, id string, phone *string) (*models.User, error)
	SetPasswordHash(ctx context.Context, userID string, hash string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// TokenGenerator issues and parses bearer tokens.
type TokenGenerator interface {
	Generate(ctx context.Context, user *models.User) (string, error)
	Parse(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// AuditLogWriter appends and erases audit entries.
type AuditLogWriter interface {
	Append(ctx context.Context, userID, action string, details models.Details, provenance *models.Provenance) (*models.AuditLog, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// AuthService handles registration, login, token verification and password
// changes.
type AuthService struct {
	reader UserReader
	writer UserWriter
	jwt    TokenGenerator
	audit  AuditLogWriter
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt TokenGenerator, audit AuditLogWriter) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
		audit:  audit,
	}
}

// Register creates a new active user with the buyer role and returns it
// together with a fresh token. Email uniqueness is checked here; the store
// performs no check of its own.
func (svc *AuthService) Register(ctx context.Context, email, pass string, phone *string) (*models.User, string, error) {
	if email == "" || pass == "" {
		return nil, "", apperrors.InvalidInput("Email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, "", apperrors.InvalidInput("Invalid email format")
	}
	if len(pass) < 8 {
		return nil, "", apperrors.InvalidInput("Password must be at least 8 characters long")
	}

	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, "", apperrors.Internal(err)
	}
	if existing != nil {
		return nil, "", apperrors.Conflict("User already exists with this email")
	}

	hash, err := password.Hash(pass)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, "", apperrors.Internal(err)
	}

	user, err := svc.writer.Create(ctx, email, phone, models.Roles{models.RoleBuyer}, false, models.StatusActive, hash)
	if err != nil {
		logger.Log.Errorw("failed to create user", "err", err)
		return nil, "", apperrors.Internal(err)
	}

	token, err := svc.jwt.Generate(ctx, user)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return nil, "", apperrors.Internal(err)
	}

	return user, token, nil
}

// Login authenticates a user and returns it with a fresh token. Unknown
// email and wrong password share one message so accounts cannot be
// enumerated.
func (svc *AuthService) Login(ctx context.Context, email, pass string, provenance *models.Provenance) (*models.User, string, error) {
	if email == "" || pass == "" {
		return nil, "", apperrors.InvalidInput("Email and password are required")
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, "", apperrors.Internal(err)
	}
	if user == nil {
		return nil, "", apperrors.Unauthorized("Invalid credentials")
	}

	hash, err := svc.reader.GetPasswordHash(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to get password hash", "user_id", user.ID, "err", err)
		return nil, "", apperrors.Internal(err)
	}
	if hash == "" || !password.Verify(pass, hash) {
		return nil, "", apperrors.Unauthorized("Invalid credentials")
	}

	if user.Status != models.StatusActive {
		return nil, "", apperrors.Unauthorized("Account is suspended or pending activation")
	}

	token, err := svc.jwt.Generate(ctx, user)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return nil, "", apperrors.Internal(err)
	}

	if _, err := svc.audit.Append(ctx, user.ID, models.AuditActionLogin, models.Details{"email": user.Email}, provenance); err != nil {
		logger.Log.Errorw("failed to append login audit entry", "user_id", user.ID, "err", err)
	}

	return user, token, nil
}

// VerifyToken resolves a bearer token to its live user. Bad signature,
// expiry, a missing user and a non-active user all collapse into one nil
// result, so callers cannot distinguish the causes.
func (svc *AuthService) VerifyToken(ctx context.Context, token string) *models.User {
	claims, err := svc.jwt.Parse(ctx, token)
	if err != nil {
		return nil
	}

	user, err := svc.reader.GetByID(ctx, claims.UserID)
	if err != nil || user == nil || user.Status != models.StatusActive {
		return nil
	}

	return user
}

// ChangePassword verifies the current password and persists a new hash.
// Previously issued tokens stay valid until natural expiry; there is no
// revocation state to consult.
func (svc *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string, provenance *models.Provenance) error {
	if len(newPassword) < 8 {
		return apperrors.InvalidInput("Password must be at least 8 characters long")
	}

	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", userID, "err", err)
		return apperrors.Internal(err)
	}
	if user == nil {
		return apperrors.NotFound("User not found")
	}

	hash, err := svc.reader.GetPasswordHash(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get password hash", "user_id", userID, "err", err)
		return apperrors.Internal(err)
	}
	if hash == "" {
		return apperrors.NewAppError(http.StatusInternalServerError, "Invalid user state", nil)
	}

	if !password.Verify(currentPassword, hash) {
		return apperrors.InvalidInput("Current password is incorrect")
	}

	newHash, err := password.Hash(newPassword)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return apperrors.Internal(err)
	}

	if _, err := svc.writer.SetPasswordHash(ctx, userID, newHash); err != nil {
		logger.Log.Errorw("failed to set password hash", "user_id", userID, "err", err)
		return apperrors.Internal(err)
	}

	if _, err := svc.audit.Append(ctx, userID, models.AuditActionPasswordChanged, models.Details{}, provenance); err != nil {
		logger.Log.Errorw("failed to append password change audit entry", "user_id", userID, "err", err)
	}

	return nil
}

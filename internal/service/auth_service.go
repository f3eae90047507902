package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/road-damage-service/internal/auth"
	"github.com/spec-kit/road-damage-service/internal/config"
	"github.com/spec-kit/road-damage-service/internal/domain"
	"github.com/spec-kit/road-damage-service/internal/repository"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

// AuthService coordinates registration, credential verification and the
// session lifecycle.
type AuthService struct {
	users      repository.UserRepository
	sessions   auth.SessionStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies bundles requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	SessionStore auth.SessionStore
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Phone    *string
	Password string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionStore,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new citizen account with role=user. Duplicate
// usernames and emails fail with Conflict.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Username == "" || input.Email == "" || input.FullName == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("username, email, full_name, password required", nil)
	}
	if !strings.Contains(input.Email, "@") {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.NewConflict("username already registered", map[string]any{"field": "username"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		Phone:        input.Phone,
		Role:         domain.RoleUser,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// unique violation on a concurrent registration still maps to Conflict
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Verify checks credentials. Unknown usernames and wrong passwords return
// the same error, and both paths pay the bcrypt cost so timing does not
// leak which one happened.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = auth.CompareDummy(password)
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.Verify(ctx, username, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, expiresAt, err := s.Issue(ctx, user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Issue creates a session bound to the user's current role and returns the
// bearer token. The role inside the token stays fixed for the token's
// lifetime even if the account's role changes afterwards.
func (s *AuthService) Issue(ctx context.Context, user *domain.User) (string, time.Time, error) {
	now := time.Now()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokenMgr.TTL()),
	}
	if err := s.sessions.Put(ctx, session.ID, session.UserID, s.tokenMgr.TTL()); err != nil {
		return "", time.Time{}, apperrors.NewStorageUnavailable(err)
	}
	token, err := s.tokenMgr.GenerateToken(session)
	if err != nil {
		return "", time.Time{}, apperrors.MapError(err)
	}
	return token, session.ExpiresAt, nil
}

// Resolve maps a bearer token back to its user, or Unauthenticated when
// the token is missing, malformed, expired or revoked.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, *domain.Principal, error) {
	if token == "" {
		return nil, nil, apperrors.NewUnauthenticated("missing token")
	}
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, nil, apperrors.NewUnauthenticated("invalid token")
	}
	active, err := s.sessions.Active(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, apperrors.NewStorageUnavailable(err)
	}
	if !active {
		return nil, nil, apperrors.NewUnauthenticated("session expired or revoked")
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthenticated("user not found")
		}
		return nil, nil, apperrors.MapError(err)
	}
	principal := &domain.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     claims.Role,
	}
	return user, principal, nil
}

// Revoke ends the session behind the token immediately. Unknown or garbled
// tokens are a no-op, which makes logout idempotent.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
		return apperrors.NewStorageUnavailable(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// EnsureBootstrapAdmin seeds the configured admin account when it does not
// exist yet. Seeding is skipped entirely when no password is configured.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) (*domain.User, error) {
	if cfg.AdminPassword == "" || cfg.AdminUsername == "" {
		return nil, nil
	}
	if existing, err := s.users.GetByUsername(ctx, cfg.AdminUsername); err == nil {
		return existing, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	admin := &domain.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		FullName:     cfg.AdminFullName,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, apperrors.MapError(err)
	}
	return admin, nil
}

package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/road-damage-service/internal/domain"
	"github.com/spec-kit/road-damage-service/internal/repository"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads principals. A token is
// admitted only when its signature checks out, its session id is still
// live, and the user it names still exists.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions SessionStore
	users    repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions SessionStore, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	active, err := m.sessions.Active(c.UserContext(), claims.SessionID)
	if err != nil {
		return apperrors.NewStorageUnavailable(err)
	}
	if !active {
		return apperrors.NewUnauthenticated("session expired or revoked")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &domain.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     claims.Role,
	})
	return c.Next()
}

// RequireCapability rejects principals lacking the capability before the
// handler runs.
func RequireCapability(required Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if err := Authorize(principal, required); err != nil {
			return err
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/road-damage-service/internal/api/dto"
	"github.com/spec-kit/road-damage-service/internal/domain"
	"github.com/spec-kit/road-damage-service/internal/service"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

// AuthHandler exposes registration, login, logout and token verification.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, token, expiresAt, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}

// Logout handles POST /auth/logout. Revoking an already-dead token still
// succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Revoke(c.UserContext(), bearerToken(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"revoked": true}})
}

// Verify handles POST /auth/verify: resolves the presented token to its
// user, for clients restoring a stored session.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	user, _, err := h.auth.Resolve(c.UserContext(), bearerToken(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": userResponse(user)}})
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Phone:    user.Phone,
		Role:     string(user.Role),
	}
}

package auth

import (
	authsvc "digital-advisor/internal/auth"
	"digital-advisor/internal/middleware"
	"digital-advisor/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *authsvc.Service
}

// Register POST /auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in authsvc.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid input", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Register(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "User registered successfully", fiber.Map{
		"user": fiber.Map{
			"user_id":  user.UserID,
			"username": user.Username,
			"email":    user.Email,
		},
	}, nil)
}

// Login POST /auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in authsvc.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid input", fiber.StatusBadRequest, nil)
	}
	token, err := h.Service.Login(c.UserContext(), in)
	if err != nil {
		log.Info().Str("path", c.Path()).Str("username", in.Username).Err(err).Msg("login rejected")
		return response.FromError(c, err)
	}
	return response.Success(c, "Login successful", token, nil)
}

// Me GET /auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	profile, err := h.Service.Me(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Authenticated", profile, nil)
}

// Logout DELETE /auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if err := h.Service.Logout(c.UserContext(), middleware.GetClaims(c)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Logged out successfully", nil, nil)
}

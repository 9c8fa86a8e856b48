package middleware

import (
	"context"
	"strings"

	"digital-advisor/internal/auth"
	"digital-advisor/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	userIDLocal = "user_id"
	claimsLocal = "claims"
)

// Authenticator verifies a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*auth.Claims, error)
}

// RequireAuth ensures a valid, unrevoked bearer token. Returns 401 with the
// standard error format otherwise.
func RequireAuth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return response.Unauthorized(c, "Missing Authorization Header")
		}
		claims, err := a.Authenticate(c.UserContext(), strings.TrimSpace(raw))
		if err != nil {
			return response.FromError(c, err)
		}
		userID, err := claims.UserID()
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals(userIDLocal, userID)
		c.Locals(claimsLocal, claims)
		return c.Next()
	}
}

// GetUserID returns the authenticated user id (false if not logged in).
func GetUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(userIDLocal).(uuid.UUID)
	return id, ok
}

// GetClaims returns the verified token claims (nil if not logged in).
func GetClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsLocal).(*auth.Claims)
	return claims
}

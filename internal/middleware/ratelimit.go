package middleware

import (
	"digital-advisor/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimit allows r requests per second with the given burst across all
// callers of the wrapped routes. Non-positive r disables the limit.
func RateLimit(r rate.Limit, burst int) fiber.Handler {
	if r <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	limiter := rate.NewLimiter(r, burst)
	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			return response.Error(c, "Too many requests. Please try again later.", fiber.StatusTooManyRequests, nil)
		}
		return c.Next()
	}
}

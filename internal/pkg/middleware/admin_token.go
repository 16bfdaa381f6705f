package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/streamnest-app/streamnest/internal/pkg/env"
)

// AdminTokenMiddleware guards the operator API with a static token. The
// middleware fails closed: with no token configured every request is denied.
func AdminTokenMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(env.GetEnv("ADMIN_API_TOKEN", ""))
		if token == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Admin API not configured"})
		}

		got := strings.TrimSpace(c.Get("X-Admin-Token"))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid admin token"})
		}

		return c.Next()
	}
}

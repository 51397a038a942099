package middleware

import (
	"log"
	"strings"

	"spellbook-system/services"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the Bearer token and attaches the caller's user ID.
// Handlers behind it can rely on c.Locals("user_id") being a non-empty string;
// no core logic ever runs for an unauthenticated request.
func AuthMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization header missing",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization header must be a Bearer token",
			})
		}

		userID, err := auth.ParseToken(token)
		if err != nil {
			log.Printf("🚫 [AUTH] invalid token for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

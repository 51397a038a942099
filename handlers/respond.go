// handlers/respond.go
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// serverError logs the underlying error and answers with a generic message.
// Driver and storage errors stay in the logs, never in the response body.
func serverError(c *fiber.Ctx, msg string, err error) error {
	log.Printf("❌ %s %s: %s: %v", c.Method(), c.Path(), msg, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

// handlers/talisman_routes.go
package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"spellbook-system/middleware"
	"spellbook-system/services"
	"spellbook-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupTalismanRoutes(app *fiber.App, authService *services.AuthService, talismanService *services.TalismanService) {
	api := app.Group("/api")

	// Catalog is public, like the rest of the reference data.
	api.Get("/talismans", func(c *fiber.Ctx) error {
		catalog, err := talismanService.ListCatalog()
		if err != nil {
			return serverError(c, "failed to list talismans", err)
		}
		return c.JSON(catalog)
	})

	// Idempotent catalog seed; an already-seeded catalog is left untouched.
	api.Post("/init-data", func(c *fiber.Ctx) error {
		seeded, err := talismanService.Seed()
		if err != nil {
			return serverError(c, "failed to seed talismans", err)
		}
		if seeded {
			return c.JSON(fiber.Map{"message": "talisman catalog seeded"})
		}
		return c.JSON(fiber.Map{"message": "data already present"})
	})

	authGuard := middleware.AuthMiddleware(authService)

	api.Get("/user/talismans", authGuard, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		unlocked, err := talismanService.ListForUser(userID)
		if err != nil {
			return serverError(c, "failed to list unlocked talismans", err)
		}
		return c.JSON(unlocked)
	})

	api.Post("/admin/talismans/:id/icon", authGuard, func(c *fiber.Ctx) error {
		if !utils.R2Enabled() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "icon storage is not configured",
			})
		}

		iconFile, err := c.FormFile("icon")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "icon file is required"})
		}
		if !strings.HasPrefix(iconFile.Header.Get("Content-Type"), "image/") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "icon must be an image"})
		}

		ext := filepath.Ext(iconFile.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := fmt.Sprintf("talismans/%s%s", uuid.NewString(), ext)

		iconURL, err := utils.UploadIconToR2(iconFile, key)
		if err != nil {
			return serverError(c, "icon upload failed", err)
		}

		if err := talismanService.SetIconURL(c.Params("id"), iconURL); err != nil {
			if errors.Is(err, services.ErrTalismanNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "talisman not found"})
			}
			return serverError(c, "failed to store icon url", err)
		}

		return c.JSON(fiber.Map{"iconUrl": iconURL})
	})
}

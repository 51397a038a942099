// handlers/spell_routes.go
package handlers

import (
	"errors"
	"time"

	"spellbook-system/middleware"
	"spellbook-system/models"
	"spellbook-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSpellRoutes(app *fiber.App, authService *services.AuthService, spellService *services.SpellService, progressionService *services.ProgressionService) {
	api := app.Group("/api")
	// Attached per-route: a group-level guard would mount on the whole /api
	// prefix and lock out the public catalog and leaderboard endpoints.
	authGuard := middleware.AuthMiddleware(authService)

	api.Post("/spells", authGuard, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Title       string            `json:"title"`
			Description string            `json:"description"`
			RepeatType  models.RepeatType `json:"repeatType"`
			XPReward    *int              `json:"xpReward"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
		}
		if !req.RepeatType.IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "repeatType must be DAILY or WEEKLY"})
		}
		reward := 10
		if req.XPReward != nil {
			if *req.XPReward < 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "xpReward must be non-negative"})
			}
			reward = *req.XPReward
		}

		spell, err := spellService.Create(userID, services.SpellCreate{
			Title:       req.Title,
			Description: req.Description,
			RepeatType:  req.RepeatType,
			XPReward:    reward,
		})
		if err != nil {
			return serverError(c, "failed to create spell", err)
		}
		return c.JSON(spell)
	})

	api.Get("/spells", authGuard, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		spells, err := spellService.ListForUser(userID)
		if err != nil {
			return serverError(c, "failed to list spells", err)
		}
		return c.JSON(spells)
	})

	api.Put("/spells/:id", authGuard, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Title       *string            `json:"title"`
			Description *string            `json:"description"`
			RepeatType  *models.RepeatType `json:"repeatType"`
			XPReward    *int               `json:"xpReward"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.RepeatType != nil && !req.RepeatType.IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "repeatType must be DAILY or WEEKLY"})
		}
		if req.XPReward != nil && *req.XPReward < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "xpReward must be non-negative"})
		}

		spell, err := spellService.Update(userID, c.Params("id"), services.SpellUpdate{
			Title:       req.Title,
			Description: req.Description,
			RepeatType:  req.RepeatType,
			XPReward:    req.XPReward,
		})
		if err != nil {
			if errors.Is(err, services.ErrSpellNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "spell not found"})
			}
			return serverError(c, "failed to update spell", err)
		}
		return c.JSON(spell)
	})

	api.Delete("/spells/:id", authGuard, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if err := spellService.Delete(userID, c.Params("id")); err != nil {
			if errors.Is(err, services.ErrSpellNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "spell not found"})
			}
			return serverError(c, "failed to delete spell", err)
		}
		return c.JSON(fiber.Map{"message": "spell deleted"})
	})

	api.Post("/spells/:id/complete", authGuard, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		result, err := progressionService.CompleteSpell(userID, c.Params("id"), time.Now())
		if err != nil {
			switch {
			case errors.Is(err, services.ErrSpellNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "spell not found"})
			case errors.Is(err, services.ErrDuplicateCompletion):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "spell already completed today"})
			default:
				return serverError(c, "failed to complete spell", err)
			}
		}

		return c.JSON(fiber.Map{
			"message":   "Spell completed!",
			"xpGained":  result.XPGained,
			"newXp":     result.NewXP,
			"newLevel":  result.NewLevel,
			"leveledUp": result.LeveledUp,
			"newStreak": result.NewStreak,
		})
	})
}

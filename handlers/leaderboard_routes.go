// handlers/leaderboard_routes.go
package handlers

import (
	"strconv"

	"spellbook-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	api := app.Group("/api")

	api.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))

		entries, err := leaderboardService.Top(c.Context(), limit)
		if err != nil {
			return serverError(c, "failed to load leaderboard", err)
		}
		if entries == nil {
			entries = []services.LeaderboardEntry{}
		}
		return c.JSON(entries)
	})
}

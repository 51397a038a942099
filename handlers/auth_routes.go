// handlers/auth_routes.go
package handlers

import (
	"errors"

	"spellbook-system/middleware"
	"spellbook-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, talismanService *services.TalismanService) {
	api := app.Group("/api")

	api.Post("/auth/register", func(c *fiber.Ctx) error {
		type Req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "username, email and password are required",
			})
		}

		user, token, err := authService.Register(req.Username, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrEmailTaken) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email already registered"})
			}
			return serverError(c, "registration failed", err)
		}

		return c.JSON(fiber.Map{"token": token, "user": user})
	})

	api.Post("/auth/login", func(c *fiber.Ctx) error {
		type Req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		user, token, err := authService.Login(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
			}
			return serverError(c, "login failed", err)
		}

		return c.JSON(fiber.Map{"token": token, "user": user})
	})

	authGuard := middleware.AuthMiddleware(authService)

	api.Get("/user/profile", authGuard, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		user, err := authService.GetUser(userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "user no longer exists"})
			}
			return serverError(c, "failed to load profile", err)
		}
		return c.JSON(user)
	})

	api.Get("/user/stats", authGuard, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		user, err := authService.GetUser(userID)
		if err != nil {
			return serverError(c, "failed to load stats", err)
		}
		unlocked, err := talismanService.CountForUser(userID)
		if err != nil {
			return serverError(c, "failed to count talismans", err)
		}

		return c.JSON(fiber.Map{
			"totalSpellsCompleted": user.TotalCompleted,
			"currentStreak":        user.CurrentStreak,
			"maxStreak":            user.MaxStreak,
			"xp":                   user.XP,
			"level":                user.Level,
			"unlockedTalismans":    unlocked,
		})
	})
}

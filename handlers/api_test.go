package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"spellbook-system/models"
	"spellbook-system/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Spell{},
		&models.SpellCompletion{},
		&models.Talisman{},
		&models.UserTalisman{},
	))

	authService := services.NewAuthService(db, "test-secret")
	spellService := services.NewSpellService(db)
	talismanService := services.NewTalismanService(db)
	progressionService := services.NewProgressionService(db, talismanService)
	leaderboardService := services.NewLeaderboardService(db, nil)

	_, err = talismanService.Seed()
	require.NoError(t, err)

	app := fiber.New()
	SetupAuthRoutes(app, authService, talismanService)
	SetupSpellRoutes(app, authService, spellService, progressionService)
	SetupTalismanRoutes(app, authService, talismanService)
	SetupLeaderboardRoutes(app, leaderboardService)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "merlin",
		"email":    "merlin@example.com",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, status)

	var registered struct {
		Token string `json:"token"`
		User  struct {
			Level int `json:"level"`
			XP    int `json:"xp"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &registered))
	assert.Equal(t, 1, registered.User.Level)
	assert.Zero(t, registered.User.XP)

	// the password hash must never leak
	assert.NotContains(t, string(body), "PasswordHash")
	assert.NotContains(t, string(body), "passwordHash")

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "merlin@example.com",
		"password": "hunter2",
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "merlin@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "imposter",
		"email":    "merlin@example.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/api/spells", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/user/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSpellCompletionFlow(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "merlin")

	status, body := doJSON(t, app, http.MethodPost, "/api/spells", token, fiber.Map{
		"title":      "Morning Meditation",
		"repeatType": "DAILY",
		"xpReward":   15,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var spell struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(body, &spell))
	assert.Equal(t, "morning-meditation", spell.Slug)

	status, body = doJSON(t, app, http.MethodPost, "/api/spells/"+spell.ID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var result struct {
		Message   string `json:"message"`
		XPGained  int    `json:"xpGained"`
		NewXP     int    `json:"newXp"`
		NewLevel  int    `json:"newLevel"`
		LeveledUp bool   `json:"leveledUp"`
		NewStreak int    `json:"newStreak"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 15, result.XPGained)
	assert.Equal(t, 15, result.NewXP)
	assert.Equal(t, 1, result.NewLevel)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 1, result.NewStreak)

	// second completion on the same day is rejected, not an internal error
	status, body = doJSON(t, app, http.MethodPost, "/api/spells/"+spell.ID+"/complete", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "already completed")

	// the first completion unlocked the first-spell talisman
	status, body = doJSON(t, app, http.MethodGet, "/api/user/talismans", token, nil)
	require.Equal(t, http.StatusOK, status)
	var unlocked []struct {
		Condition string `json:"condition"`
	}
	require.NoError(t, json.Unmarshal(body, &unlocked))
	require.Len(t, unlocked, 1)
	assert.Equal(t, "FIRST_SPELL", unlocked[0].Condition)

	status, body = doJSON(t, app, http.MethodGet, "/api/user/stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		TotalSpellsCompleted int `json:"totalSpellsCompleted"`
		UnlockedTalismans    int `json:"unlockedTalismans"`
	}
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.TotalSpellsCompleted)
	assert.Equal(t, 1, stats.UnlockedTalismans)
}

func TestCompleteUnknownSpell(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "merlin")

	// ids are stored as plain strings, so a malformed id is just an absent
	// row, never a driver cast error
	status, _ := doJSON(t, app, http.MethodPost, "/api/spells/does-not-exist/complete", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/spells/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPut, "/api/spells/does-not-exist", token, fiber.Map{"title": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPublicEndpointsNeedNoToken(t *testing.T) {
	app := newTestApp(t)

	// the guard on /api/user/* and /api/spells must not bleed onto these
	for _, path := range []string{"/api/talismans", "/api/leaderboard"} {
		status, body := doJSON(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, status, "%s: %s", path, string(body))
	}
	status, body := doJSON(t, app, http.MethodPost, "/api/init-data", "", nil)
	assert.Equal(t, http.StatusOK, status, string(body))
}

func TestTalismanCatalogIsPublic(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/talismans", "", nil)
	require.Equal(t, http.StatusOK, status)

	var catalog []struct {
		Condition string `json:"condition"`
	}
	require.NoError(t, json.Unmarshal(body, &catalog))
	assert.Len(t, catalog, len(models.TalismanCatalog))
}

func TestLeaderboardEndpoint(t *testing.T) {
	app := newTestApp(t)

	for _, name := range []string{"merlin", "morgana", "arthur"} {
		token := registerUser(t, app, name)
		status, body := doJSON(t, app, http.MethodPost, "/api/spells", token, fiber.Map{
			"title":      "ritual of " + name,
			"repeatType": "DAILY",
		})
		require.Equal(t, http.StatusOK, status)
		var spell struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(body, &spell))
		status, _ = doJSON(t, app, http.MethodPost, "/api/spells/"+spell.ID+"/complete", token, nil)
		require.Equal(t, http.StatusOK, status)
	}

	status, body := doJSON(t, app, http.MethodGet, "/api/leaderboard?limit=2", "", nil)
	require.Equal(t, http.StatusOK, status)

	var entries []struct {
		Username string `json:"username"`
		XP       int    `json:"xp"`
	}
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 2)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].XP, entries[i].XP)
	}
}

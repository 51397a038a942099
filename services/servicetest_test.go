package services

import (
	"fmt"
	"testing"

	"spellbook-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
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
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "not-a-real-hash",
		Level:        1,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestSpell(t *testing.T, db *gorm.DB, userID, title string, reward int) *models.Spell {
	t.Helper()

	spell := models.Spell{
		UserID:     userID,
		Title:      title,
		RepeatType: models.RepeatDaily,
		XPReward:   reward,
	}
	require.NoError(t, db.Create(&spell).Error)
	return &spell
}

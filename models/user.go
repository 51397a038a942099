package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the account record plus its denormalized progression counters.
// Level is derived from XP (see services.CalculateLevel) and stored only for
// cheap reads; it is recomputed on every XP change. Progression fields are
// mutated exclusively by the completion flow after registration.
type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string `gorm:"not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	XP             int `gorm:"default:0" json:"xp"`
	Level          int `gorm:"default:1" json:"level"`
	CurrentStreak  int `gorm:"default:0" json:"currentStreak"`
	MaxStreak      int `gorm:"default:0" json:"maxStreak"`
	TotalCompleted int `gorm:"default:0" json:"totalSpellsCompleted"`

	// LastCompletionDate is a UTC calendar date ("2006-01-02"), nil until the
	// first completion. Day boundaries are UTC midnight for every user.
	LastCompletionDate *string `gorm:"type:varchar(10)" json:"lastCompletionDate,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

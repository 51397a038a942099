package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TalismanCondition tags the single unlock rule of a catalog talisman. The
// predicate behind each tag lives in services (data-driven, so new conditions
// are one catalog row plus one table entry).
type TalismanCondition string

const (
	ConditionFirstSpell TalismanCondition = "FIRST_SPELL"
	ConditionLevel5     TalismanCondition = "LEVEL_5"
	ConditionLevel10    TalismanCondition = "LEVEL_10"
	ConditionStreak7    TalismanCondition = "STREAK_7"
	ConditionStreak30   TalismanCondition = "STREAK_30"
	ConditionSpells10   TalismanCondition = "SPELLS_10"
	ConditionSpells50   TalismanCondition = "SPELLS_50"
	ConditionSpells100  TalismanCondition = "SPELLS_100"
)

// Talisman is an immutable catalog entry; seeded once at startup.
type Talisman struct {
	ID          string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string            `gorm:"not null" json:"name"`
	Description string            `json:"description"`
	IconURL     string            `gorm:"type:text" json:"iconUrl"`
	Condition   TalismanCondition `gorm:"type:varchar(32);uniqueIndex;not null" json:"condition"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (t *Talisman) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// UserTalisman is the unlock record. The unique index on
// (user_id, talisman_id) makes unlocking idempotent at the database, not just
// in application code.
type UserTalisman struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string `gorm:"uniqueIndex:idx_user_talismans_user_talisman;not null" json:"userId"`
	TalismanID string `gorm:"uniqueIndex:idx_user_talismans_user_talisman;not null" json:"talismanId"`

	UnlockedAt time.Time `gorm:"autoCreateTime" json:"unlockedAt"`
}

func (ut *UserTalisman) BeforeCreate(tx *gorm.DB) error {
	if ut.ID == "" {
		ut.ID = uuid.NewString()
	}
	return nil
}

// TalismanCatalog is the default catalog seeded on first boot.
var TalismanCatalog = []Talisman{
	{
		Name:        "First Step",
		Description: "Complete your first spell",
		IconURL:     "https://images.unsplash.com/photo-1617004890831-c99c16006144?crop=entropy&cs=srgb&fm=jpg&q=85",
		Condition:   ConditionFirstSpell,
	},
	{
		Name:        "Apprentice Wizard",
		Description: "Reach level 5",
		IconURL:     "https://images.unsplash.com/photo-1633785584922-503ad0e982f5?crop=entropy&cs=srgb&fm=jpg&q=85",
		Condition:   ConditionLevel5,
	},
	{
		Name:        "Master Wizard",
		Description: "Reach level 10",
		IconURL:     "https://images.unsplash.com/photo-1617004890831-c99c16006144?crop=entropy&cs=srgb&fm=jpg&q=85",
		Condition:   ConditionLevel10,
	},
	{
		Name:        "Weekly Discipline",
		Description: "Complete spells 7 days in a row",
		IconURL:     "https://images.unsplash.com/photo-1633785584922-503ad0e982f5?crop=entropy&cs=srgb&fm=jpg&q=85",
		Condition:   ConditionStreak7,
	},
	{
		Name:        "Monthly Resolve",
		Description: "Complete spells 30 days in a row",
		IconURL:     "https://images.unsplash.com/photo-1617004890831-c99c16006144?crop=entropy&cs=srgb&fm=jpg&q=85",
		Condition:   ConditionStreak30,
	},
	{
		Name:        "Spell Collector",
		Description: "Complete 10 spells",
		IconURL:     "https://images.unsplash.com/photo-1633785584922-503ad0e982f5?crop=entropy&cs=srgb&fm=jpg&q=85",
		Condition:   ConditionSpells10,
	},
	{
		Name:        "Spell Master",
		Description: "Complete 50 spells",
		IconURL:     "https://images.unsplash.com/photo-1617004890831-c99c16006144?crop=entropy&cs=srgb&fm=jpg&q=85",
		Condition:   ConditionSpells50,
	},
	{
		Name:        "Legendary Wizard",
		Description: "Complete 100 spells",
		IconURL:     "https://images.unsplash.com/photo-1633785584922-503ad0e982f5?crop=entropy&cs=srgb&fm=jpg&q=85",
		Condition:   ConditionSpells100,
	},
}

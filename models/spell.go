package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RepeatType is the spell's cadence. It is stored and surfaced to clients but
// not enforced beyond the one-completion-per-day rule.
type RepeatType string

const (
	RepeatDaily  RepeatType = "DAILY"
	RepeatWeekly RepeatType = "WEEKLY"
)

func (r RepeatType) IsValid() bool {
	return r == RepeatDaily || r == RepeatWeekly
}

// Spell is a user-owned recurring task with an XP reward.
type Spell struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string     `gorm:"index;not null" json:"userId"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"index" json:"slug"`
	Description string     `json:"description"`
	RepeatType  RepeatType `gorm:"type:varchar(16);not null" json:"repeatType"`
	XPReward    int        `gorm:"default:10" json:"xpReward"`

	// CompletedDates is filled from spell_completions when listing; it is not
	// a column.
	CompletedDates []string `gorm:"-" json:"completedDates"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (s *Spell) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SpellCompletion is the per-day completion state of a spell. The composite
// unique index on (spell_id, date) is what rejects a second completion for the
// same UTC day, including when two requests race past any earlier check.
type SpellCompletion struct {
	ID      string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SpellID string `gorm:"uniqueIndex:idx_spell_completions_spell_date;not null" json:"spellId"`
	Date    string `gorm:"uniqueIndex:idx_spell_completions_spell_date;type:varchar(10);not null" json:"date"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (c *SpellCompletion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

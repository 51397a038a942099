package services

import (
	"errors"
	"log"
	"time"

	"spellbook-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// XPPerLevel is the flat step of the level curve: level = XP/XPPerLevel + 1.
const XPPerLevel = 100

// DateLayout is the calendar-date format used for completion dates.
const DateLayout = "2006-01-02"

// CalculateLevel maps accumulated XP to a level (always >= 1). Callers must
// recompute this on every XP change instead of trusting a stored level.
func CalculateLevel(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// DateString formats t as a UTC calendar date. Day boundaries are UTC
// midnight for every user; per-user timezones are intentionally not applied.
func DateString(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// NextStreak decides whether a completion on the given day extends, preserves,
// or resets the daily streak, and keeps maxStreak in step.
//
// lastDate == today cannot be reached from CompleteSpell (the completion row
// insert rejects same-day repeats first), but the function still returns the
// streak unchanged for that input.
func NextStreak(currentStreak, maxStreak int, lastDate *string, today time.Time) (int, int) {
	todayStr := DateString(today)
	yesterdayStr := DateString(today.AddDate(0, 0, -1))

	var streak int
	switch {
	case lastDate != nil && *lastDate == yesterdayStr:
		streak = currentStreak + 1
	case lastDate != nil && *lastDate == todayStr:
		streak = currentStreak
	default:
		// no prior completion, or a gap of two or more days
		streak = 1
	}

	if streak > maxStreak {
		maxStreak = streak
	}
	return streak, maxStreak
}

// CompletionResult is the contract clients render after completing a spell.
type CompletionResult struct {
	XPGained  int  `json:"xpGained"`
	NewXP     int  `json:"newXp"`
	NewLevel  int  `json:"newLevel"`
	LeveledUp bool `json:"leveledUp"`
	NewStreak int  `json:"newStreak"`
}

type ProgressionService struct {
	DB        *gorm.DB
	Talismans *TalismanService
}

func NewProgressionService(db *gorm.DB, talismans *TalismanService) *ProgressionService {
	return &ProgressionService{DB: db, Talismans: talismans}
}

// CompleteSpell marks the spell done for the given day and applies the full
// progression update: XP, level, streak, counters, talisman unlocks. The whole
// flow runs in one transaction so the completion row and the user update
// commit together.
func (s *ProgressionService) CompleteSpell(userID, spellID string, today time.Time) (*CompletionResult, error) {
	todayStr := DateString(today)

	var result *CompletionResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var spell models.Spell
		if err := tx.Where("id = ? AND user_id = ?", spellID, userID).First(&spell).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSpellNotFound
			}
			return err
		}

		// The unique (spell_id, date) index is the duplicate guard. Two
		// racing requests for the same day both reach this insert; only one
		// affects a row, the other gets the duplicate outcome.
		completion := models.SpellCompletion{SpellID: spell.ID, Date: todayStr}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDuplicateCompletion
		}

		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		oldLevel := user.Level
		user.XP += spell.XPReward
		user.Level = CalculateLevel(user.XP)
		user.CurrentStreak, user.MaxStreak = NextStreak(user.CurrentStreak, user.MaxStreak, user.LastCompletionDate, today)
		user.TotalCompleted++
		user.LastCompletionDate = &todayStr

		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		// Evaluate against the user row we just wrote, inside the same tx.
		if _, err := s.Talismans.EvaluateAndUnlock(tx, &user); err != nil {
			return err
		}

		result = &CompletionResult{
			XPGained:  spell.XPReward,
			NewXP:     user.XP,
			NewLevel:  user.Level,
			LeveledUp: user.Level > oldLevel,
			NewStreak: user.CurrentStreak,
		}

		log.Printf("🪄 Spell completed: user=%s spell=%s +%d XP (lvl %d, streak %d)",
			user.ID, spell.ID, spell.XPReward, user.Level, user.CurrentStreak)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

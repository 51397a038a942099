package services

import (
	"log"
	"time"

	"spellbook-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// talismanPredicate reports whether a progression snapshot satisfies a
// condition.
type talismanPredicate func(u *models.User) bool

// conditionChecks maps each catalog condition to its predicate. Extending the
// catalog means one entry here plus one row in models.TalismanCatalog.
var conditionChecks = map[models.TalismanCondition]talismanPredicate{
	models.ConditionFirstSpell: func(u *models.User) bool { return u.TotalCompleted >= 1 },
	models.ConditionLevel5:     func(u *models.User) bool { return u.Level >= 5 },
	models.ConditionLevel10:    func(u *models.User) bool { return u.Level >= 10 },
	models.ConditionStreak7:    func(u *models.User) bool { return u.CurrentStreak >= 7 },
	models.ConditionStreak30:   func(u *models.User) bool { return u.CurrentStreak >= 30 },
	models.ConditionSpells10:   func(u *models.User) bool { return u.TotalCompleted >= 10 },
	models.ConditionSpells50:   func(u *models.User) bool { return u.TotalCompleted >= 50 },
	models.ConditionSpells100:  func(u *models.User) bool { return u.TotalCompleted >= 100 },
}

type TalismanService struct {
	DB *gorm.DB
}

func NewTalismanService(db *gorm.DB) *TalismanService {
	return &TalismanService{DB: db}
}

// EvaluateAndUnlock grants an unlock record for every catalog talisman whose
// condition the user now satisfies. Inserts go through ON CONFLICT DO NOTHING
// on (user_id, talisman_id), so re-evaluating an unchanged snapshot never
// creates a duplicate, sequentially or under races. An empty catalog is a
// no-op, not an error. Runs on the caller's tx.
func (s *TalismanService) EvaluateAndUnlock(tx *gorm.DB, user *models.User) ([]string, error) {
	var catalog []models.Talisman
	if err := tx.Find(&catalog).Error; err != nil {
		return nil, err
	}

	var unlocked []string
	for _, t := range catalog {
		check, ok := conditionChecks[t.Condition]
		if !ok || !check(user) {
			continue
		}

		ut := models.UserTalisman{UserID: user.ID, TalismanID: t.ID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ut)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			unlocked = append(unlocked, t.ID)
			log.Printf("🏅 Talisman unlocked: %q → user=%s", t.Name, user.ID)
		}
	}
	return unlocked, nil
}

// Seed inserts the default catalog if the table is empty. Returns whether the
// seed ran.
func (s *TalismanService) Seed() (bool, error) {
	var count int64
	if err := s.DB.Model(&models.Talisman{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	catalog := make([]models.Talisman, len(models.TalismanCatalog))
	copy(catalog, models.TalismanCatalog)
	if err := s.DB.Create(&catalog).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ListCatalog returns every catalog talisman.
func (s *TalismanService) ListCatalog() ([]models.Talisman, error) {
	var catalog []models.Talisman
	err := s.DB.Order("created_at ASC").Find(&catalog).Error
	return catalog, err
}

// UnlockedTalisman is a catalog entry joined with its unlock time for one
// user.
type UnlockedTalisman struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	IconURL     string                   `json:"iconUrl"`
	Condition   models.TalismanCondition `json:"condition"`
	UnlockedAt  time.Time                `json:"unlockedAt"`
}

// ListForUser returns the user's unlocked talismans with catalog details.
func (s *TalismanService) ListForUser(userID string) ([]UnlockedTalisman, error) {
	var rows []UnlockedTalisman
	err := s.DB.Table("user_talismen").
		Select("talismen.id, talismen.name, talismen.description, talismen.icon_url, talismen.condition, user_talismen.unlocked_at").
		Joins("INNER JOIN talismen ON talismen.id = user_talismen.talisman_id").
		Where("user_talismen.user_id = ?", userID).
		Order("user_talismen.unlocked_at ASC").
		Scan(&rows).Error
	return rows, err
}

// CountForUser returns how many talismans the user has unlocked.
func (s *TalismanService) CountForUser(userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.UserTalisman{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// SetIconURL stores the uploaded icon location on a catalog talisman.
func (s *TalismanService) SetIconURL(talismanID, iconURL string) error {
	res := s.DB.Model(&models.Talisman{}).Where("id = ?", talismanID).Update("icon_url", iconURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTalismanNotFound
	}
	return nil
}

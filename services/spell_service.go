package services

import (
	"errors"

	"spellbook-system/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type SpellService struct {
	DB *gorm.DB
}

func NewSpellService(db *gorm.DB) *SpellService {
	return &SpellService{DB: db}
}

// SpellCreate carries the fields a user supplies when creating a spell.
type SpellCreate struct {
	Title       string
	Description string
	RepeatType  models.RepeatType
	XPReward    int
}

// SpellUpdate carries a partial update; nil fields are left untouched.
type SpellUpdate struct {
	Title       *string
	Description *string
	RepeatType  *models.RepeatType
	XPReward    *int
}

// Create stores a new spell owned by userID.
func (s *SpellService) Create(userID string, in SpellCreate) (*models.Spell, error) {
	sp := models.Spell{
		UserID:      userID,
		Title:       in.Title,
		Slug:        slug.Make(in.Title),
		Description: in.Description,
		RepeatType:  in.RepeatType,
		XPReward:    in.XPReward,
	}
	if err := s.DB.Create(&sp).Error; err != nil {
		return nil, err
	}
	sp.CompletedDates = []string{}
	return &sp, nil
}

// ListForUser returns the user's spells with their completion dates attached.
func (s *SpellService) ListForUser(userID string) ([]models.Spell, error) {
	var spells []models.Spell
	if err := s.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&spells).Error; err != nil {
		return nil, err
	}
	if len(spells) == 0 {
		return spells, nil
	}

	ids := make([]string, len(spells))
	for i, sp := range spells {
		ids[i] = sp.ID
	}

	var completions []models.SpellCompletion
	if err := s.DB.Where("spell_id IN ?", ids).Order("date ASC").Find(&completions).Error; err != nil {
		return nil, err
	}

	bySpell := make(map[string][]string, len(spells))
	for _, c := range completions {
		bySpell[c.SpellID] = append(bySpell[c.SpellID], c.Date)
	}
	for i := range spells {
		dates := bySpell[spells[i].ID]
		if dates == nil {
			dates = []string{}
		}
		spells[i].CompletedDates = dates
	}
	return spells, nil
}

// Update applies a partial update to a spell the user owns. A spell owned by
// someone else is indistinguishable from a missing one.
func (s *SpellService) Update(userID, spellID string, in SpellUpdate) (*models.Spell, error) {
	var sp models.Spell
	if err := s.DB.Where("id = ? AND user_id = ?", spellID, userID).First(&sp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpellNotFound
		}
		return nil, err
	}

	if in.Title != nil {
		sp.Title = *in.Title
		sp.Slug = slug.Make(*in.Title)
	}
	if in.Description != nil {
		sp.Description = *in.Description
	}
	if in.RepeatType != nil {
		sp.RepeatType = *in.RepeatType
	}
	if in.XPReward != nil {
		sp.XPReward = *in.XPReward
	}

	if err := s.DB.Save(&sp).Error; err != nil {
		return nil, err
	}

	var completions []models.SpellCompletion
	if err := s.DB.Where("spell_id = ?", sp.ID).Order("date ASC").Find(&completions).Error; err != nil {
		return nil, err
	}
	sp.CompletedDates = make([]string, 0, len(completions))
	for _, c := range completions {
		sp.CompletedDates = append(sp.CompletedDates, c.Date)
	}
	return &sp, nil
}

// Delete removes a spell the user owns together with its completion rows.
func (s *SpellService) Delete(userID, spellID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", spellID, userID).Delete(&models.Spell{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSpellNotFound
		}
		return tx.Where("spell_id = ?", spellID).Delete(&models.SpellCompletion{}).Error
	})
}

package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"filestore-bot/internal/models"
)

// SetChannel binds the user's uploads to their own channel. Re-linking
// overwrites the previous binding.
func (s *Store) SetChannel(userID, channelID int64, title string) error {
	binding := models.ChannelBinding{UserID: userID, ChannelID: channelID, Title: title}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&binding).Error
	if err != nil {
		return fmt.Errorf("set channel for %d: %w", userID, err)
	}
	return nil
}

func (s *Store) GetChannel(userID int64) (*models.ChannelBinding, error) {
	var binding models.ChannelBinding
	err := s.db.First(&binding, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get channel for %d: %w", userID, err)
	}
	return &binding, nil
}

package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"filestore-bot/internal/models"
)

func (s *Store) CreateBatch(b *models.Batch) error {
	if err := s.db.Create(b).Error; err != nil {
		return fmt.Errorf("create batch %s: %w", b.ID, err)
	}
	return nil
}

func (s *Store) GetBatch(id string) (*models.Batch, error) {
	var b models.Batch
	err := s.db.First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", id, err)
	}
	return &b, nil
}

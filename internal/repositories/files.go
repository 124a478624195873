package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"filestore-bot/internal/models"
)

// CreateFile inserts a new record. A code collision surfaces as the
// database's unique violation; the caller reports it, nothing retries.
func (s *Store) CreateFile(f *models.File) error {
	if err := s.db.Create(f).Error; err != nil {
		return fmt.Errorf("create file %s: %w", f.Code, err)
	}
	return nil
}

func (s *Store) GetFile(code string) (*models.File, error) {
	var f models.File
	err := s.db.First(&f, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", code, err)
	}
	return &f, nil
}

// DeleteFile removes the metadata row only; the message kept in the
// storage channel stays where it is.
func (s *Store) DeleteFile(code string) error {
	res := s.db.Delete(&models.File{}, "code = ?", code)
	if res.Error != nil {
		return fmt.Errorf("delete file %s: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementDownloads bumps the counter after a delivery succeeded.
func (s *Store) IncrementDownloads(code string) error {
	err := s.db.Model(&models.File{}).Where("code = ?", code).
		Update("downloads", gorm.Expr("downloads + 1")).Error
	if err != nil {
		return fmt.Errorf("increment downloads for %s: %w", code, err)
	}
	return nil
}

func (s *Store) UserFiles(uploaderID int64, limit, offset int) ([]models.File, error) {
	var files []models.File
	err := s.db.Where("uploader_id = ?", uploaderID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list files for %d: %w", uploaderID, err)
	}
	return files, nil
}

// SearchUserFiles matches the uploader's own files by name substring.
func (s *Store) SearchUserFiles(uploaderID int64, query string, limit int) ([]models.File, error) {
	var files []models.File
	err := s.db.Where("uploader_id = ? AND name LIKE ?", uploaderID, "%"+query+"%").
		Order("created_at DESC").
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("search files for %d: %w", uploaderID, err)
	}
	return files, nil
}

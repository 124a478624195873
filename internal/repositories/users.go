package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"filestore-bot/internal/models"
)

// ErrNotFound is returned by point lookups when no row matches.
var ErrNotFound = errors.New("not found")

// EnsureUser registers the user on first contact. Idempotent: an existing
// row is left untouched, including its ban flag.
func (s *Store) EnsureUser(id int64) error {
	user := models.User{ID: id, Role: "user"}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", id, err)
	}
	return nil
}

func (s *Store) GetUser(id int64) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

// IsBanned treats unknown users as not banned.
func (s *Store) IsBanned(id int64) (bool, error) {
	user, err := s.GetUser(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Banned, nil
}

func (s *Store) SetBanned(id int64, banned bool) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).Update("banned", banned)
	if res.Error != nil {
		return fmt.Errorf("set banned for %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ForEachUserPage streams the full user set in pages of pageSize so the
// broadcast never holds every user in memory at once.
func (s *Store) ForEachUserPage(pageSize int, fn func(users []models.User) error) error {
	var page []models.User
	res := s.db.Model(&models.User{}).Order("id").FindInBatches(&page, pageSize, func(tx *gorm.DB, batch int) error {
		return fn(page)
	})
	if res.Error != nil {
		return fmt.Errorf("scan users: %w", res.Error)
	}
	return nil
}

// Stats holds the aggregate counts shown on the admin panel.
type Stats struct {
	Users  int64 `json:"users"`
	Files  int64 `json:"files"`
	Banned int64 `json:"banned"`
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.Model(&models.User{}).Count(&st.Users).Error; err != nil {
		return st, fmt.Errorf("count users: %w", err)
	}
	if err := s.db.Model(&models.File{}).Count(&st.Files).Error; err != nil {
		return st, fmt.Errorf("count files: %w", err)
	}
	if err := s.db.Model(&models.User{}).Where("banned = ?", true).Count(&st.Banned).Error; err != nil {
		return st, fmt.Errorf("count banned: %w", err)
	}
	return st, nil
}

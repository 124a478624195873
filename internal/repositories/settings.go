package repositories

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"filestore-bot/internal/models"
)

const (
	settingMaintenance = "maintenance_mode"
	settingForceSub    = "fsub_channel"
)

func (s *Store) GetSetting(key, fallback string) (string, error) {
	var setting models.Setting
	err := s.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return setting.Value, nil
}

func (s *Store) SetSetting(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// Typed accessors keep the stringly-typed key/value rows behind a
// boolean and a channel id.

func (s *Store) MaintenanceMode() (bool, error) {
	v, err := s.GetSetting(settingMaintenance, "false")
	if err != nil {
		return false, err
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		return false, nil
	}
	return on, nil
}

func (s *Store) SetMaintenanceMode(on bool) error {
	return s.SetSetting(settingMaintenance, strconv.FormatBool(on))
}

// ForceSubChannel returns 0 when no subscription channel is configured.
func (s *Store) ForceSubChannel() (int64, error) {
	v, err := s.GetSetting(settingForceSub, "0")
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

// SetForceSubChannel with id 0 clears the requirement.
func (s *Store) SetForceSubChannel(id int64) error {
	return s.SetSetting(settingForceSub, strconv.FormatInt(id, 10))
}

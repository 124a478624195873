package repositories

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"filestore-bot/internal/models"
)

// Store is the only durable owner of bot state. Every method is a single
// self-contained gorm call, safe from concurrent handlers and the
// broadcast goroutine.
type Store struct {
	db *gorm.DB
}

// Connect opens the metadata store and runs migrations. A Postgres DSN
// takes precedence when set; otherwise a local sqlite file is used.
func Connect(dbURL, dbPath string) (*Store, error) {
	var dialector gorm.Dialector
	if dbURL != "" {
		dialector = postgres.Open(dbURL)
	} else {
		dialector = sqlite.Open(dbPath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Batch{},
		&models.ChannelBinding{},
		&models.Setting{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	slog.Info("database connected and migrated")
	return &Store{db: db}, nil
}

// NewStore wraps an already opened gorm handle. Used by tests.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

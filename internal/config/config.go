package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken       string
	OwnerID        int64
	AdminIDs       []int64
	StorageChannel int64
	LogChannel     int64

	DBPath string
	DBURL  string

	Port     string
	LogLevel string

	BroadcastPageSize int
	SessionTTL        time.Duration
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(strValue, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("env var %s: invalid integer value %q", key, strValue)
	}
	return value, nil
}

func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	cfg := &Config{
		BotToken: getEnv("BOT_TOKEN", ""),
		DBPath:   getEnv("DB_PATH", "bot_data.db"),
		DBURL:    getEnv("DB_URL", ""),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.OwnerID, err = getEnvAsInt64("OWNER_ID", 0); err != nil {
		return nil, err
	}
	if cfg.StorageChannel, err = getEnvAsInt64("BIN_CHANNEL", 0); err != nil {
		return nil, err
	}
	if cfg.LogChannel, err = getEnvAsInt64("LOG_CHANNEL", 0); err != nil {
		return nil, err
	}

	pageSize, err := getEnvAsInt64("BROADCAST_PAGE_SIZE", 50)
	if err != nil {
		return nil, err
	}
	cfg.BroadcastPageSize = int(pageSize)

	ttlHours, err := getEnvAsInt64("BATCH_SESSION_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	// Extra admins beside the owner, comma separated Telegram ids.
	if raw := getEnv("ADMIN_IDS", ""); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("env var ADMIN_IDS: invalid id %q", part)
			}
			cfg.AdminIDs = append(cfg.AdminIDs, id)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.OwnerID == 0 {
		return fmt.Errorf("OWNER_ID is required")
	}
	if c.StorageChannel == 0 {
		return fmt.Errorf("BIN_CHANNEL is required")
	}
	if c.BroadcastPageSize <= 0 {
		return fmt.Errorf("BROADCAST_PAGE_SIZE must be greater than 0")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("BATCH_SESSION_TTL_HOURS must be greater than 0")
	}
	return nil
}

// IsAdmin reports whether id may use the admin surface.
func (c *Config) IsAdmin(id int64) bool {
	if id == c.OwnerID {
		return true
	}
	for _, a := range c.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration
type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN"`
	AdminUserIDs  []int64
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"./data/bot.db"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"INFO"`
	Language      string `env:"LANGUAGE" envDefault:"en"`

	// Numeric trigger domain and bucket width used for categories
	CategoryMin  int64 `env:"CATEGORY_MIN" envDefault:"1"`
	CategoryMax  int64 `env:"CATEGORY_MAX" envDefault:"500"`
	CategorySize int64 `env:"CATEGORY_SIZE" envDefault:"25"`

	PageSize int `env:"PAGE_SIZE" envDefault:"25"`

	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	adminUserIDsRaw string
}

// rawEnv mirrors the variables that need custom parsing
type rawEnv struct {
	AdminUserIDs string `env:"ADMIN_USER_IDS"`
}

// Load loads configuration for running the bot. Token and admin list are
// required.
func Load() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	if cfg.adminUserIDsRaw == "" {
		return nil, fmt.Errorf("ADMIN_USER_IDS environment variable is required")
	}
	adminIDs, err := parseAdminIDs(cfg.adminUserIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_USER_IDS: %w", err)
	}
	cfg.AdminUserIDs = adminIDs

	return cfg, nil
}

// LoadOffline loads configuration for maintenance commands that only touch
// the database (import, export). Telegram settings are not validated.
func LoadOffline() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.adminUserIDsRaw != "" {
		if ids, err := parseAdminIDs(cfg.adminUserIDsRaw); err == nil {
			cfg.AdminUserIDs = ids
		}
	}
	return cfg, nil
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	var raw rawEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.adminUserIDsRaw = strings.TrimSpace(raw.AdminUserIDs)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.CategoryMin < 0 {
		return fmt.Errorf("invalid CATEGORY_MIN '%d': must be non-negative", c.CategoryMin)
	}
	if c.CategorySize <= 0 {
		return fmt.Errorf("invalid CATEGORY_SIZE '%d': must be positive", c.CategorySize)
	}
	if c.CategoryMax < c.CategoryMin {
		return fmt.Errorf("invalid CATEGORY_MAX '%d': must not be below CATEGORY_MIN '%d'", c.CategoryMax, c.CategoryMin)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid PAGE_SIZE '%d': must be positive", c.PageSize)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid SESSION_TTL '%s': must be positive", c.SessionTTL)
	}
	if c.SessionSweepInterval <= 0 {
		return fmt.Errorf("invalid SESSION_SWEEP_INTERVAL '%s': must be positive", c.SessionSweepInterval)
	}
	switch c.Language {
	case "en", "uz":
	default:
		return fmt.Errorf("invalid LANGUAGE '%s': must be one of en, uz", c.Language)
	}
	return nil
}

// IsAdmin reports whether userID is in the admin allowlist
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// parseAdminIDs parses comma-separated admin user IDs
func parseAdminIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin ID '%s': %w", part, err)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one admin ID is required")
	}

	return ids, nil
}

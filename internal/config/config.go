// Package config manages application configuration from config.yaml,
// BOT_* environment variables, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// BotInfo holds runtime information about the bot account, retrieved
// from Telegram at startup.
type BotInfo struct {
	ID        int64
	Username  string
	FirstName string
}

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig controls the SQLite decision store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// GeminiConfig controls the Gemini classifier client.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key" validate:"required"`
	ModelName   string  `mapstructure:"model_name" validate:"required"`
	Temperature float32 `mapstructure:"temperature" validate:"min=0,max=2"`
}

// TelegramConfig controls the Telegram transport. AdminChatID is where
// review cards and reports are sent; AdminUserIDs are the moderators
// whose reactions count as feedback.
type TelegramConfig struct {
	Token        string  `mapstructure:"token"`
	AdminChatID  int64   `mapstructure:"admin_chat_id"`
	AdminUserIDs []int64 `mapstructure:"admin_user_ids"`

	BotInfo BotInfo `mapstructure:"-"`
}

// ModerationConfig holds the moderation policy text interpolated into
// the classification prompt.
type ModerationConfig struct {
	Rules string `mapstructure:"rules" validate:"required"`
}

// TaskConfig describes a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// Config is the root application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

// DefaultModerationRules is the policy prompt used when no rules are
// configured. Deployments are expected to replace it with their own
// group rules, in the group's language.
const DefaultModerationRules = `1. Do not post phone numbers of personnel deployed in the field
2. Do not post precise locations or GPS coordinates
3. Do not post unit numbers together with operational details
4. Keep language respectful
5. Verify donation requests before sending money
6. Be careful with media content from the field`

// IsAdminUser reports whether the given Telegram user is one of the
// configured moderators.
func (c *TelegramConfig) IsAdminUser(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// LoadConfig reads configuration from the given YAML file (which may be
// absent), overlays BOT_* environment variables, and validates the
// result. A missing Gemini API key is a validation failure.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// SetConfigFile bypasses viper's not-found error type, so check
		// the filesystem directly; a missing file just means env/defaults.
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("database.path", "moderation.db")

	// Empty defaults register the keys so AutomaticEnv can overlay
	// BOT_GEMINI_API_KEY etc. without a config file.
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.1)

	v.SetDefault("moderation.rules", DefaultModerationRules)

	v.SetDefault("scheduler.tasks.daily_report.enabled", true)
	v.SetDefault("scheduler.tasks.daily_report.schedule", "0 0 8 * * *")
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 30 4 * * 0")
}

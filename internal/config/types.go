// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import (
	"errors"
	"time"

	"github.com/go-telegram/bot/models"
)

var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration. Values can be set via
// config.yaml or environment variables prefixed with BOT_
// (e.g., BOT_TELEGRAM_TOKEN).
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	Export    ExportConfig    `mapstructure:"export"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token, the admin allow-list, and the
// webhook listener settings. An empty WebhookURL switches the bot to
// long polling.
type TelegramConfig struct {
	Token        string  `mapstructure:"token"          validate:"required"`
	AdminUserIDs []int64 `mapstructure:"admin_user_ids" validate:"required,min=1,dive,gt=0"`
	WebhookURL   string  `mapstructure:"webhook_url"    validate:"omitempty,url"`
	WebhookPath  string  `mapstructure:"webhook_path"   validate:"required,startswith=/"`
	ListenAddr   string  `mapstructure:"listen_addr"    validate:"required"`

	// BotInfo is populated at startup via GetMe, never from config.
	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ReminderConfig controls the re-engagement reminder loop.
type ReminderConfig struct {
	Interval         time.Duration `mapstructure:"interval"           validate:"required,min=1m"`
	RetryInterval    time.Duration `mapstructure:"retry_interval"     validate:"required,min=10s"`
	SendTimeout      time.Duration `mapstructure:"send_timeout"       validate:"required,min=1s"`
	MaxCycleFailures int           `mapstructure:"max_cycle_failures" validate:"required,gt=0"`
}

// ExportConfig holds the CSV mirror settings.
type ExportConfig struct {
	CSVPath string `mapstructure:"csv_path" validate:"required"`
}

// SchedulerConfig holds the cron-scheduled background tasks keyed by
// task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig describes one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds the user-facing texts that are not part of the
// menu tree: error replies, recovery notices sent after an outage, and
// the re-engagement reminders.
type MessagesConfig struct {
	GeneralError  string `mapstructure:"general_error"  validate:"required"`
	NotAuthorized string `mapstructure:"not_authorized" validate:"required"`

	RecoveryStart    string `mapstructure:"recovery_start"    validate:"required"`
	RecoveryCallback string `mapstructure:"recovery_callback" validate:"required"`
	RecoveryMessage  string `mapstructure:"recovery_message"  validate:"required"`

	ReminderDay1  string `mapstructure:"reminder_day_1"  validate:"required"`
	ReminderDay3  string `mapstructure:"reminder_day_3"  validate:"required"`
	ReminderDay10 string `mapstructure:"reminder_day_10" validate:"required"`
}

// IsAdmin reports whether userID is in the admin allow-list.
func (c *TelegramConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

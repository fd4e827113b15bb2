package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at path (optional, may be absent)
// 3. BOT_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine, everything can come from env vars.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// setDefaults registers default values for optional configuration parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("export.csv_path", DefaultCSVPath)

	v.SetDefault("telegram.webhook_path", DefaultWebhookPath)
	v.SetDefault("telegram.listen_addr", DefaultListenAddr)

	v.SetDefault("reminder.interval", DefaultReminderInterval)
	v.SetDefault("reminder.retry_interval", DefaultReminderRetryInterval)
	v.SetDefault("reminder.send_timeout", DefaultReminderSendTimeout)
	v.SetDefault("reminder.max_cycle_failures", DefaultReminderMaxCycleFailures)

	v.SetDefault("scheduler.tasks", DefaultSchedulerTasks)

	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.recovery_start", DefaultMessages.RecoveryStart)
	v.SetDefault("messages.recovery_callback", DefaultMessages.RecoveryCallback)
	v.SetDefault("messages.recovery_message", DefaultMessages.RecoveryMessage)
	v.SetDefault("messages.reminder_day_1", DefaultMessages.ReminderDay1)
	v.SetDefault("messages.reminder_day_3", DefaultMessages.ReminderDay3)
	v.SetDefault("messages.reminder_day_10", DefaultMessages.ReminderDay10)
}

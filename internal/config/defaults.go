package config

import "time"

// Default values for configuration
const (
	// Logger defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	// Database defaults
	DefaultDBPath = "stats.db"

	// Export defaults
	DefaultCSVPath = "stats_log.csv"

	// Telegram defaults
	DefaultWebhookPath = "/webhook"
	DefaultListenAddr  = ":10000"

	// Reminder defaults
	DefaultReminderInterval         = 6 * time.Hour
	DefaultReminderRetryInterval    = 5 * time.Minute
	DefaultReminderSendTimeout      = 30 * time.Second
	DefaultReminderMaxCycleFailures = 3
)

// Default user-facing messages
var DefaultMessages = MessagesConfig{
	GeneralError:  "Произошла ошибка. Пожалуйста, попробуйте еще раз или начните сначала с помощью команды /start",
	NotAuthorized: "🚫 Эта команда доступна только администратору.",

	RecoveryStart:    "👋 Бот снова на связи! Нажмите /start, чтобы начать подбор финансовых продуктов.",
	RecoveryCallback: "👋 Бот снова на связи! Ваш запрос не был обработан из-за сбоя. Нажмите /start, чтобы продолжить.",
	RecoveryMessage:  "👋 Бот снова на связи! Нажмите /start, чтобы продолжить.",

	ReminderDay1:  "👋 Вы недавно заглядывали к ФинАгрегаторБоту!\n\nВыгодные займы от МФО, кредиты под ПТС и под залог недвижимости ждут вас. Нажмите /start, чтобы продолжить подбор.",
	ReminderDay3:  "💸 Подборка выгодных финансовых продуктов всё ещё актуальна!\n\nЗаймы под 0% для новых клиентов, кредиты до 50 млн ₽. Нажмите /start, чтобы посмотреть.",
	ReminderDay10: "🚀 Давно не виделись! У нас по-прежнему есть выгодные предложения: займы без процентов, кредиты под ПТС и под залог.\n\nНажмите /start, чтобы вернуться к подбору.",
}

// Default scheduled tasks
var DefaultSchedulerTasks = map[string]TaskConfig{
	"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
	"pending_sweep":   {Enabled: true, Schedule: "0 */10 * * * *"},
}

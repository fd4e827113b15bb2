// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/avolkov/finaggbot/internal/bot"
	"github.com/avolkov/finaggbot/internal/bot/handlers"
	"github.com/avolkov/finaggbot/internal/bot/tasks"
	"github.com/avolkov/finaggbot/internal/config"
	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/export"
	"github.com/avolkov/finaggbot/internal/logger"
	"github.com/avolkov/finaggbot/internal/reminder"
	"github.com/avolkov/finaggbot/internal/replay"
	"github.com/avolkov/finaggbot/internal/session"
	"github.com/avolkov/finaggbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components, handles graceful
// shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	mirror, err := export.NewMirror(cfg.Export.CSVPath, log)
	if err != nil {
		log.Error("Failed to open CSV mirror", "path", cfg.Export.CSVPath, "error", err)
		return 1
	}

	// The default handler is registered at construction time but the
	// real handler needs the bot instance for its screen manager, so it
	// is bound through this indirection once wiring is complete.
	var defaultHandler tgbot.HandlerFunc
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if defaultHandler != nil {
				defaultHandler(ctx, b, update)
			}
		}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	screen := session.NewScreen(tg, session.NewStore(), log)
	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Store:  store,
		Mirror: mirror,
		Screen: screen,
	}
	defaultHandler = handlers.NewMessageHandler(hDeps)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	notifier := telegram.NewNotifier(tg)
	reminders := reminder.New(store, notifier, reminder.Templates{
		Day1:  cfg.Messages.ReminderDay1,
		Day3:  cfg.Messages.ReminderDay3,
		Day10: cfg.Messages.ReminderDay10,
	}, reminder.Config{
		Interval:         cfg.Reminder.Interval,
		RetryInterval:    cfg.Reminder.RetryInterval,
		SendTimeout:      cfg.Reminder.SendTimeout,
		MaxCycleFailures: cfg.Reminder.MaxCycleFailures,
	}, log)

	replayer := replay.New(store, notifier, replay.Templates{
		Start:    cfg.Messages.RecoveryStart,
		Callback: cfg.Messages.RecoveryCallback,
		Message:  cfg.Messages.RecoveryMessage,
	}, log)

	webhook := telegram.NewWebhookManager(tg, &cfg.Telegram, log)

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Replayer: replayer,
		Config:   cfg,
	}
	sched := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))

	app := bot.NewBot(log, cfg, db, store, tg, webhook, reminders, replayer, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}

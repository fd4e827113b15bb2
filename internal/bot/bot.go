// Package bot implements the core bot functionality, lifecycle management,
// and component orchestration.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/avolkov/finaggbot/internal/config"
	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/reminder"
	"github.com/avolkov/finaggbot/internal/replay"
	"github.com/avolkov/finaggbot/internal/telegram"
)

const telegramShutdownTimeout = 10 * time.Second

// Bot represents the main bot application and manages its components'
// lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	db        *sqlx.DB
	store     database.Store
	tgBot     *tgbot.Bot
	webhook   *telegram.WebhookManager
	reminders *reminder.Scheduler
	replayer  *replay.Replayer
	scheduler *Scheduler
}

// NewBot creates a new instance of the bot with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store database.Store,
	tgBot *tgbot.Bot,
	webhook *telegram.WebhookManager,
	reminders *reminder.Scheduler,
	replayer *replay.Replayer,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		db:        db,
		store:     store,
		tgBot:     tgBot,
		webhook:   webhook,
		reminders: reminders,
		replayer:  replayer,
		scheduler: scheduler,
	}
}

// Run starts the bot and all its components, handling graceful shutdown
// on context cancellation. It returns an error if any component fails
// during startup or execution.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	// Users whose interactions failed before the restart get their
	// recovery notification before new traffic is served.
	if err := b.replayer.Run(ctx); err != nil {
		b.logger.Warn("Startup replay of pending events incomplete", "error", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	if b.webhook.Enabled() {
		if err := b.webhook.Setup(gCtx); err != nil {
			return err
		}

		g.Go(func() error {
			defer b.teardownWebhook()
			return b.webhook.Serve(gCtx)
		})

		g.Go(func() error {
			err := b.webhook.Run(gCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		g.Go(func() error {
			b.logger.Info("Starting Telegram long polling listener...")

			b.tgBot.Start(gCtx)
			b.logger.Info("Telegram listener stopped.")

			if gCtx.Err() == nil {
				b.logger.Warn("Telegram listener stopped unexpectedly without context cancellation.")
				return fmt.Errorf("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	g.Go(func() error {
		err := b.reminders.Run(gCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		b.logger.Info("Starting task scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start task scheduler", "error", err)
			return fmt.Errorf("failed to start task scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping task scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping task scheduler", "error", err)
		}

		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// teardownWebhook removes the webhook registration with a fresh context,
// the run context is already cancelled during shutdown.
func (b *Bot) teardownWebhook() {
	ctx, cancel := context.WithTimeout(context.Background(), telegramShutdownTimeout)
	defer cancel()
	b.webhook.Teardown(ctx)
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-telegram/bot"

	"github.com/avolkov/finaggbot/internal/config"
)

const (
	healthCheckInterval = 5 * time.Minute
	healthRetryInterval = time.Minute
)

// WebhookManager owns the webhook registration with Telegram and keeps
// it healthy. It periodically compares the registered URL against the
// configured one and re-registers on drift, so transport recovery lives
// here and nowhere else.
type WebhookManager struct {
	bot     *bot.Bot
	cfg     *config.TelegramConfig
	logger  *slog.Logger
	healthy atomic.Bool
}

// NewWebhookManager creates a webhook manager for the given bot.
func NewWebhookManager(b *bot.Bot, cfg *config.TelegramConfig, logger *slog.Logger) *WebhookManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookManager{
		bot:    b,
		cfg:    cfg,
		logger: logger.With("component", "webhook_manager"),
	}
}

// Enabled reports whether webhook mode is configured. Without a webhook
// URL the bot falls back to long polling.
func (m *WebhookManager) Enabled() bool {
	return m.cfg.WebhookURL != ""
}

func (m *WebhookManager) url() string {
	return m.cfg.WebhookURL + m.cfg.WebhookPath
}

// Setup registers the webhook with Telegram.
func (m *WebhookManager) Setup(ctx context.Context) error {
	url := m.url()

	ok, err := m.bot.SetWebhook(ctx, &bot.SetWebhookParams{URL: url})
	if err != nil || !ok {
		m.healthy.Store(false)
		if err == nil {
			err = errors.New("telegram rejected webhook registration")
		}
		m.logger.ErrorContext(ctx, "Failed to set webhook", "url", url, "error", err)
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	m.healthy.Store(true)
	m.logger.InfoContext(ctx, "Webhook registered", "url", url)
	return nil
}

// Teardown removes the webhook registration. Called on shutdown.
func (m *WebhookManager) Teardown(ctx context.Context) {
	m.healthy.Store(false)

	if _, err := m.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		m.logger.WarnContext(ctx, "Failed to delete webhook", "error", err)
		return
	}
	m.logger.InfoContext(ctx, "Webhook deleted")
}

// Run keeps the webhook healthy until ctx is cancelled. A failing check
// shortens the wait before the next attempt.
func (m *WebhookManager) Run(ctx context.Context) error {
	m.logger.Info("Webhook health loop started",
		"check_interval", healthCheckInterval,
		"retry_interval", healthRetryInterval)

	for {
		interval := healthCheckInterval
		if err := m.check(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.logger.ErrorContext(ctx, "Webhook health check failed", "error", err)
			interval = healthRetryInterval
		}

		select {
		case <-ctx.Done():
			m.logger.Info("Webhook health loop stopped")
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (m *WebhookManager) check(ctx context.Context) error {
	if !m.healthy.Load() {
		m.logger.WarnContext(ctx, "Webhook marked unhealthy, re-registering")
		return m.Setup(ctx)
	}

	info, err := m.bot.GetWebhookInfo(ctx)
	if err != nil {
		m.healthy.Store(false)
		return fmt.Errorf("failed to query webhook info: %w", err)
	}

	if info.URL != m.url() {
		m.logger.WarnContext(ctx, "Webhook URL drifted, re-registering",
			"registered", info.URL, "expected", m.url())
		return m.Setup(ctx)
	}

	return nil
}

// Serve runs the HTTP listener that receives webhook updates and feeds
// them to the bot until ctx is cancelled.
func (m *WebhookManager) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(m.cfg.WebhookPath, m.bot.WebhookHandler())

	srv := &http.Server{
		Addr:              m.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		m.logger.Info("Webhook listener started", "addr", m.cfg.ListenAddr, "path", m.cfg.WebhookPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// StartWebhook consumes updates delivered by the HTTP handler and
	// dispatches them to the registered handlers. It blocks until ctx
	// is cancelled.
	go m.bot.StartWebhook(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("webhook listener failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		m.logger.Warn("Webhook listener shutdown failed", "error", err)
	}
	return nil
}

package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/menu"
)

// displayName builds a human-readable name from the Telegram user fields.
func displayName(u *models.User) string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// nodeMarkup converts a menu node's button rows into an inline keyboard.
func nodeMarkup(node menu.Node) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(node.Rows))
	for _, row := range node.Rows {
		line := make([]models.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			line = append(line, models.InlineKeyboardButton{
				Text:         btn.Label,
				CallbackData: btn.Key,
				URL:          btn.URL,
			})
		}
		rows = append(rows, line)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// recordAction appends the action to the event store and mirrors it to
// the CSV log. Recording failures are logged but never abort handling:
// the user still gets their screen even if bookkeeping is down.
func recordAction(ctx context.Context, deps HandlerDeps, user *models.User, action, source string) {
	event := &database.ActionEvent{
		UserID:      user.ID,
		DisplayName: displayName(user),
		Username:    user.Username,
		Action:      action,
		Source:      source,
	}

	if err := deps.Store.RecordAction(ctx, event); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to record action event",
			"user_id", user.ID, "action", action, "error", err)
	}
	if err := deps.Mirror.Append(event); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to mirror action event to CSV",
			"user_id", user.ID, "action", action, "error", err)
	}
}

// parkFailedEvent enqueues the event for the recovery replayer and sends
// the generic error reply, both best-effort.
func parkFailedEvent(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID, userID int64, eventType database.PendingEventType, eventData string) {
	pending := &database.PendingEvent{
		UserID:    userID,
		EventType: eventType,
		EventData: eventData,
	}
	if err := deps.Store.EnqueuePending(ctx, pending); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to park failed event",
			"user_id", userID, "event_type", eventType, "error", err)
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   deps.Config.Messages.GeneralError,
	})
	if err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send generic error reply",
			"chat_id", chatID, "error", err)
	}
}

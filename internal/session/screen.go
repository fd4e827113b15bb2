package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// API is the slice of the Telegram client the screen protocol needs.
// *bot.Bot satisfies it.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// Screen sends menu screens with the replace-in-place discipline:
// the new message goes out first, then the previous bot message and the
// triggering user message are deleted best-effort.
type Screen struct {
	api    API
	store  *Store
	logger *slog.Logger
}

// NewScreen creates a Screen over the given transport and state store.
func NewScreen(api API, store *Store, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.Default()
	}
	return &Screen{
		api:    api,
		store:  store,
		logger: logger.With("component", "screen"),
	}
}

// Show sends a new screen to the chat and retires the previous one.
//
// Ordering matters: if the send fails, conversation state is left untouched
// and the error is returned so the caller can escalate to the pending-event
// queue. Once the send succeeds the new message ID is recorded even if the
// deletions below fail. Deleting a message that is already gone counts as
// success; any other deletion failure is logged and ignored.
// triggerMessageID, when non-zero, is the message that carried the user's
// action and is deleted with the same policy.
func (s *Screen) Show(ctx context.Context, chatID, userID int64, text string, html bool, markup models.ReplyMarkup, triggerMessageID int) error {
	prevID, hadPrev := s.store.Get(userID)

	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	}
	if html {
		params.ParseMode = models.ParseModeHTML
	}

	msg, err := s.api.SendMessage(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send screen to chat %d: %w", chatID, err)
	}

	s.store.Set(userID, msg.ID)

	if hadPrev && prevID != msg.ID {
		s.deleteQuietly(ctx, chatID, prevID, "previous screen")
	}
	if triggerMessageID != 0 && triggerMessageID != msg.ID && (!hadPrev || triggerMessageID != prevID) {
		s.deleteQuietly(ctx, chatID, triggerMessageID, "trigger message")
	}

	return nil
}

func (s *Screen) deleteQuietly(ctx context.Context, chatID int64, messageID int, what string) {
	_, err := s.api.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err == nil || isMessageGone(err) {
		return
	}
	s.logger.WarnContext(ctx, "Failed to delete message, continuing",
		"what", what, "chat_id", chatID, "message_id", messageID, "error", err)
}

// isMessageGone matches the Telegram API responses for a message that no
// longer exists or was already deleted.
func isMessageGone(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "message to delete not found") ||
		strings.Contains(msg, "message can't be deleted") ||
		strings.Contains(msg, "MESSAGE_ID_INVALID")
}

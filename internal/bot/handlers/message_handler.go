package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/menu"
)

// NewMessageHandler returns the fallback handler for free-form text.
// The bot is menu-driven, so any plain message just brings the user
// back to the welcome screen.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Handling free-form message", "chat_id", chatID, "user_id", user.ID)

	recordAction(ctx, h.deps, user, "message", "")

	welcome := menu.WelcomeNode()
	welcome.Text = personalizeWelcome(welcome.Text, displayName(user))

	err := h.deps.Screen.Show(ctx, chatID, user.ID, welcome.Text, welcome.HTML, nodeMarkup(welcome), update.Message.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to show welcome screen", "chat_id", chatID, "error", err)
		parkFailedEvent(ctx, b, h.deps, chatID, user.ID, database.PendingMessage, update.Message.Text)
	}
}

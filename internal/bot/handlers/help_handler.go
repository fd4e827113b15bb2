package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/menu"
)

// NewHelpHandler returns a handler for the /help command. It shows the
// same help screen that is reachable through the menu.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Help handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	user := update.Message.From
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Handling /help command", "chat_id", chatID, "user_id", user.ID)

	node, ok := menu.Resolve(menu.KeyHelp)
	if !ok {
		log.ErrorContext(ctx, "Help node missing from menu tree")
		return
	}

	recordAction(ctx, h.deps, user, menu.KeyHelp, "")

	err := h.deps.Screen.Show(ctx, chatID, user.ID, node.Text, node.HTML, nodeMarkup(node), update.Message.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to show help screen", "chat_id", chatID, "error", err)
		parkFailedEvent(ctx, b, h.deps, chatID, user.ID, database.PendingMessage, "/help")
	}
}

package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/menu"
)

// NewCallbackHandler returns the handler for all inline keyboard
// selections. Every menu transition flows through here.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

type callbackHandler struct {
	deps HandlerDeps
}

func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	cq := update.CallbackQuery
	if cq == nil {
		log.WarnContext(ctx, "Callback handler received update without callback query", "update_id", update.ID)
		return
	}

	// Stop the client-side spinner right away, before any processing.
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "callback_query_id", cq.ID, "error", err)
	}

	// Callbacks on messages older than 48h arrive with an inaccessible
	// message: the chat is still known but the message cannot be
	// referenced, so it is skipped in the replace-in-place cleanup.
	var chatID int64
	var messageID int
	switch {
	case cq.Message.Message != nil:
		chatID = cq.Message.Message.Chat.ID
		messageID = cq.Message.Message.ID
	case cq.Message.InaccessibleMessage != nil:
		chatID = cq.Message.InaccessibleMessage.Chat.ID
	default:
		log.WarnContext(ctx, "Callback query carries no message at all, ignoring",
			"callback_query_id", cq.ID, "user_id", cq.From.ID)
		return
	}

	key := cq.Data

	node, ok := menu.Resolve(key)
	if !ok {
		// Stale payload from a keyboard of an older bot version.
		log.WarnContext(ctx, "Ignoring unknown selection key", "key", key, "user_id", cq.From.ID)
		return
	}

	log.InfoContext(ctx, "Handling menu selection",
		"key", key, "user_id", cq.From.ID, "chat_id", chatID, "conversion", menu.IsConversion(key))

	recordAction(ctx, h.deps, &cq.From, key, "")

	err := h.deps.Screen.Show(ctx, chatID, cq.From.ID, node.Text, node.HTML, nodeMarkup(node), messageID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to show menu screen", "key", key, "chat_id", chatID, "error", err)
		parkFailedEvent(ctx, b, h.deps, chatID, cq.From.ID, database.PendingCallback, key)
		return
	}

	log.DebugContext(ctx, "Menu screen shown", "key", key, "chat_id", chatID)
}

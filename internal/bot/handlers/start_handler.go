package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/menu"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	user := update.Message.From
	chatID := update.Message.Chat.ID
	source := deepLinkSource(update.Message.Text)

	log.InfoContext(ctx, "Handling /start command",
		"chat_id", chatID, "user_id", user.ID, "source", source)

	// First interaction is recorded before anything else so the reminder
	// timeline starts even if the welcome screen fails to send.
	if err := h.deps.Store.RecordFirstSeen(ctx, user.ID, time.Now().UTC()); err != nil {
		log.ErrorContext(ctx, "Failed to record first interaction", "user_id", user.ID, "error", err)
	}

	recordAction(ctx, h.deps, user, "start", source)

	welcome := menu.WelcomeNode()
	welcome.Text = personalizeWelcome(welcome.Text, displayName(user))

	err := h.deps.Screen.Show(ctx, chatID, user.ID, welcome.Text, welcome.HTML, nodeMarkup(welcome), update.Message.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to show welcome screen", "chat_id", chatID, "error", err)
		parkFailedEvent(ctx, b, h.deps, chatID, user.ID, database.PendingStart, source)
		return
	}

	log.DebugContext(ctx, "Welcome screen shown", "chat_id", chatID)
}

// deepLinkSource extracts the traffic source tag from a /start deep-link
// payload ("/start ads_tg"). An empty tag is stored as "direct".
func deepLinkSource(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// personalizeWelcome addresses the user by name in the greeting line.
func personalizeWelcome(text, name string) string {
	if name == "" {
		return text
	}
	return strings.Replace(text, "Привет!", "Привет, "+name+"!", 1)
}

package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatsHandler returns a handler for the admin /stats command.
// Without arguments it prints per-source aggregates; with a numeric
// argument it lists that user's recorded actions.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Stats handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	args := strings.Fields(update.Message.Text)

	var text string
	var err error
	if len(args) > 1 {
		text, err = h.userReport(ctx, args[1])
	} else {
		text, err = h.sourceReport(ctx)
	}
	if err != nil {
		log.ErrorContext(ctx, "Failed to build stats report", "error", err)
		text = h.deps.Config.Messages.GeneralError
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send stats report", "chat_id", chatID, "error", err)
	}
}

func (h statsHandler) sourceReport(ctx context.Context) (string, error) {
	stats, err := h.deps.Store.StatsBySource(ctx)
	if err != nil {
		return "", err
	}
	if len(stats) == 0 {
		return "Событий пока нет.", nil
	}

	var sb strings.Builder
	sb.WriteString("📊 Статистика по источникам:\n\n")
	for _, s := range stats {
		fmt.Fprintf(&sb, "%s: %d событий, %d пользователей, %d переходов\n",
			s.Source, s.Total, s.Users, s.Conversions)
	}
	return sb.String(), nil
}

func (h statsHandler) userReport(ctx context.Context, arg string) (string, error) {
	userID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return "Использование: /stats <user_id>", nil
	}

	events, err := h.deps.Store.ActionsByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return fmt.Sprintf("Для пользователя %d событий нет.", userID), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Действия пользователя %d:\n\n", userID)
	for _, e := range events {
		fmt.Fprintf(&sb, "%s  %s (%s)\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Action, e.Source)
	}
	return sb.String(), nil
}

package handlers

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewExportHandler returns a handler for the admin /export command.
// It uploads the CSV mirror of the event log as a document.
func NewExportHandler(deps HandlerDeps) bot.HandlerFunc {
	return exportHandler{deps}.Handle
}

type exportHandler struct {
	deps HandlerDeps
}

func (h exportHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "export")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Export handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	path := h.deps.Mirror.Path()

	f, err := os.Open(path)
	if err != nil {
		log.ErrorContext(ctx, "Failed to open CSV mirror for export", "path", path, "error", err)
		if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.GeneralError,
		}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send export error reply", "chat_id", chatID, "error", sendErr)
		}
		return
	}
	defer f.Close()

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: filepath.Base(path),
			Data:     f,
		},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to upload CSV export", "chat_id", chatID, "error", err)
		return
	}

	log.InfoContext(ctx, "CSV export uploaded", "chat_id", chatID, "path", path)
}

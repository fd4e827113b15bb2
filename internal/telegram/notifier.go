package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// Notifier sends plain text messages to a user's private chat. It backs
// the reminder scheduler and the pending-event replayer, which only ever
// push simple notifications.
type Notifier struct {
	bot *bot.Bot
}

// NewNotifier creates a notifier on top of the bot instance.
func NewNotifier(b *bot.Bot) *Notifier {
	return &Notifier{bot: b}
}

// Notify sends text to the user. For private chats the chat ID equals
// the user ID.
func (n *Notifier) Notify(ctx context.Context, userID int64, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to notify user %d: %w", userID, err)
	}
	return nil
}

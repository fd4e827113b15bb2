// Package replay drains the pending-event queue and notifies affected
// users that the bot is reachable again.
package replay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avolkov/finaggbot/internal/database"
)

// Notifier sends a plain text message to a user's chat.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// Templates holds the "we are back" text per pending event type. The
// replayer never re-executes the original action: the menu state it
// depended on is gone, so the user just gets a prompt to retry.
type Templates struct {
	Start    string
	Callback string
	Message  string
}

// Replayer replays unprocessed pending events in creation order.
// Delivery is at-least-once: a crash after notification but before the
// processed mark means a duplicate notice on the next run, which is
// acceptable.
type Replayer struct {
	store     database.Store
	notifier  Notifier
	templates Templates
	logger    *slog.Logger
}

// New creates a Replayer.
func New(store database.Store, notifier Notifier, templates Templates, logger *slog.Logger) *Replayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replayer{
		store:     store,
		notifier:  notifier,
		templates: templates,
		logger:    logger.With("component", "replayer"),
	}
}

// Run drains all unprocessed pending events, oldest first. Events whose
// notification fails stay unprocessed for the next run; one user's failure
// never blocks the rest of the queue.
func (r *Replayer) Run(ctx context.Context) error {
	events, err := r.store.UnprocessedPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to drain pending events: %w", err)
	}
	if len(events) == 0 {
		r.logger.DebugContext(ctx, "No pending events to replay")
		return nil
	}

	r.logger.InfoContext(ctx, "Replaying pending events", "count", len(events))

	var replayed, failed int
	for _, event := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		text := r.template(event.EventType)
		if err := r.notifier.Notify(ctx, event.UserID, text); err != nil {
			failed++
			r.logger.WarnContext(ctx, "Failed to notify user for pending event, leaving unprocessed",
				"pending_id", event.ID, "user_id", event.UserID, "event_type", event.EventType, "error", err)
			continue
		}

		if err := r.store.MarkPendingProcessed(ctx, event.ID); err != nil {
			// The notice went out but the mark failed: the event will be
			// replayed again, producing a duplicate notice (at-least-once).
			failed++
			r.logger.ErrorContext(ctx, "Failed to mark pending event processed",
				"pending_id", event.ID, "user_id", event.UserID, "error", err)
			continue
		}

		replayed++
	}

	r.logger.InfoContext(ctx, "Pending event replay finished", "replayed", replayed, "failed", failed)
	return nil
}

func (r *Replayer) template(eventType database.PendingEventType) string {
	switch eventType {
	case database.PendingStart:
		return r.templates.Start
	case database.PendingCallback:
		return r.templates.Callback
	default:
		return r.templates.Message
	}
}

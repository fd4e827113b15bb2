package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RecordAction appends one action event. Events are immutable once
	// written; there are no update or delete operations.
	RecordAction(ctx context.Context, event *ActionEvent) error

	// StatsBySource returns per-source totals, distinct users, and
	// conversion counts, ordered by total descending.
	StatsBySource(ctx context.Context) ([]SourceStats, error)

	// ActionsByUser returns all action events for a user, newest first.
	ActionsByUser(ctx context.Context, userID int64) ([]ActionEvent, error)

	// RecordFirstSeen inserts a first-seen row for the user if none exists.
	// Calling it again for the same user is a no-op.
	RecordFirstSeen(ctx context.Context, userID int64, now time.Time) error

	// DueForReminder returns, per reminder tier, the users whose flag is
	// still false and whose first interaction is old enough at 'now'.
	DueForReminder(ctx context.Context, now time.Time) (DueReminders, error)

	// MarkReminderSent flips exactly one reminder flag. An unknown user is
	// logged and ignored so a scheduler loop never crashes on it.
	MarkReminderSent(ctx context.Context, userID int64, tier ReminderTier) error

	// EnqueuePending parks an inbound event that could not be handled.
	EnqueuePending(ctx context.Context, event *PendingEvent) error

	// UnprocessedPending returns all unprocessed pending events, oldest
	// first (FIFO replay).
	UnprocessedPending(ctx context.Context) ([]PendingEvent, error)

	// MarkPendingProcessed marks a pending event as handled. Marking an
	// already-processed event is harmless.
	MarkPendingProcessed(ctx context.Context, id int64) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordAction appends one action event.
func (s *sqlxStore) RecordAction(ctx context.Context, event *ActionEvent) error {
	if event == nil {
		return fmt.Errorf("cannot record nil action event")
	}
	if event.UserID == 0 {
		return fmt.Errorf("action event must have a non-zero user_id")
	}
	if event.Action == "" {
		return fmt.Errorf("action event must have a non-empty action")
	}
	if event.Source == "" {
		event.Source = "direct"
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO action_events (user_id, display_name, username, action, source, created_at)
        VALUES (:user_id, :display_name, :username, :action, :source, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording action event",
			"user_id", event.UserID, "action", event.Action, "error", err)
		return fmt.Errorf("failed to record action %q for user %d: %w", event.Action, event.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		event.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after recording action",
			"user_id", event.UserID, "action", event.Action, "error", err)
	}

	s.logger.DebugContext(ctx, "Action event recorded",
		"user_id", event.UserID, "action", event.Action, "source", event.Source, "event_id", event.ID)
	return nil
}

// StatsBySource aggregates action events per source tag.
func (s *sqlxStore) StatsBySource(ctx context.Context) ([]SourceStats, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var stats []SourceStats
	query := `
        SELECT source,
               COUNT(*) AS total,
               COUNT(DISTINCT user_id) AS users,
               SUM(CASE WHEN action LIKE ? THEN 1 ELSE 0 END) AS conversions
        FROM action_events
        GROUP BY source
        ORDER BY total DESC;
    `

	err := s.db.SelectContext(ctx, &stats, query, ConversionPrefix+"%")
	if err != nil {
		s.logger.ErrorContext(ctx, "Error aggregating stats by source", "error", err)
		return nil, fmt.Errorf("failed to aggregate stats by source: %w", err)
	}

	s.logger.DebugContext(ctx, "Aggregated stats by source", "sources", len(stats))
	return stats, nil
}

// ActionsByUser returns all action events for one user, newest first.
func (s *sqlxStore) ActionsByUser(ctx context.Context, userID int64) ([]ActionEvent, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var events []ActionEvent
	query := `
        SELECT id, user_id, display_name, username, action, source, created_at
        FROM action_events
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC;
    `

	err := s.db.SelectContext(ctx, &events, query, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting actions by user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get actions for user %d: %w", userID, err)
	}

	return events, nil
}

// RecordFirstSeen inserts a first-seen row unless one already exists.
func (s *sqlxStore) RecordFirstSeen(ctx context.Context, userID int64, now time.Time) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	query := `
        INSERT INTO user_first_seen (user_id, first_seen_at, reminder_1_sent, reminder_3_sent, reminder_10_sent)
        VALUES (?, ?, 0, 0, 0)
        ON CONFLICT (user_id) DO NOTHING;
    `

	result, err := s.db.ExecContext(ctx, query, userID, now.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording first-seen", "user_id", userID, "error", err)
		return fmt.Errorf("failed to record first-seen for user %d: %w", userID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 1 {
		s.logger.InfoContext(ctx, "New user first-seen recorded", "user_id", userID)
	}
	return nil
}

// DueForReminder returns the users due per tier at 'now'. The tier queries
// are disjoint per flag but a single user may be due in several tiers when
// multiple thresholds are simultaneously overdue.
func (s *sqlxStore) DueForReminder(ctx context.Context, now time.Time) (DueReminders, error) {
	var due DueReminders

	tiers := []struct {
		flag string
		days ReminderTier
		dst  *[]int64
	}{
		{"reminder_1_sent", ReminderDay1, &due.Day1},
		{"reminder_3_sent", ReminderDay3, &due.Day3},
		{"reminder_10_sent", ReminderDay10, &due.Day10},
	}

	for _, tier := range tiers {
		if ctx.Err() != nil {
			return DueReminders{}, ctx.Err()
		}

		cutoff := now.UTC().Add(-time.Duration(tier.days) * 24 * time.Hour)
		query := fmt.Sprintf(`
            SELECT user_id FROM user_first_seen
            WHERE %s = 0 AND first_seen_at <= ?
            ORDER BY first_seen_at ASC;
        `, tier.flag)

		if err := s.db.SelectContext(ctx, tier.dst, query, cutoff); err != nil {
			s.logger.ErrorContext(ctx, "Error scanning due reminders",
				"tier_days", int(tier.days), "error", err)
			return DueReminders{}, fmt.Errorf("failed to scan %d-day reminder tier: %w", tier.days, err)
		}
	}

	return due, nil
}

// MarkReminderSent sets one reminder flag to true. Flags are monotonic:
// there is no code path that resets one.
func (s *sqlxStore) MarkReminderSent(ctx context.Context, userID int64, tier ReminderTier) error {
	var flag string
	switch tier {
	case ReminderDay1:
		flag = "reminder_1_sent"
	case ReminderDay3:
		flag = "reminder_3_sent"
	case ReminderDay10:
		flag = "reminder_10_sent"
	default:
		return fmt.Errorf("unknown reminder tier %d", tier)
	}

	query := fmt.Sprintf(`UPDATE user_first_seen SET %s = 1 WHERE user_id = ?;`, flag)
	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error marking reminder sent",
			"user_id", userID, "tier_days", int(tier), "error", err)
		return fmt.Errorf("failed to mark %d-day reminder sent for user %d: %w", tier, userID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		// Unknown user: logged, not an error, so the scheduler loop continues.
		s.logger.WarnContext(ctx, "Marked reminder for unknown user, ignoring",
			"user_id", userID, "tier_days", int(tier))
	}
	return nil
}

// EnqueuePending parks a failed inbound event for later replay.
func (s *sqlxStore) EnqueuePending(ctx context.Context, event *PendingEvent) error {
	if event == nil {
		return fmt.Errorf("cannot enqueue nil pending event")
	}
	if event.UserID == 0 {
		return fmt.Errorf("pending event must have a non-zero user_id")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO pending_events (user_id, event_type, event_data, created_at, processed)
        VALUES (:user_id, :event_type, :event_data, :created_at, 0);
    `

	result, err := s.db.NamedExecContext(ctx, query, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error enqueueing pending event",
			"user_id", event.UserID, "event_type", event.EventType, "error", err)
		return fmt.Errorf("failed to enqueue pending event for user %d: %w", event.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		event.ID = id
	}

	s.logger.InfoContext(ctx, "Pending event enqueued",
		"user_id", event.UserID, "event_type", event.EventType, "pending_id", event.ID)
	return nil
}

// UnprocessedPending returns unprocessed pending events, oldest first.
func (s *sqlxStore) UnprocessedPending(ctx context.Context) ([]PendingEvent, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var events []PendingEvent
	query := `
        SELECT id, user_id, event_type, event_data, created_at, processed
        FROM pending_events
        WHERE processed = 0
        ORDER BY created_at ASC, id ASC;
    `

	err := s.db.SelectContext(ctx, &events, query)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error fetching unprocessed pending events", "error", err)
		return nil, fmt.Errorf("failed to fetch unprocessed pending events: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched unprocessed pending events", "count", len(events))
	return events, nil
}

// MarkPendingProcessed sets processed on one pending event. Setting an
// already-true flag is harmless.
func (s *sqlxStore) MarkPendingProcessed(ctx context.Context, id int64) error {
	query := `UPDATE pending_events SET processed = 1 WHERE id = ?;`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		s.logger.ErrorContext(ctx, "Error marking pending event processed", "pending_id", id, "error", err)
		return fmt.Errorf("failed to mark pending event %d processed: %w", id, err)
	}
	return nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}

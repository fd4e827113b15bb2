// Package reminder implements the re-engagement reminder loop: it scans
// first-interaction timestamps and sends one-time reminders at the 1, 3,
// and 10 day marks.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avolkov/finaggbot/internal/database"
)

// Notifier sends a plain text message to a user's chat.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// Templates holds the reminder text per tier.
type Templates struct {
	Day1  string
	Day3  string
	Day10 string
}

// Config controls the scheduler timing.
type Config struct {
	// Interval between clean cycles.
	Interval time.Duration
	// RetryInterval replaces Interval after a failed cycle.
	RetryInterval time.Duration
	// SendTimeout bounds each per-user send so a hung transport call
	// cannot stall the loop.
	SendTimeout time.Duration
	// MaxCycleFailures is the consecutive-failure threshold that triggers
	// an error-level report.
	MaxCycleFailures int
}

// Scheduler runs the reminder loop. Transport recovery is deliberately not
// its job: the webhook health loop owns reconnection, the scheduler only
// keeps a local consecutive-failure counter and backs off.
type Scheduler struct {
	store     database.Store
	notifier  Notifier
	templates Templates
	cfg       Config
	logger    *slog.Logger

	consecutiveFailures int
}

// New creates a reminder Scheduler.
func New(store database.Store, notifier Notifier, templates Templates, cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Minute
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.MaxCycleFailures <= 0 {
		cfg.MaxCycleFailures = 3
	}
	return &Scheduler{
		store:     store,
		notifier:  notifier,
		templates: templates,
		cfg:       cfg,
		logger:    logger.With("component", "reminder_scheduler"),
	}
}

// Run executes cycles until the context is cancelled. In-flight sends of
// the current cycle complete (or time out) before Run returns; no new
// cycle starts after cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Reminder scheduler started",
		"interval", s.cfg.Interval, "retry_interval", s.cfg.RetryInterval)

	timer := time.NewTimer(0) // first cycle immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		}

		sleep := s.cfg.Interval
		if err := s.RunCycle(ctx, time.Now()); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("Reminder scheduler stopped mid-cycle")
				return ctx.Err()
			}
			sleep = s.cfg.RetryInterval
		}

		timer.Reset(sleep)
	}
}

// RunCycle performs one scan-and-send pass at the given time. It returns
// an error only for cycle-level failures (scan failed, or every attempted
// send failed); individual send failures are logged and skipped so no
// user's failure blocks another's reminder.
func (s *Scheduler) RunCycle(ctx context.Context, now time.Time) error {
	due, err := s.store.DueForReminder(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Reminder scan failed", "error", err)
		return s.recordCycleFailure(ctx, fmt.Errorf("reminder scan failed: %w", err))
	}

	if due.Empty() {
		s.logger.DebugContext(ctx, "No reminders due")
		s.recordCleanCycle()
		return nil
	}

	tiers := []struct {
		tier  database.ReminderTier
		users []int64
		text  string
	}{
		{database.ReminderDay1, due.Day1, s.templates.Day1},
		{database.ReminderDay3, due.Day3, s.templates.Day3},
		{database.ReminderDay10, due.Day10, s.templates.Day10},
	}

	var attempted, sent int
	for _, t := range tiers {
		for _, userID := range t.users {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			attempted++
			if s.sendOne(ctx, userID, t.tier, t.text) {
				sent++
			}
		}
	}

	s.logger.InfoContext(ctx, "Reminder cycle finished", "attempted", attempted, "sent", sent)

	if attempted > 0 && sent == 0 {
		return s.recordCycleFailure(ctx, fmt.Errorf("all %d reminder sends failed", attempted))
	}

	s.recordCleanCycle()
	return nil
}

// sendOne delivers one reminder with a bounded timeout and flips the tier
// flag on success. Returns whether the send succeeded.
func (s *Scheduler) sendOne(ctx context.Context, userID int64, tier database.ReminderTier, text string) bool {
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	if err := s.notifier.Notify(sendCtx, userID, text); err != nil {
		s.logger.WarnContext(ctx, "Failed to send reminder, skipping user",
			"user_id", userID, "tier_days", int(tier), "error", err)
		return false
	}

	if err := s.store.MarkReminderSent(ctx, userID, tier); err != nil {
		// The reminder went out but the flag write failed: the user may
		// get a duplicate next cycle (at-least-once delivery).
		s.logger.ErrorContext(ctx, "Failed to mark reminder sent",
			"user_id", userID, "tier_days", int(tier), "error", err)
	}
	return true
}

func (s *Scheduler) recordCleanCycle() {
	s.consecutiveFailures = 0
}

func (s *Scheduler) recordCycleFailure(ctx context.Context, err error) error {
	s.consecutiveFailures++
	if s.consecutiveFailures >= s.cfg.MaxCycleFailures {
		s.logger.ErrorContext(ctx, "Reminder cycles keep failing, transport likely down",
			"consecutive_failures", s.consecutiveFailures, "error", err)
		s.consecutiveFailures = 0
	}
	return err
}

package database

import "time"

// ReminderTier identifies a re-engagement reminder, in days since first
// interaction. Each tier maps to one flag column on user_first_seen and is
// sent at most once per user.
type ReminderTier int

const (
	ReminderDay1  ReminderTier = 1
	ReminderDay3  ReminderTier = 3
	ReminderDay10 ReminderTier = 10
)

// PendingEventType classifies the inbound event that failed to be handled.
type PendingEventType string

const (
	PendingStart    PendingEventType = "start"
	PendingCallback PendingEventType = "callback"
	PendingMessage  PendingEventType = "message"
)

// ConversionPrefix marks actions where the user reached the final
// "get the offer" step. StatsBySource counts these as conversions.
const ConversionPrefix = "get_"

// ActionEvent is one recorded user action (menu click or bot start).
// Rows are append-only and never updated or deleted.
type ActionEvent struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Username    string    `db:"username"`
	Action      string    `db:"action"`
	Source      string    `db:"source"`
	CreatedAt   time.Time `db:"created_at"`
}

// UserFirstSeen records when a user first started the bot, plus one flag
// per reminder tier. Flags only ever go from false to true.
type UserFirstSeen struct {
	UserID         int64     `db:"user_id"`
	FirstSeenAt    time.Time `db:"first_seen_at"`
	Reminder1Sent  bool      `db:"reminder_1_sent"`
	Reminder3Sent  bool      `db:"reminder_3_sent"`
	Reminder10Sent bool      `db:"reminder_10_sent"`
}

// PendingEvent is an inbound event that could not be answered synchronously,
// parked for the recovery replayer. EventData carries the original payload
// (callback key or message text) for diagnostics; replay never re-executes it.
type PendingEvent struct {
	ID        int64            `db:"id"`
	UserID    int64            `db:"user_id"`
	EventType PendingEventType `db:"event_type"`
	EventData string           `db:"event_data"`
	CreatedAt time.Time        `db:"created_at"`
	Processed bool             `db:"processed"`
}

// SourceStats aggregates action events per traffic source.
type SourceStats struct {
	Source      string `db:"source"`
	Total       int64  `db:"total"`
	Users       int64  `db:"users"`
	Conversions int64  `db:"conversions"`
}

// DueReminders holds the user IDs due for each reminder tier in one scan.
// A user whose scheduler was down long enough may appear in several tiers;
// the scheduler must handle all applicable tiers in the same pass.
type DueReminders struct {
	Day1  []int64
	Day3  []int64
	Day10 []int64
}

// Empty reports whether no user is due in any tier.
func (d DueReminders) Empty() bool {
	return len(d.Day1) == 0 && len(d.Day3) == 0 && len(d.Day10) == 0
}

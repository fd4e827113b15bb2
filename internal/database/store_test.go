package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/finaggbot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func TestRecordFirstSeenIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordFirstSeen(ctx, 100, first))

	// Second call with a later timestamp must not move first_seen_at.
	require.NoError(t, store.RecordFirstSeen(ctx, 100, first.Add(48*time.Hour)))

	due, err := store.DueForReminder(ctx, first.Add(25*time.Hour))
	require.NoError(t, err)
	require.Equal(t, []int64{100}, due.Day1, "first_seen_at must keep the first call's time")
	require.Empty(t, due.Day3)
	require.Empty(t, due.Day10)
}

func TestDueForReminderTiers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	// User 1: seen 25h ago (due day-1 only).
	// User 2: seen 11 days ago (due in all three tiers at once).
	// User 3: seen 1h ago (due nowhere).
	require.NoError(t, store.RecordFirstSeen(ctx, 1, now.Add(-25*time.Hour)))
	require.NoError(t, store.RecordFirstSeen(ctx, 2, now.Add(-11*24*time.Hour)))
	require.NoError(t, store.RecordFirstSeen(ctx, 3, now.Add(-time.Hour)))

	due, err := store.DueForReminder(ctx, now)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{1, 2}, due.Day1)
	require.Equal(t, []int64{2}, due.Day3)
	require.Equal(t, []int64{2}, due.Day10)

	// Marking a tier removes the user from that tier only.
	require.NoError(t, store.MarkReminderSent(ctx, 2, database.ReminderDay1))

	due, err = store.DueForReminder(ctx, now)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, due.Day1)
	require.Equal(t, []int64{2}, due.Day3)
	require.Equal(t, []int64{2}, due.Day10)
}

func TestMarkReminderSent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordFirstSeen(ctx, 7, now.Add(-2*24*time.Hour)))
	require.NoError(t, store.MarkReminderSent(ctx, 7, database.ReminderDay1))

	// Once true, the user never reappears in that tier.
	due, err := store.DueForReminder(ctx, now.Add(100*24*time.Hour))
	require.NoError(t, err)
	require.NotContains(t, due.Day1, int64(7))
	require.Contains(t, due.Day3, int64(7))

	// Unknown user: logged, not an error.
	require.NoError(t, store.MarkReminderSent(ctx, 999, database.ReminderDay1))

	// Unknown tier is a programming error and does fail.
	require.Error(t, store.MarkReminderSent(ctx, 7, database.ReminderTier(5)))
}

func TestPendingQueueFIFO(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	events := []*database.PendingEvent{
		{UserID: 1, EventType: database.PendingStart, CreatedAt: base},
		{UserID: 2, EventType: database.PendingCallback, EventData: "mfo_150k", CreatedAt: base.Add(time.Minute)},
		{UserID: 3, EventType: database.PendingMessage, EventData: "hello", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, ev := range events {
		require.NoError(t, store.EnqueuePending(ctx, ev))
	}

	got, err := store.UnprocessedPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, int64(1), got[0].UserID, "oldest first")
	require.Equal(t, int64(2), got[1].UserID)
	require.Equal(t, int64(3), got[2].UserID)

	require.NoError(t, store.MarkPendingProcessed(ctx, got[0].ID))

	got, err = store.UnprocessedPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(2), got[0].UserID)
	require.Equal(t, int64(3), got[1].UserID)

	// Marking twice is harmless.
	require.NoError(t, store.MarkPendingProcessed(ctx, events[0].ID))
}

func TestStatsBySource(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	record := func(userID int64, action, source string) {
		t.Helper()
		require.NoError(t, store.RecordAction(ctx, &database.ActionEvent{
			UserID: userID,
			Action: action,
			Source: source,
		}))
	}

	record(1, "start", "ads")
	record(1, "mfo_150k", "ads")
	record(1, "get_loan_express", "ads")
	record(2, "start", "ads")
	record(3, "start", "")
	record(3, "get_pts_loan", "")

	stats, err := store.StatsBySource(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// Ordered by total descending.
	require.Equal(t, "ads", stats[0].Source)
	require.EqualValues(t, 4, stats[0].Total)
	require.EqualValues(t, 2, stats[0].Users)
	require.EqualValues(t, 1, stats[0].Conversions)

	require.Equal(t, "direct", stats[1].Source, "empty source defaults to direct")
	require.EqualValues(t, 2, stats[1].Total)
	require.EqualValues(t, 1, stats[1].Users)
	require.EqualValues(t, 1, stats[1].Conversions)
}

func TestActionsByUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, action := range []string{"start", "start_menu", "mfo_150k"} {
		require.NoError(t, store.RecordAction(ctx, &database.ActionEvent{
			UserID:    42,
			Action:    action,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.RecordAction(ctx, &database.ActionEvent{UserID: 43, Action: "start"}))

	events, err := store.ActionsByUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "mfo_150k", events[0].Action, "newest first")
	require.Equal(t, "start", events[2].Action)
}

package reminder_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/reminder"
)

type fakeNotifier struct {
	failFor map[int64]error
	failAll error
	sent    map[int64][]string
}

func (f *fakeNotifier) Notify(_ context.Context, userID int64, text string) error {
	if f.failAll != nil {
		return f.failAll
	}
	if err, ok := f.failFor[userID]; ok {
		return err
	}
	if f.sent == nil {
		f.sent = make(map[int64][]string)
	}
	f.sent[userID] = append(f.sent[userID], text)
	return nil
}

var testTemplates = reminder.Templates{
	Day1:  "day1",
	Day3:  "day3",
	Day10: "day10",
}

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func TestCycleSendsDueRemindersOnce(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordFirstSeen(ctx, 1, t0))

	notifier := &fakeNotifier{}
	s := reminder.New(store, notifier, testTemplates, reminder.Config{}, nil)

	// At T0+25h the user is due for the 1-day reminder.
	require.NoError(t, s.RunCycle(ctx, t0.Add(25*time.Hour)))
	require.Equal(t, []string{"day1"}, notifier.sent[1])

	// At T0+26h the same user must be absent from the 1-day set.
	require.NoError(t, s.RunCycle(ctx, t0.Add(26*time.Hour)))
	require.Equal(t, []string{"day1"}, notifier.sent[1], "no duplicate delivery")
}

func TestCycleHandlesMultipleOverdueTiersInOnePass(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Scheduler was "down" for 11 days: all three tiers overdue at once.
	require.NoError(t, store.RecordFirstSeen(ctx, 1, t0))

	notifier := &fakeNotifier{}
	s := reminder.New(store, notifier, testTemplates, reminder.Config{}, nil)

	require.NoError(t, s.RunCycle(ctx, t0.Add(11*24*time.Hour)))
	require.Equal(t, []string{"day1", "day3", "day10"}, notifier.sent[1])

	// All flags set: the next cycle sends nothing.
	require.NoError(t, s.RunCycle(ctx, t0.Add(12*24*time.Hour)))
	require.Equal(t, []string{"day1", "day3", "day10"}, notifier.sent[1])
}

func TestCycleOneUserFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordFirstSeen(ctx, 1, t0))
	require.NoError(t, store.RecordFirstSeen(ctx, 2, t0))

	notifier := &fakeNotifier{failFor: map[int64]error{1: errors.New("chat blocked")}}
	s := reminder.New(store, notifier, testTemplates, reminder.Config{}, nil)

	// Partial success is a clean cycle.
	require.NoError(t, s.RunCycle(ctx, t0.Add(25*time.Hour)))
	require.Empty(t, notifier.sent[1])
	require.Equal(t, []string{"day1"}, notifier.sent[2])

	// The failed user stays due for the next cycle.
	notifier.failFor = nil
	require.NoError(t, s.RunCycle(ctx, t0.Add(26*time.Hour)))
	require.Equal(t, []string{"day1"}, notifier.sent[1])
}

func TestCycleTotalSendFailureIsCycleFailure(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordFirstSeen(ctx, 1, t0))

	notifier := &fakeNotifier{failAll: errors.New("gateway down")}
	s := reminder.New(store, notifier, testTemplates, reminder.Config{MaxCycleFailures: 3}, nil)

	now := t0.Add(25 * time.Hour)
	for i := 0; i < 4; i++ {
		require.Error(t, s.RunCycle(ctx, now))
	}

	// Flags untouched: the user is still due once the transport recovers.
	notifier.failAll = nil
	require.NoError(t, s.RunCycle(ctx, now))
	require.Equal(t, []string{"day1"}, notifier.sent[1])
}

func TestCycleEmptyScanIsClean(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	notifier := &fakeNotifier{}
	s := reminder.New(store, notifier, testTemplates, reminder.Config{}, nil)

	require.NoError(t, s.RunCycle(context.Background(), time.Now()))
	require.Empty(t, notifier.sent)
}

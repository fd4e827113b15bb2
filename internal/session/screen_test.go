package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/finaggbot/internal/session"
)

// fakeAPI records sends and deletes and lets tests inject failures.
type fakeAPI struct {
	nextMessageID int
	sendErr       error
	deleteErr     error
	sent          []string
	deleted       []int
}

func (f *fakeAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextMessageID++
	f.sent = append(f.sent, params.Text)
	return &models.Message{ID: f.nextMessageID}, nil
}

func (f *fakeAPI) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	f.deleted = append(f.deleted, params.MessageID)
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return true, nil
}

func TestShowReplacesPreviousScreen(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	store := session.NewStore()
	screen := session.NewScreen(api, store, nil)
	ctx := context.Background()

	require.NoError(t, screen.Show(ctx, 10, 10, "first", false, nil, 0))

	id, ok := store.Get(10)
	require.True(t, ok)
	require.Equal(t, 1, id)
	require.Empty(t, api.deleted, "nothing to delete on the first screen")

	require.NoError(t, screen.Show(ctx, 10, 10, "second", false, nil, 0))

	id, ok = store.Get(10)
	require.True(t, ok)
	require.Equal(t, 2, id, "state must hold the newest message id")
	require.Equal(t, []int{1}, api.deleted, "previous screen deleted exactly once")
}

func TestShowDeletesTriggerMessage(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{nextMessageID: 100}
	store := session.NewStore()
	screen := session.NewScreen(api, store, nil)

	require.NoError(t, screen.Show(context.Background(), 10, 10, "screen", false, nil, 55))
	require.Equal(t, []int{55}, api.deleted)
}

func TestShowToleratesMissingPreviousMessage(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{nextMessageID: 1, deleteErr: errors.New("Bad Request: message to delete not found")}
	store := session.NewStore()
	store.Set(10, 1)
	screen := session.NewScreen(api, store, nil)

	// "already deleted" is success: no error surfaces to the handler.
	require.NoError(t, screen.Show(context.Background(), 10, 10, "next", false, nil, 0))

	id, ok := store.Get(10)
	require.True(t, ok)
	require.Equal(t, 2, id)
}

func TestShowSendFailureKeepsState(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{sendErr: errors.New("gateway timeout")}
	store := session.NewStore()
	store.Set(10, 7)
	screen := session.NewScreen(api, store, nil)

	err := screen.Show(context.Background(), 10, 10, "next", false, nil, 0)
	require.Error(t, err)

	id, ok := store.Get(10)
	require.True(t, ok)
	require.Equal(t, 7, id, "failed send must not advance conversation state")
	require.Empty(t, api.deleted, "failed send must not delete anything")
}

func TestStorePerUserIsolation(t *testing.T) {
	t.Parallel()

	store := session.NewStore()
	store.Set(1, 10)
	store.Set(2, 20)

	id, ok := store.Get(1)
	require.True(t, ok)
	require.Equal(t, 10, id)

	store.Clear(1)
	_, ok = store.Get(1)
	require.False(t, ok)

	id, ok = store.Get(2)
	require.True(t, ok)
	require.Equal(t, 20, id)
}

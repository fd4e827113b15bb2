package handlers_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/finaggbot/internal/bot/handlers"
	"github.com/avolkov/finaggbot/internal/config"
	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/export"
	"github.com/avolkov/finaggbot/internal/menu"
	"github.com/avolkov/finaggbot/internal/session"
)

// fakeTransport answers Bot API calls locally so handlers can run against a
// real bot instance without the network. Each call is recorded by method
// name; methods listed in fail get a Bad Request response instead.
type fakeTransport struct {
	mu     sync.Mutex
	calls  []string
	fail   map[string]bool
	nextID int
}

func (f *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	method := path.Base(req.URL.Path)

	f.mu.Lock()
	f.calls = append(f.calls, method)
	failed := f.fail[method]
	f.nextID++
	messageID := 100 + f.nextID
	f.mu.Unlock()

	var body string
	switch {
	case failed:
		body = `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
	case method == "sendMessage":
		body = fmt.Sprintf(`{"ok":true,"result":{"message_id":%d,"date":1700000000,"chat":{"id":1,"type":"private"}}}`, messageID)
	default:
		body = `{"ok":true,"result":true}`
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}

func (f *fakeTransport) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func newTestBot(t *testing.T, transport *fakeTransport) *bot.Bot {
	t.Helper()

	b, err := bot.New("123456:test-token",
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(time.Second, transport))
	require.NoError(t, err)
	return b
}

func newTestDeps(t *testing.T, b *bot.Bot) (handlers.HandlerDeps, database.Store) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	store := database.NewStore(db, nil)

	mirror, err := export.NewMirror(filepath.Join(t.TempDir(), "log.csv"), nil)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps := handlers.HandlerDeps{
		Logger: log,
		Config: &config.Config{Messages: config.MessagesConfig{GeneralError: "что-то пошло не так"}},
		Store:  store,
		Mirror: mirror,
		Screen: session.NewScreen(b, session.NewStore(), log),
	}
	return deps, store
}

func TestCallbackOnExpiredMessageStillNavigates(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	b := newTestBot(t, transport)
	deps, store := newTestDeps(t, b)
	ctx := context.Background()

	// A callback on a message older than 48h carries only the
	// inaccessible variant: the chat is known, the message is not.
	update := &models.Update{
		ID: 1,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			From: models.User{ID: 42, FirstName: "Оля", Username: "olya"},
			Data: menu.KeyMFOList,
			Message: models.MaybeInaccessibleMessage{
				InaccessibleMessage: &models.InaccessibleMessage{
					Chat: models.Chat{ID: 77},
				},
			},
		},
	}

	handlers.NewCallbackHandler(deps)(ctx, b, update)

	require.Equal(t, 1, transport.count("answerCallbackQuery"))
	require.Equal(t, 1, transport.count("sendMessage"), "new screen must still go out")
	require.Zero(t, transport.count("deleteMessage"), "nothing to clean up for an unreachable message")

	actions, err := store.ActionsByUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, menu.KeyMFOList, actions[0].Action)

	pending, err := store.UnprocessedPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestCallbackWithUnknownKeyIsIgnored(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	b := newTestBot(t, transport)
	deps, store := newTestDeps(t, b)
	ctx := context.Background()

	update := &models.Update{
		ID: 2,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-2",
			From: models.User{ID: 42, FirstName: "Оля"},
			Data: "removed_in_v2",
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 55, Date: 1700000000, Chat: models.Chat{ID: 77}},
			},
		},
	}

	handlers.NewCallbackHandler(deps)(ctx, b, update)

	require.Equal(t, 1, transport.count("answerCallbackQuery"), "spinner is stopped even for stale payloads")
	require.Zero(t, transport.count("sendMessage"))

	actions, err := store.ActionsByUser(ctx, 42)
	require.NoError(t, err)
	require.Empty(t, actions)
}

func TestCallbackSendFailureParksPendingEvent(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{fail: map[string]bool{"sendMessage": true}}
	b := newTestBot(t, transport)
	deps, store := newTestDeps(t, b)
	ctx := context.Background()

	update := &models.Update{
		ID: 3,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-3",
			From: models.User{ID: 42, FirstName: "Оля", Username: "olya"},
			Data: menu.KeyPTS,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 55, Date: 1700000000, Chat: models.Chat{ID: 77}},
			},
		},
	}

	handlers.NewCallbackHandler(deps)(ctx, b, update)

	// The action event is written before the screen goes out, so it
	// survives the send failure.
	actions, err := store.ActionsByUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, menu.KeyPTS, actions[0].Action)

	// The failed interaction itself lands in the recovery queue with the
	// selection key, so the replayer can point the user back to the menu.
	pending, err := store.UnprocessedPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, int64(42), pending[0].UserID)
	require.Equal(t, database.PendingCallback, pending[0].EventType)
	require.Equal(t, menu.KeyPTS, pending[0].EventData)
}

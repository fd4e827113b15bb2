package export_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/export"
)

func TestMirrorAppend(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stats_log.csv")

	m, err := export.NewMirror(path, nil)
	require.NoError(t, err)

	err = m.Append(&database.ActionEvent{
		UserID:      42,
		DisplayName: "Ivan Petrov",
		Username:    "ivan",
		Action:      "get_loan_express",
		Source:      "ads",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Reopening must not rewrite the header.
	m2, err := export.NewMirror(path, nil)
	require.NoError(t, err)
	require.NoError(t, m2.Append(&database.ActionEvent{
		UserID:    43,
		Action:    "start",
		Source:    "direct",
		CreatedAt: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"user_id", "name", "username", "action", "source", "event_time"}, rows[0])
	require.Equal(t, []string{"42", "Ivan Petrov", "ivan", "get_loan_express", "ads", "2025-06-01T12:00:00Z"}, rows[1])
	require.Equal(t, "43", rows[2][0])
}

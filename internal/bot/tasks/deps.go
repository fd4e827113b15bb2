// Package tasks implements the cron-scheduled background tasks of the
// bot: database maintenance and the pending-event sweep.
package tasks

import (
	"log/slog"

	"github.com/avolkov/finaggbot/internal/config"
	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/replay"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Replayer *replay.Replayer
	Config   *config.Config
}

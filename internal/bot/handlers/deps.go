// Package handlers contains Telegram bot command and callback handlers,
// along with their registration logic and middleware.
package handlers

import (
	"log/slog"

	"github.com/avolkov/finaggbot/internal/config"
	"github.com/avolkov/finaggbot/internal/database"
	"github.com/avolkov/finaggbot/internal/export"
	"github.com/avolkov/finaggbot/internal/session"
)

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
	Mirror *export.Mirror
	Screen *session.Screen
}

// Package export maintains a flat append-only CSV mirror of the event store
// and serves it for admin download.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/avolkov/finaggbot/internal/database"
)

var csvHeader = []string{"user_id", "name", "username", "action", "source", "event_time"}

// Mirror appends every recorded action event to a CSV file. It is a
// secondary sink: a mirror write failure must never fail the primary
// database write, so callers log returned errors and continue.
type Mirror struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewMirror opens (or creates) the CSV log at path, writing the header row
// for a new file.
func NewMirror(path string, logger *slog.Logger) (*Mirror, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Mirror{
		path:   path,
		logger: logger.With("component", "csv_mirror"),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := m.append(csvHeader); err != nil {
			return nil, fmt.Errorf("failed to create CSV mirror %s: %w", path, err)
		}
		m.logger.Info("CSV mirror created", "path", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat CSV mirror %s: %w", path, err)
	}

	return m, nil
}

// Path returns the location of the CSV file for download handlers.
func (m *Mirror) Path() string {
	return m.path
}

// Append writes one action event row to the CSV log.
func (m *Mirror) Append(event *database.ActionEvent) error {
	if event == nil {
		return fmt.Errorf("cannot mirror nil action event")
	}

	row := []string{
		fmt.Sprintf("%d", event.UserID),
		event.DisplayName,
		event.Username,
		event.Action,
		event.Source,
		event.CreatedAt.UTC().Format(time.RFC3339),
	}

	if err := m.append(row); err != nil {
		return fmt.Errorf("failed to mirror action %q for user %d: %w", event.Action, event.UserID, err)
	}
	return nil
}

func (m *Mirror) append(row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

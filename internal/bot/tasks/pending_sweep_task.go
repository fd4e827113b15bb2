package tasks

import (
	"context"
	"fmt"
	"time"
)

// newPendingSweepTask creates the scheduled task that drains the
// pending-event queue. The one-shot replay at startup covers the normal
// outage case; this sweep picks up events whose recovery notification
// failed back then and is still owed.
func newPendingSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "pending_sweep")

	return func(ctx context.Context) error {
		log.DebugContext(ctx, "Starting pending-event sweep...")
		startTime := time.Now()

		err := deps.Replayer.Run(ctx)

		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Pending-event sweep failed", "error", err, "duration", duration)
			return fmt.Errorf("pending sweep failed: %w", err)
		}

		log.DebugContext(ctx, "Pending-event sweep completed", "duration", duration)
		return nil
	}
}

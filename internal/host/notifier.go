package host

import (
	"context"

	"github.com/presencekit/bridge/internal/logging"
)

// LogNotifier writes notifications to the log instead of the host UI.
// Used when the host has no notification surface configured.
type LogNotifier struct {
	Log *logging.Logger
}

// Info logs an informational notification.
func (n *LogNotifier) Info(_ context.Context, message string) {
	n.Log.Info(message)
}

// Warn logs a warning notification.
func (n *LogNotifier) Warn(_ context.Context, message string) {
	n.Log.Warn(message)
}

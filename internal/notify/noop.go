package notify

import (
	"context"
	"log/slog"
)

// Noop is the Notifier used when no Telegram token is configured; the
// console output still happens, delivery is skipped.
type Noop struct {
	log *slog.Logger
}

// NewNoop creates a Noop notifier.
func NewNoop(log *slog.Logger) *Noop {
	if log == nil {
		log = slog.Default()
	}
	return &Noop{log: log}
}

// Announce logs the skipped delivery and succeeds.
func (n *Noop) Announce(_ context.Context, p Payload) error {
	n.log.Debug("no notifier configured, skipping delivery", "title", p.Title)
	return nil
}

package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded alerts. It is used
// when Discord (or another notification backend) is not configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards alerts with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendSyncAlert logs and discards a sync alert.
func (n *NoOpNotifier) SendSyncAlert(_ context.Context, alert *SyncAlert) error {
	n.log.Debug("notification discarded (no backend configured)",
		"account", alert.AccountNickname,
		"failed", alert.Failed,
	)
	return nil
}

// compile-time interface check.
var _ Notifier = (*NoOpNotifier)(nil)

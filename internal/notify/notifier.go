// Package notify defines the notification interface and implementations
// for sync failure alerts.
package notify

import "context"

// SyncAlert contains the data needed to report a problematic sync run.
type SyncAlert struct {
	AccountNickname string
	Trigger         string // manual, scheduled
	Failed          bool   // profile fetch failed, run aborted
	Error           string
	ProductsReason  string
	StatsReason     string
	LastSync        string
}

// Notifier defines the interface for delivering sync alerts.
type Notifier interface {
	SendSyncAlert(ctx context.Context, alert *SyncAlert) error
}

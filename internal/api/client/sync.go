package client

import (
	"context"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// SyncResult mirrors the sync-account response body.
type SyncResult struct {
	Run     domain.SyncRun `json:"run"`
	Account domain.Account `json:"account"`
}

// syncAllResult mirrors the sync-all response body.
type syncAllResult struct {
	Runs []domain.SyncRun `json:"runs"`
}

// SyncAccount triggers a synchronization for one account.
func (c *Client) SyncAccount(ctx context.Context, id string) (*SyncResult, error) {
	var res SyncResult
	if err := c.post(ctx, "/api/v1/accounts/"+id+"/sync", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SyncAll triggers a synchronization pass over every account.
func (c *Client) SyncAll(ctx context.Context) ([]domain.SyncRun, error) {
	var res syncAllResult
	if err := c.post(ctx, "/api/v1/sync", nil, &res); err != nil {
		return nil, err
	}
	return res.Runs, nil
}

// ListRuns returns one account's sync run history.
func (c *Client) ListRuns(ctx context.Context, accountID string) ([]domain.SyncRun, error) {
	var runs []domain.SyncRun
	if err := c.get(ctx, "/api/v1/accounts/"+accountID+"/runs", &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListLatestRuns returns the most recent run for each account.
func (c *Client) ListLatestRuns(ctx context.Context) ([]domain.SyncRun, error) {
	var runs []domain.SyncRun
	if err := c.get(ctx, "/api/v1/sync/runs", &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetSystemState returns aggregate entity counts.
func (c *Client) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	var s domain.SystemState
	if err := c.get(ctx, "/api/v1/system/state", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetDashboardMetrics returns the computed dashboard aggregates.
func (c *Client) GetDashboardMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	var m domain.DashboardMetrics
	if err := c.get(ctx, "/api/v1/metrics/dashboard", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

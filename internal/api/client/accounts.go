package client

import (
	"context"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// linkAccountRequest contains only the fields the API accepts for linking.
type linkAccountRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	AutoSync     bool   `json:"auto_sync,omitempty"`
}

type autoSyncRequest struct {
	Enabled bool `json:"enabled"`
}

// ListAccounts returns all linked seller accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := c.get(ctx, "/api/v1/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAccount returns a single account by ID.
func (c *Client) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	var a domain.Account
	if err := c.get(ctx, "/api/v1/accounts/"+id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// LinkAccount validates the token against the provider and stores the account.
func (c *Client) LinkAccount(ctx context.Context, accessToken, refreshToken string, autoSync bool) (*domain.Account, error) {
	var a domain.Account
	req := linkAccountRequest{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AutoSync:     autoSync,
	}
	if err := c.post(ctx, "/api/v1/accounts", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAccount removes an account and its products.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/accounts/"+id, nil)
}

// SetAutoSync toggles scheduled sync for an account.
func (c *Client) SetAutoSync(ctx context.Context, id string, enabled bool) error {
	return c.put(ctx, "/api/v1/accounts/"+id+"/auto-sync", autoSyncRequest{Enabled: enabled}, nil)
}

// RefreshAccountToken rotates the account's OAuth tokens.
func (c *Client) RefreshAccountToken(ctx context.Context, id string) (*domain.Account, error) {
	var a domain.Account
	if err := c.post(ctx, "/api/v1/accounts/"+id+"/refresh", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

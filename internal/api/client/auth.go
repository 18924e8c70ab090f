package client

import (
	"context"
	"net/url"

	"github.com/vieirasantos/meli-seller-hub/internal/meli"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// loginRequest is the login request body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult mirrors the login response body.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// authorizationURLResult mirrors the authorization URL response body.
type authorizationURLResult struct {
	URL string `json:"url"`
}

type exchangeRequest struct {
	Code string `json:"code"`
}

type testConnectionRequest struct {
	AccessToken string `json:"access_token"`
}

type diagnoseRequest struct {
	Error string `json:"error"`
}

type diagnoseResult struct {
	Message string `json:"message"`
}

// Login authenticates and stores the issued session token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	req := loginRequest{Username: username, Password: password}
	if err := c.post(ctx, "/api/v1/auth/login", req, &res); err != nil {
		return nil, err
	}
	c.sessionToken = res.Token
	return &res, nil
}

// Logout drops the current session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.sessionToken = ""
	return nil
}

// AuthorizationURL returns the provider authorization URL.
func (c *Client) AuthorizationURL(ctx context.Context, state string) (string, error) {
	path := "/api/v1/auth/url"
	if state != "" {
		path += "?state=" + url.QueryEscape(state)
	}

	var res authorizationURLResult
	if err := c.get(ctx, path, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

// ExchangeCode trades an authorization code for tokens. Failures surface in
// the outcome, not as an error: the diagnostic is meant for the user.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*meli.Outcome[meli.TokenPayload], error) {
	var out meli.Outcome[meli.TokenPayload]
	if err := c.post(ctx, "/api/v1/auth/exchange", exchangeRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestConnection probes an access token against the provider.
func (c *Client) TestConnection(ctx context.Context, accessToken string) (*meli.Outcome[meli.UserProfile], error) {
	var out meli.Outcome[meli.UserProfile]
	req := testConnectionRequest{AccessToken: accessToken}
	if err := c.post(ctx, "/api/v1/auth/test", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DiagnoseAuthError translates a raw provider error into a user-facing
// diagnostic.
func (c *Client) DiagnoseAuthError(ctx context.Context, errText string) (string, error) {
	var res diagnoseResult
	if err := c.post(ctx, "/api/v1/auth/diagnose", diagnoseRequest{Error: errText}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

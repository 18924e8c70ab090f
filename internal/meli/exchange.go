package meli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// exchangeConfig holds the overridable pieces of a code exchange.
type exchangeConfig struct {
	tokenURL string
	client   *http.Client
}

// ExchangeOption configures ExchangeCodeForToken.
type ExchangeOption func(*exchangeConfig)

// WithExchangeTokenURL overrides the default token endpoint.
func WithExchangeTokenURL(u string) ExchangeOption {
	return func(c *exchangeConfig) {
		c.tokenURL = u
	}
}

// WithExchangeHTTPClient overrides the default HTTP client.
func WithExchangeHTTPClient(hc *http.Client) ExchangeOption {
	return func(c *exchangeConfig) {
		c.client = hc
	}
}

// ExchangeCodeForToken trades an authorization code for a token pair via
// the authorization_code grant. Every parameter is validated before any
// network call; a missing field returns its own error with zero requests
// issued. No retry is attempted: a consumed or expired code is not
// recoverable by retrying.
func ExchangeCodeForToken(
	ctx context.Context,
	code, clientID, clientSecret, redirectURI string,
	opts ...ExchangeOption,
) Outcome[TokenPayload] {
	var zero TokenPayload

	if strings.TrimSpace(code) == "" {
		return fail(zero, "Código de autorização é obrigatório")
	}
	if strings.TrimSpace(clientID) == "" {
		return fail(zero, "Client ID é obrigatório")
	}
	if strings.TrimSpace(clientSecret) == "" {
		return fail(zero, "Client Secret é obrigatório")
	}
	if strings.TrimSpace(redirectURI) == "" {
		return fail(zero, "Redirect URI é obrigatório")
	}

	cfg := &exchangeConfig{
		tokenURL: defaultTokenURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	// Authorization codes never contain whitespace; anything inside the
	// pasted value is a copy artifact.
	cleanCode := stripWhitespace(code)

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {strings.TrimSpace(clientID)},
		"client_secret": {strings.TrimSpace(clientSecret)},
		"code":          {cleanCode},
		"redirect_uri":  {strings.TrimSpace(redirectURI)},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		cfg.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fail(zero, fmt.Sprintf("Erro ao montar requisição: %v", err))
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := cfg.client.Do(req)
	if err != nil {
		return fail(zero, networkError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(zero, networkError(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(zero, classifyTokenError(resp.StatusCode, body))
	}

	var payload TokenPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fail(zero, fmt.Sprintf("Erro ao interpretar resposta do token: %v", err))
	}
	return ok(payload)
}

// TestConnection verifies a pasted access token by fetching the profile.
func TestConnection(ctx context.Context, accessToken string, opts ...Option) Outcome[UserProfile] {
	var zero UserProfile
	if strings.TrimSpace(accessToken) == "" {
		return fail(zero, "Access token é obrigatório")
	}
	return NewClient(accessToken, opts...).GetUserInfo(ctx)
}

// stripWhitespace removes all whitespace anywhere in s.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

package meli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vieirasantos/meli-seller-hub/internal/metrics"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

const (
	defaultBaseURL  = "https://api.mercadolibre.com"
	defaultTokenURL = "https://api.mercadolibre.com/oauth/token" //nolint:gosec // not a credential
	defaultAuthURL  = "https://auth.mercadolivre.com.br/authorization"

	// maxProductDetails caps how many item detail fetches a single
	// GetProducts call issues.
	maxProductDetails = 50
)

// Client talks to the Mercado Livre REST API on behalf of one credential
// pair. The token fields are mutated only by RefreshAccessToken; every
// other operation is read-only with respect to client state.
type Client struct {
	baseURL  string
	tokenURL string
	client   *http.Client
	limiter  *RateLimiter
	nowFunc  func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// Option configures the Client.
type Option func(*Client)

// WithRefreshToken supplies the refresh token obtained at code exchange.
func WithRefreshToken(token string) Option {
	return func(c *Client) {
		c.refreshToken = token
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTokenURL overrides the default token endpoint.
func WithTokenURL(u string) Option {
	return func(c *Client) {
		c.tokenURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter applied before every API call.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = r
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = f
	}
}

// NewClient creates a Mercado Livre API client holding accessToken.
func NewClient(accessToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		tokenURL:    defaultTokenURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 30 * time.Second},
		nowFunc:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken returns the client's current access token.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// GetUserInfo fetches the authenticated seller's profile. The token is
// checked for presence and plausible format before any request is issued.
func (c *Client) GetUserInfo(ctx context.Context) Outcome[UserProfile] {
	var zero UserProfile

	token := c.AccessToken()
	if strings.TrimSpace(token) == "" {
		return fail(zero, "Access token não fornecido")
	}

	if !IsValidTokenFormat(token) {
		preview := token
		if len(preview) > 30 {
			preview = preview[:30]
		}
		return fail(zero, fmt.Sprintf(
			"Formato de token inválido.\n\n"+
				"O valor fornecido não parece ser um access token do Mercado Livre.\n"+
				"Formato esperado: APP_USR-1234567890-123456-abcdef...\n"+
				"Valor recebido: %s...\n\n"+
				"Certifique-se de usar o ACCESS TOKEN, não o código de autorização.",
			preview))
	}

	status, body, err := c.get(ctx, "/users/me")
	if err != nil {
		return fail(zero, networkError(err))
	}
	if status < 200 || status >= 300 {
		return fail(zero, classifyAPIError(status, body))
	}

	var profile UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return fail(zero, fmt.Sprintf("Erro ao interpretar resposta da API: %v", err))
	}
	return ok(profile)
}

// GetProducts lists the seller's items and resolves detail for up to the
// first 50 of them, in parallel. Individual detail failures are dropped
// silently; an empty search result is a success, not an error.
func (c *Client) GetProducts(ctx context.Context, sellerID string) Outcome[[]domain.Product] {
	if strings.TrimSpace(c.AccessToken()) == "" || strings.TrimSpace(sellerID) == "" {
		return fail([]domain.Product{}, "Access token e seller ID são obrigatórios")
	}

	path := "/users/" + url.PathEscape(sellerID) + "/items/search"
	status, body, err := c.get(ctx, path)
	if err != nil {
		return fail([]domain.Product{}, networkError(err))
	}
	if status < 200 || status >= 300 {
		return fail([]domain.Product{}, classifyAPIError(status, body))
	}

	var search itemSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return fail([]domain.Product{}, fmt.Sprintf("Erro ao interpretar resposta da API: %v", err))
	}

	if len(search.Results) == 0 {
		return ok([]domain.Product{})
	}

	ids := search.Results
	if len(ids) > maxProductDetails {
		ids = ids[:maxProductDetails]
	}

	// One detail fetch per item, concurrently, no retry. Failures leave a
	// nil slot that is filtered below, so result order is not guaranteed
	// to be meaningful.
	results := make([]*domain.Product, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		wg.Add(1)
		go func(slot int, itemID string) {
			defer wg.Done()
			results[slot] = c.fetchItem(ctx, itemID, sellerID)
		}(i, id)
	}
	wg.Wait()

	products := make([]domain.Product, 0, len(ids))
	for _, p := range results {
		if p != nil {
			products = append(products, *p)
		}
	}
	return ok(products)
}

// fetchItem resolves one item detail. Any failure returns nil.
func (c *Client) fetchItem(ctx context.Context, itemID, sellerID string) *domain.Product {
	status, body, err := c.get(ctx, "/items/"+url.PathEscape(itemID))
	if err != nil || status < 200 || status >= 300 {
		return nil
	}

	var detail itemDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil
	}

	p := toProduct(&detail, sellerID)
	return &p
}

// GetSalesStats fetches the seller's sales counters. Sales statistics are
// optional enrichment: any failure, including missing credentials, degrades
// to zeroed counters with success.
func (c *Client) GetSalesStats(ctx context.Context, sellerID string) Outcome[SalesStats] {
	if strings.TrimSpace(c.AccessToken()) == "" || strings.TrimSpace(sellerID) == "" {
		return ok(SalesStats{})
	}

	status, body, err := c.get(ctx, "/users/"+url.PathEscape(sellerID)+"/metrics")
	if err != nil || status < 200 || status >= 300 {
		return ok(SalesStats{})
	}

	var stats SalesStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return ok(SalesStats{})
	}
	return ok(stats)
}

// RefreshAccessToken exchanges the stored refresh token for a fresh token
// pair. On success the client's tokens are updated; on failure internal
// state is left untouched and the classified error is returned.
func (c *Client) RefreshAccessToken(ctx context.Context, clientID, clientSecret string) Outcome[TokenPayload] {
	var zero TokenPayload

	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()

	if refresh == "" {
		return fail(zero, "Refresh token não disponível para esta conta")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {strings.TrimSpace(clientID)},
		"client_secret": {strings.TrimSpace(clientSecret)},
		"refresh_token": {refresh},
	}

	status, body, err := c.postForm(ctx, c.tokenURL, form)
	if err != nil {
		return fail(zero, networkError(err))
	}
	if status < 200 || status >= 300 {
		return fail(zero, classifyTokenError(status, body))
	}

	var payload TokenPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fail(zero, fmt.Sprintf("Erro ao interpretar resposta do token: %v", err))
	}

	c.mu.Lock()
	c.accessToken = payload.AccessToken
	if payload.RefreshToken != "" {
		c.refreshToken = payload.RefreshToken
	}
	c.mu.Unlock()

	return ok(payload)
}

// get issues an authenticated GET and returns status plus body. A non-nil
// error means the request itself could not complete.
func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	metrics.MeliAPICallsTotal.Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.AccessToken())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.MeliAPIErrorsTotal.Inc()
		return 0, nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// postForm issues a form-encoded POST to an absolute URL.
func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		rawURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.MeliAPIErrorsTotal.Inc()
		return 0, nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

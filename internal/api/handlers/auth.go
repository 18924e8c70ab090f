package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vieirasantos/meli-seller-hub/internal/meli"
	"github.com/vieirasantos/meli-seller-hub/internal/metrics"
)

// AuthConfig carries the Mercado Livre application credentials the OAuth
// endpoints need. TokenURL and BaseURL are overridable for tests.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
	BaseURL      string
}

// AuthHandler handles the Mercado Livre OAuth endpoints.
type AuthHandler struct {
	cfg AuthConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg AuthConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// --- Input/Output types ---

// AuthorizationURLInput is the input for building the authorization URL.
type AuthorizationURLInput struct {
	State string `query:"state" doc:"Opaque value echoed back on the callback"`
}

// AuthorizationURLOutput carries the provider authorization URL.
type AuthorizationURLOutput struct {
	Body struct {
		URL string `json:"url" doc:"Mercado Livre authorization URL"`
	}
}

// ExchangeCodeInput is the request body for the code exchange.
type ExchangeCodeInput struct {
	Body struct {
		Code string `json:"code" doc:"Single-use authorization code (TG-...)"`
	}
}

// ExchangeCodeOutput carries the token exchange outcome. Failures still
// return 200 with Success=false and a pt-BR diagnostic, mirroring the
// provider's single-use code semantics: the caller must show the message,
// not retry.
type ExchangeCodeOutput struct {
	Body meli.Outcome[meli.TokenPayload]
}

// TestConnectionInput is the request body for probing an access token.
type TestConnectionInput struct {
	Body struct {
		AccessToken string `json:"access_token" doc:"Access token to probe"`
	}
}

// TestConnectionOutput carries the token probe outcome.
type TestConnectionOutput struct {
	Body meli.Outcome[meli.UserProfile]
}

// DiagnoseInput is the request body for translating a provider error.
type DiagnoseInput struct {
	Body struct {
		Error string `json:"error" doc:"Raw provider error text"`
	}
}

// DiagnoseOutput carries the translated diagnostic.
type DiagnoseOutput struct {
	Body struct {
		Message string `json:"message" doc:"User-facing diagnostic in pt-BR"`
	}
}

// --- Handlers ---

// AuthorizationURL returns the provider authorization URL for the
// configured application.
func (h *AuthHandler) AuthorizationURL(
	_ context.Context,
	input *AuthorizationURLInput,
) (*AuthorizationURLOutput, error) {
	resp := &AuthorizationURLOutput{}
	resp.Body.URL = meli.AuthorizationURL(h.cfg.ClientID, h.cfg.RedirectURI, input.State)
	return resp, nil
}

// ExchangeCode trades a single-use authorization code for tokens.
func (h *AuthHandler) ExchangeCode(
	ctx context.Context,
	input *ExchangeCodeInput,
) (*ExchangeCodeOutput, error) {
	var opts []meli.ExchangeOption
	if h.cfg.TokenURL != "" {
		opts = append(opts, meli.WithExchangeTokenURL(h.cfg.TokenURL))
	}

	out := meli.ExchangeCodeForToken(
		ctx,
		input.Body.Code,
		h.cfg.ClientID,
		h.cfg.ClientSecret,
		h.cfg.RedirectURI,
		opts...,
	)

	if out.Success {
		metrics.TokenExchangesTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.TokenExchangesTotal.WithLabelValues("failed").Inc()
	}

	return &ExchangeCodeOutput{Body: out}, nil
}

// TestConnection probes an access token against the provider profile
// endpoint.
func (h *AuthHandler) TestConnection(
	ctx context.Context,
	input *TestConnectionInput,
) (*TestConnectionOutput, error) {
	var opts []meli.Option
	if h.cfg.BaseURL != "" {
		opts = append(opts, meli.WithBaseURL(h.cfg.BaseURL))
	}

	out := meli.TestConnection(ctx, input.Body.AccessToken, opts...)
	return &TestConnectionOutput{Body: out}, nil
}

// Diagnose translates a raw provider authorization error into the
// user-facing diagnostic.
func (h *AuthHandler) Diagnose(
	_ context.Context,
	input *DiagnoseInput,
) (*DiagnoseOutput, error) {
	resp := &DiagnoseOutput{}
	resp.Body.Message = meli.DiagnoseAuthorizationError(input.Body.Error)
	return resp, nil
}

// RegisterAuthRoutes registers OAuth endpoints with the Huma API.
func RegisterAuthRoutes(api huma.API, h *AuthHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-authorization-url",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/url",
		Summary:     "Get authorization URL",
		Description: "Builds the Mercado Livre authorization URL for the configured application.",
		Tags:        []string{"auth"},
	}, h.AuthorizationURL)

	huma.Register(api, huma.Operation{
		OperationID: "exchange-code",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/exchange",
		Summary:     "Exchange authorization code",
		Description: "Trades a single-use authorization code for access and refresh tokens.",
		Tags:        []string{"auth"},
	}, h.ExchangeCode)

	huma.Register(api, huma.Operation{
		OperationID: "test-connection",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/test",
		Summary:     "Test an access token",
		Description: "Probes the token against the profile endpoint and reports the seller identity.",
		Tags:        []string{"auth"},
	}, h.TestConnection)

	huma.Register(api, huma.Operation{
		OperationID: "diagnose-auth-error",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/diagnose",
		Summary:     "Diagnose an authorization error",
		Description: "Translates a raw provider error into a user-facing diagnostic.",
		Tags:        []string{"auth"},
	}, h.Diagnose)
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vieirasantos/meli-seller-hub/internal/store"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// AccountsProvider defines the store methods required by the accounts handler.
type AccountsProvider interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	SetAccountAutoSync(ctx context.Context, id string, enabled bool) error
}

// AccountLinker links and refreshes seller accounts against the provider.
type AccountLinker interface {
	LinkAccount(ctx context.Context, accessToken, refreshToken string, autoSync bool) (*domain.Account, error)
	RefreshAccount(ctx context.Context, accountID, clientID, clientSecret string) (*domain.Account, error)
}

// AccountsHandler handles seller account endpoints.
type AccountsHandler struct {
	store  AccountsProvider
	linker AccountLinker

	clientID     string
	clientSecret string
}

// NewAccountsHandler creates a new AccountsHandler. The application
// credentials are needed for token refresh.
func NewAccountsHandler(s AccountsProvider, l AccountLinker, clientID, clientSecret string) *AccountsHandler {
	return &AccountsHandler{
		store:        s,
		linker:       l,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// sanitizeAccount strips credentials before an account leaves the API.
func sanitizeAccount(a domain.Account) domain.Account {
	a.AccessToken = ""
	a.RefreshToken = ""
	return a
}

// --- Input/Output types ---

// ListAccountsOutput is the response for listing accounts.
type ListAccountsOutput struct {
	Body []domain.Account
}

// GetAccountInput is the input for getting a single account.
type GetAccountInput struct {
	ID string `path:"id" doc:"Account UUID"`
}

// GetAccountOutput is the response for getting a single account.
type GetAccountOutput struct {
	Body domain.Account
}

// LinkAccountInput is the request body for linking a seller account.
type LinkAccountInput struct {
	Body struct {
		AccessToken  string `json:"access_token"            doc:"Mercado Livre access token"`
		RefreshToken string `json:"refresh_token,omitempty" doc:"Refresh token, if available"`
		AutoSync     bool   `json:"auto_sync,omitempty"     doc:"Enable scheduled sync for this account"`
	}
}

// LinkAccountOutput is the response for linking a seller account.
type LinkAccountOutput struct {
	Body domain.Account
}

// DeleteAccountInput is the input for deleting an account.
type DeleteAccountInput struct {
	ID string `path:"id" doc:"Account UUID"`
}

// DeleteAccountOutput is the response for deleting an account.
type DeleteAccountOutput struct {
	Body StatusResponse
}

// SetAutoSyncInput toggles scheduled sync for one account.
type SetAutoSyncInput struct {
	ID   string `path:"id" doc:"Account UUID"`
	Body struct {
		Enabled bool `json:"enabled" doc:"Whether scheduled sync is enabled"`
	}
}

// SetAutoSyncOutput is the response for the auto-sync toggle.
type SetAutoSyncOutput struct {
	Body StatusResponse
}

// RefreshTokenInput is the input for rotating an account's tokens.
type RefreshTokenInput struct {
	ID string `path:"id" doc:"Account UUID"`
}

// RefreshTokenOutput is the response for rotating an account's tokens.
type RefreshTokenOutput struct {
	Body domain.Account
}

// --- Handlers ---

// ListAccounts returns all linked seller accounts with credentials stripped.
func (h *AccountsHandler) ListAccounts(
	ctx context.Context,
	_ *struct{},
) (*ListAccountsOutput, error) {
	accounts, err := h.store.ListAccounts(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing accounts failed: " + err.Error())
	}

	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, sanitizeAccount(a))
	}

	return &ListAccountsOutput{Body: out}, nil
}

// GetAccount returns a single account by ID.
func (h *AccountsHandler) GetAccount(
	ctx context.Context,
	input *GetAccountInput,
) (*GetAccountOutput, error) {
	a, err := h.store.GetAccount(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("account not found")
		}
		return nil, huma.Error500InternalServerError("fetching account failed: " + err.Error())
	}

	return &GetAccountOutput{Body: sanitizeAccount(*a)}, nil
}

// LinkAccount validates the given token against the provider and stores the
// seller account, merging with an existing row for the same seller.
func (h *AccountsHandler) LinkAccount(
	ctx context.Context,
	input *LinkAccountInput,
) (*LinkAccountOutput, error) {
	a, err := h.linker.LinkAccount(ctx, input.Body.AccessToken, input.Body.RefreshToken, input.Body.AutoSync)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	return &LinkAccountOutput{Body: sanitizeAccount(*a)}, nil
}

// DeleteAccount removes an account and its products.
func (h *AccountsHandler) DeleteAccount(
	ctx context.Context,
	input *DeleteAccountInput,
) (*DeleteAccountOutput, error) {
	if err := h.store.DeleteAccount(ctx, input.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("account not found")
		}
		return nil, huma.Error500InternalServerError("deleting account failed: " + err.Error())
	}

	resp := &DeleteAccountOutput{}
	resp.Body.Status = "deleted"
	return resp, nil
}

// SetAutoSync toggles scheduled synchronization for an account.
func (h *AccountsHandler) SetAutoSync(
	ctx context.Context,
	input *SetAutoSyncInput,
) (*SetAutoSyncOutput, error) {
	if err := h.store.SetAccountAutoSync(ctx, input.ID, input.Body.Enabled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("account not found")
		}
		return nil, huma.Error500InternalServerError("updating auto-sync failed: " + err.Error())
	}

	resp := &SetAutoSyncOutput{}
	resp.Body.Status = "updated"
	return resp, nil
}

// RefreshToken rotates the account's OAuth tokens via the provider.
func (h *AccountsHandler) RefreshToken(
	ctx context.Context,
	input *RefreshTokenInput,
) (*RefreshTokenOutput, error) {
	a, err := h.linker.RefreshAccount(ctx, input.ID, h.clientID, h.clientSecret)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("account not found")
		}
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	return &RefreshTokenOutput{Body: sanitizeAccount(*a)}, nil
}

// RegisterAccountRoutes registers account endpoints with the Huma API.
func RegisterAccountRoutes(api huma.API, h *AccountsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts",
		Summary:     "List seller accounts",
		Description: "Returns all linked Mercado Livre seller accounts.",
		Tags:        []string{"accounts"},
	}, h.ListAccounts)

	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts/{id}",
		Summary:     "Get a seller account",
		Tags:        []string{"accounts"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetAccount)

	huma.Register(api, huma.Operation{
		OperationID:   "link-account",
		Method:        http.MethodPost,
		Path:          "/api/v1/accounts",
		Summary:       "Link a seller account",
		Description:   "Validates the access token against Mercado Livre and stores the seller account.",
		Tags:          []string{"accounts"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusUnprocessableEntity},
	}, h.LinkAccount)

	huma.Register(api, huma.Operation{
		OperationID: "delete-account",
		Method:      http.MethodDelete,
		Path:        "/api/v1/accounts/{id}",
		Summary:     "Delete a seller account",
		Tags:        []string{"accounts"},
		Errors:      []int{http.StatusNotFound},
	}, h.DeleteAccount)

	huma.Register(api, huma.Operation{
		OperationID: "set-account-auto-sync",
		Method:      http.MethodPut,
		Path:        "/api/v1/accounts/{id}/auto-sync",
		Summary:     "Toggle scheduled sync",
		Tags:        []string{"accounts"},
		Errors:      []int{http.StatusNotFound},
	}, h.SetAutoSync)

	huma.Register(api, huma.Operation{
		OperationID: "refresh-account-token",
		Method:      http.MethodPost,
		Path:        "/api/v1/accounts/{id}/refresh",
		Summary:     "Refresh account tokens",
		Description: "Rotates the account's OAuth tokens using its refresh token.",
		Tags:        []string{"accounts"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.RefreshToken)
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vieirasantos/meli-seller-hub/internal/engine"
	"github.com/vieirasantos/meli-seller-hub/internal/store"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// triggerManual tags runs started through the API.
const triggerManual = "manual"

// Syncer drives account synchronization.
type Syncer interface {
	SyncAccount(ctx context.Context, accountID, trigger string) (*engine.Result, error)
	SyncAll(ctx context.Context, trigger string) ([]engine.Result, error)
}

// SyncRunsProvider defines the store methods for run history.
type SyncRunsProvider interface {
	ListSyncRuns(ctx context.Context, accountID string, limit int) ([]domain.SyncRun, error)
	ListLatestSyncRuns(ctx context.Context) ([]domain.SyncRun, error)
}

// SyncHandler handles sync trigger and run history endpoints.
type SyncHandler struct {
	syncer Syncer
	store  SyncRunsProvider
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncer Syncer, s SyncRunsProvider) *SyncHandler {
	return &SyncHandler{syncer: syncer, store: s}
}

// --- Input/Output types ---

// SyncAccountInput is the input for triggering one account's sync.
type SyncAccountInput struct {
	ID string `path:"id" doc:"Account UUID"`
}

// SyncAccountOutput carries the finished run and the updated account.
type SyncAccountOutput struct {
	Body struct {
		Run     domain.SyncRun `json:"run"`
		Account domain.Account `json:"account"`
	}
}

// SyncAllOutput summarizes a whole-fleet sync pass.
type SyncAllOutput struct {
	Body struct {
		Runs []domain.SyncRun `json:"runs"`
	}
}

// ListRunsInput is the input for one account's run history.
type ListRunsInput struct {
	ID    string `path:"id"     doc:"Account UUID"`
	Limit int    `query:"limit" doc:"Number of runs (default 20)" minimum:"1" maximum:"100"`
}

// ListRunsOutput is the response for one account's run history.
type ListRunsOutput struct {
	Body []domain.SyncRun
}

// ListLatestRunsOutput is the response for the latest run per account.
type ListLatestRunsOutput struct {
	Body []domain.SyncRun
}

const defaultRunHistoryLimit = 20

// --- Handlers ---

// SyncAccount synchronizes a single account now. A run already in flight
// for the same account is superseded by this one.
func (h *SyncHandler) SyncAccount(
	ctx context.Context,
	input *SyncAccountInput,
) (*SyncAccountOutput, error) {
	res, err := h.syncer.SyncAccount(ctx, input.ID, triggerManual)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrSuperseded):
			return nil, huma.Error409Conflict("a newer sync for this account superseded this run")
		case errors.Is(err, store.ErrNotFound):
			return nil, huma.Error404NotFound("account not found")
		default:
			return nil, huma.Error500InternalServerError("sync failed: " + err.Error())
		}
	}

	resp := &SyncAccountOutput{}
	resp.Body.Run = res.Run
	if res.Account != nil {
		resp.Body.Account = sanitizeAccount(*res.Account)
	}
	return resp, nil
}

// SyncAll synchronizes every linked account sequentially.
func (h *SyncHandler) SyncAll(ctx context.Context, _ *struct{}) (*SyncAllOutput, error) {
	results, err := h.syncer.SyncAll(ctx, triggerManual)
	if err != nil {
		return nil, huma.Error500InternalServerError("sync pass failed: " + err.Error())
	}

	resp := &SyncAllOutput{}
	resp.Body.Runs = make([]domain.SyncRun, 0, len(results))
	for _, r := range results {
		resp.Body.Runs = append(resp.Body.Runs, r.Run)
	}
	return resp, nil
}

// ListRuns returns one account's sync run history, newest first.
func (h *SyncHandler) ListRuns(ctx context.Context, input *ListRunsInput) (*ListRunsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = defaultRunHistoryLimit
	}

	runs, err := h.store.ListSyncRuns(ctx, input.ID, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("fetching run history failed: " + err.Error())
	}

	if runs == nil {
		runs = []domain.SyncRun{}
	}
	return &ListRunsOutput{Body: runs}, nil
}

// ListLatestRuns returns the most recent run for each account.
func (h *SyncHandler) ListLatestRuns(
	ctx context.Context,
	_ *struct{},
) (*ListLatestRunsOutput, error) {
	runs, err := h.store.ListLatestSyncRuns(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("fetching latest runs failed: " + err.Error())
	}

	if runs == nil {
		runs = []domain.SyncRun{}
	}
	return &ListLatestRunsOutput{Body: runs}, nil
}

// RegisterSyncRoutes registers sync endpoints with the Huma API.
func RegisterSyncRoutes(api huma.API, h *SyncHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "sync-account",
		Method:      http.MethodPost,
		Path:        "/api/v1/accounts/{id}/sync",
		Summary:     "Sync one account",
		Description: "Runs a full synchronization for one account: profile, products, and sales metrics.",
		Tags:        []string{"sync"},
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, h.SyncAccount)

	huma.Register(api, huma.Operation{
		OperationID: "sync-all",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync",
		Summary:     "Sync all accounts",
		Tags:        []string{"sync"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.SyncAll)

	huma.Register(api, huma.Operation{
		OperationID: "list-account-runs",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts/{id}/runs",
		Summary:     "Get an account's sync history",
		Tags:        []string{"sync"},
	}, h.ListRuns)

	huma.Register(api, huma.Operation{
		OperationID: "list-latest-runs",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/runs",
		Summary:     "List latest sync runs",
		Description: "Returns the most recent run record for each account.",
		Tags:        []string{"sync"},
	}, h.ListLatestRuns)
}

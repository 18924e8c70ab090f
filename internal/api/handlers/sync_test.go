package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vieirasantos/meli-seller-hub/internal/api/handlers"
	"github.com/vieirasantos/meli-seller-hub/internal/engine"
	"github.com/vieirasantos/meli-seller-hub/internal/store"
	"github.com/vieirasantos/meli-seller-hub/internal/store/storetest"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// mockSyncer is a test double for Syncer.
type mockSyncer struct {
	result  *engine.Result
	results []engine.Result
	err     error
	trigger string
}

func (m *mockSyncer) SyncAccount(_ context.Context, _, trigger string) (*engine.Result, error) {
	m.trigger = trigger
	return m.result, m.err
}

func (m *mockSyncer) SyncAll(_ context.Context, trigger string) ([]engine.Result, error) {
	m.trigger = trigger
	return m.results, m.err
}

func newSyncAPI(t *testing.T, syncer *mockSyncer, mem *storetest.Memory) humatest.TestAPI {
	t.Helper()
	h := handlers.NewSyncHandler(syncer, mem)
	_, api := humatest.New(t)
	handlers.RegisterSyncRoutes(api, h)
	return api
}

func sampleRun(accountID string) domain.SyncRun {
	now := time.Now().Truncate(time.Second)
	return domain.SyncRun{
		ID:           "run-1",
		AccountID:    accountID,
		Trigger:      "manual",
		Profile:      domain.SyncPartOK,
		ProductsPart: domain.SyncPartOK,
		StatsPart:    domain.SyncPartDegraded,
		StatsReason:  "métricas indisponíveis, mantido valor anterior",
		StartedAt:    now,
		FinishedAt:   &now,
	}
}

func TestSyncAccountEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns run and sanitized account", func(t *testing.T) {
		t.Parallel()

		syncer := &mockSyncer{result: &engine.Result{
			Run: sampleRun("acc-1"),
			Account: &domain.Account{
				ID:          "acc-1",
				Nickname:    "LOJA_TESTE",
				AccessToken: "APP_USR-secret",
			},
		}}
		api := newSyncAPI(t, syncer, storetest.New())

		resp := api.Post("/api/v1/accounts/acc-1/sync")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "manual", syncer.trigger)
		assert.Contains(t, resp.Body.String(), "LOJA_TESTE")
		assert.Contains(t, resp.Body.String(), `"stats":"degraded"`)
		assert.NotContains(t, resp.Body.String(), "APP_USR-secret")
	})

	t.Run("superseded run returns 409", func(t *testing.T) {
		t.Parallel()

		syncer := &mockSyncer{err: engine.ErrSuperseded}
		api := newSyncAPI(t, syncer, storetest.New())

		resp := api.Post("/api/v1/accounts/acc-1/sync")
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("unknown account returns 404", func(t *testing.T) {
		t.Parallel()

		syncer := &mockSyncer{err: store.ErrNotFound}
		api := newSyncAPI(t, syncer, storetest.New())

		resp := api.Post("/api/v1/accounts/nope/sync")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestSyncAllEndpoint(t *testing.T) {
	t.Parallel()

	syncer := &mockSyncer{results: []engine.Result{
		{Run: sampleRun("acc-1")},
		{Run: sampleRun("acc-2")},
	}}
	api := newSyncAPI(t, syncer, storetest.New())

	resp := api.Post("/api/v1/sync")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "acc-1")
	assert.Contains(t, resp.Body.String(), "acc-2")
}

func TestListRunsEndpoint(t *testing.T) {
	t.Parallel()

	mem := storetest.New()
	ctx := context.Background()

	a := &domain.Account{Nickname: "LOJA_TESTE"}
	require.NoError(t, mem.CreateAccount(ctx, a))

	id, err := mem.InsertSyncRun(ctx, a.ID, "manual")
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, mem.CompleteSyncRun(ctx, &domain.SyncRun{
		ID:           id,
		AccountID:    a.ID,
		Trigger:      "manual",
		Profile:      domain.SyncPartOK,
		ProductsPart: domain.SyncPartOK,
		StatsPart:    domain.SyncPartOK,
		FinishedAt:   &now,
	}))

	api := newSyncAPI(t, &mockSyncer{}, mem)

	resp := api.Get("/api/v1/accounts/" + a.ID + "/runs")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), a.ID)

	resp = api.Get("/api/v1/accounts/unknown/runs")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "[]")
}

func TestListLatestRunsEndpoint(t *testing.T) {
	t.Parallel()

	mem := storetest.New()
	ctx := context.Background()

	a := &domain.Account{Nickname: "LOJA_TESTE"}
	require.NoError(t, mem.CreateAccount(ctx, a))
	_, err := mem.InsertSyncRun(ctx, a.ID, "scheduled")
	require.NoError(t, err)

	api := newSyncAPI(t, &mockSyncer{}, mem)

	resp := api.Get("/api/v1/sync/runs")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"trigger":"scheduled"`)
}

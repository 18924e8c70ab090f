package meli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

func TestReputationScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rep  *SellerReputation
		want int
	}{
		{"power seller wins over level", &SellerReputation{LevelID: "3_yellow", PowerSellerStatus: "gold"}, 95},
		{"level 5", &SellerReputation{LevelID: "5_green"}, 90},
		{"level 4", &SellerReputation{LevelID: "4_light_green"}, 85},
		{"level 3", &SellerReputation{LevelID: "3_yellow"}, 80},
		{"level 2 falls to generic level", &SellerReputation{LevelID: "2_orange"}, 75},
		{"level 1 falls to generic level", &SellerReputation{LevelID: "1_red"}, 75},
		{"empty block", &SellerReputation{}, 70},
		{"nil block", nil, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, reputationScore(tt.rep))
		})
	}
}

func syncFixtureServer(t *testing.T, profileStatus, searchStatus, metricsStatus int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/me":
			if profileStatus != http.StatusOK {
				w.WriteHeader(profileStatus)
				_, _ = w.Write([]byte(`{"message":"boom"}`))
				return
			}
			_, _ = w.Write([]byte(`{
				"id": 555001,
				"nickname": "LOJA_SYNC",
				"email": "sync@example.com",
				"seller_reputation": {"level_id": "5_green"}
			}`))
		case "/users/555001/items/search":
			if searchStatus != http.StatusOK {
				w.WriteHeader(searchStatus)
				_, _ = w.Write([]byte(`{"message":"boom"}`))
				return
			}
			_, _ = w.Write([]byte(`{"results": ["MLB100", "MLB200"]}`))
		case "/users/555001/metrics":
			if metricsStatus != http.StatusOK {
				w.WriteHeader(metricsStatus)
				return
			}
			_, _ = w.Write([]byte(`{"period_sales": 8, "total_sales": 120}`))
		default:
			_, _ = w.Write([]byte(`{
				"id": "MLB100",
				"title": "Carregador USB-C",
				"price": 59.9,
				"available_quantity": 5,
				"sold_quantity": 2,
				"status": "active",
				"category_id": "MLB5000"
			}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncAccount_FullSuccess(t *testing.T) {
	t.Parallel()

	srv := syncFixtureServer(t, http.StatusOK, http.StatusOK, http.StatusOK)
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	c := NewClient(testToken,
		WithBaseURL(srv.URL),
		WithNowFunc(func() time.Time { return now }),
	)

	account := domain.Account{
		ID:       "acc-7",
		Nickname: "old-nick",
		Status:   domain.AccountInactive,
		Sales:    3,
		Products: 1,
	}

	out := c.SyncAccount(context.Background(), account)
	require.True(t, out.Success, out.Error)

	got := out.Data.Account
	assert.Equal(t, "acc-7", got.ID)
	assert.Equal(t, "LOJA_SYNC", got.Nickname)
	assert.Equal(t, "sync@example.com", got.Email)
	assert.Equal(t, int64(555001), got.UserID)
	assert.Equal(t, 90, got.Reputation)
	assert.Equal(t, domain.AccountActive, got.Status)
	assert.Equal(t, "15/03/2025 14:30:00", got.LastSync)
	assert.Equal(t, 2, got.Products)
	assert.Equal(t, 8, got.Sales)
	assert.Len(t, out.Data.Products, 2)

	assert.Equal(t, domain.SyncPartOK, out.Data.Report.Profile.Status)
	assert.Equal(t, domain.SyncPartOK, out.Data.Report.Products.Status)
	assert.Equal(t, domain.SyncPartOK, out.Data.Report.Stats.Status)
}

func TestSyncAccount_ProfileFailureReturnsInputUntouched(t *testing.T) {
	t.Parallel()

	srv := syncFixtureServer(t, http.StatusUnauthorized, http.StatusOK, http.StatusOK)
	c := NewClient(testToken, WithBaseURL(srv.URL))

	account := domain.Account{
		ID:       "acc-7",
		Nickname: "old-nick",
		Email:    "old@example.com",
		Status:   domain.AccountInactive,
		Sales:    3,
		Products: 1,
		LastSync: "01/01/2025 00:00:00",
	}

	out := c.SyncAccount(context.Background(), account)
	assert.False(t, out.Success)
	assert.Equal(t, account, out.Data.Account)
	assert.Equal(t, domain.SyncPartFailed, out.Data.Report.Profile.Status)
	assert.Equal(t, domain.SyncPartSkipped, out.Data.Report.Products.Status)
	assert.Equal(t, domain.SyncPartSkipped, out.Data.Report.Stats.Status)
}

func TestSyncAccount_ProductsFailureDegrades(t *testing.T) {
	t.Parallel()

	srv := syncFixtureServer(t, http.StatusOK, http.StatusInternalServerError, http.StatusOK)
	c := NewClient(testToken, WithBaseURL(srv.URL))

	account := domain.Account{Products: 42}
	out := c.SyncAccount(context.Background(), account)

	require.True(t, out.Success, out.Error)
	assert.Equal(t, 42, out.Data.Account.Products, "failed products part keeps the prior counter")
	assert.Empty(t, out.Data.Products)
	assert.Equal(t, domain.SyncPartDegraded, out.Data.Report.Products.Status)
	assert.NotEmpty(t, out.Data.Report.Products.Reason)
	assert.Equal(t, domain.SyncPartOK, out.Data.Report.Stats.Status)
}

func TestSyncAccount_ZeroedStatsKeepPriorSales(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/me":
			_, _ = w.Write([]byte(`{"id": 555001, "nickname": "LOJA_SYNC"}`))
		case "/users/555001/items/search":
			_, _ = w.Write([]byte(`{"results": []}`))
		case "/users/555001/metrics":
			_, _ = w.Write([]byte(`{"period_sales": 0, "total_sales": 0}`))
		}
	}))
	defer srv.Close()

	c := NewClient(testToken, WithBaseURL(srv.URL))

	out := c.SyncAccount(context.Background(), domain.Account{Sales: 31})
	require.True(t, out.Success, out.Error)
	assert.Equal(t, 31, out.Data.Account.Sales)
	assert.Equal(t, domain.SyncPartDegraded, out.Data.Report.Stats.Status)
	assert.Contains(t, out.Data.Report.Stats.Reason, "mantido valor anterior")
}

func TestSyncAccount_TotalSalesFallback(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/me":
			_, _ = w.Write([]byte(`{"id": 555001, "nickname": "LOJA_SYNC"}`))
		case "/users/555001/items/search":
			_, _ = w.Write([]byte(`{"results": []}`))
		case "/users/555001/metrics":
			_, _ = w.Write([]byte(`{"period_sales": 0, "total_sales": 120}`))
		}
	}))
	defer srv.Close()

	c := NewClient(testToken, WithBaseURL(srv.URL))

	out := c.SyncAccount(context.Background(), domain.Account{})
	require.True(t, out.Success, out.Error)
	assert.Equal(t, 120, out.Data.Account.Sales)
	assert.Equal(t, domain.SyncPartOK, out.Data.Report.Stats.Status)
}

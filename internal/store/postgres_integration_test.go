//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vieirasantos/meli-seller-hub/internal/store"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("msh_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testAccount(nickname string) *domain.Account {
	return &domain.Account{
		Nickname:     nickname,
		Email:        nickname + "@example.com",
		Status:       domain.AccountInactive,
		AccessToken:  "APP_USR-1234567890-123456-" + nickname,
		RefreshToken: "TG-" + nickname,
		AutoSync:     false,
	}
}

func testProduct(id, nickname string) domain.Product {
	return domain.Product{
		ID:       id,
		Title:    "Produto " + id,
		Price:    99.9,
		Stock:    5,
		Status:   domain.ProductActive,
		Account:  nickname,
		Sales:    2,
		Category: "MLB1000",
		Images:   []string{"https://img.example.com/" + id + ".jpg"},
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_MigrateIsIdempotent(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestPostgresStore_AccountLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	a := testAccount("LOJA_A")
	require.NoError(t, s.CreateAccount(ctx, a))
	require.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "LOJA_A", got.Nickname)
	assert.Equal(t, domain.AccountInactive, got.Status)

	byNick, err := s.GetAccountByNickname(ctx, "LOJA_A")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byNick.ID)

	got.Status = domain.AccountActive
	got.Reputation = 90
	got.Sales = 12
	got.LastSync = "15/03/2025 14:30:00"
	require.NoError(t, s.UpdateAccount(ctx, got))

	updated, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, updated.Reputation)
	assert.Equal(t, "15/03/2025 14:30:00", updated.LastSync)

	require.NoError(t, s.SetAccountAutoSync(ctx, a.ID, true))
	auto, err := s.ListAutoSyncAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, auto, 1)

	require.NoError(t, s.DeleteAccount(ctx, a.ID))
	_, err = s.GetAccount(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_AccountNotFound(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.GetAccountByNickname(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteAccount(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_ReplaceAccountProducts(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	a := testAccount("LOJA_B")
	require.NoError(t, s.CreateAccount(ctx, a))

	first := []domain.Product{testProduct("MLB1", "LOJA_B"), testProduct("MLB2", "LOJA_B")}
	require.NoError(t, s.ReplaceAccountProducts(ctx, "LOJA_B", first))

	products, total, err := s.ListProducts(ctx, &store.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, products, 2)

	// A replace drops items absent from the new inventory.
	second := []domain.Product{testProduct("MLB3", "LOJA_B")}
	require.NoError(t, s.ReplaceAccountProducts(ctx, "LOJA_B", second))

	products, total, err = s.ListProducts(ctx, &store.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "MLB3", products[0].ID)

	got, err := s.GetProduct(ctx, "MLB3")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example.com/MLB3.jpg"}, got.Images)

	_, err = s.GetProduct(ctx, "MLB1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_ListProductsFilters(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, testAccount("LOJA_C")))
	require.NoError(t, s.CreateAccount(ctx, testAccount("LOJA_D")))

	paused := testProduct("MLB10", "LOJA_C")
	paused.Status = domain.ProductPaused
	paused.Title = "Teclado mecânico"

	require.NoError(t, s.ReplaceAccountProducts(ctx, "LOJA_C", []domain.Product{
		testProduct("MLB11", "LOJA_C"), paused,
	}))
	require.NoError(t, s.ReplaceAccountProducts(ctx, "LOJA_D", []domain.Product{
		testProduct("MLB12", "LOJA_D"),
	}))

	account := "LOJA_C"
	_, total, err := s.ListProducts(ctx, &store.ProductQuery{Account: &account})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	status := "paused"
	products, total, err := s.ListProducts(ctx, &store.ProductQuery{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "MLB10", products[0].ID)

	search := "teclado"
	products, _, err = s.ListProducts(ctx, &store.ProductQuery{Search: &search})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Teclado mecânico", products[0].Title)
}

func TestPostgresStore_CommitSyncResult(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	a := testAccount("LOJA_E")
	require.NoError(t, s.CreateAccount(ctx, a))
	require.NoError(t, s.ReplaceAccountProducts(ctx, "LOJA_E", []domain.Product{
		testProduct("MLB20", "LOJA_E"),
	}))

	a.Status = domain.AccountActive
	a.Products = 1
	require.NoError(t, s.CommitSyncResult(ctx, a, []domain.Product{
		testProduct("MLB21", "LOJA_E"),
	}, true))

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountActive, got.Status)

	_, total, err := s.ListProducts(ctx, &store.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// Degraded products part: account updates, inventory untouched.
	a.Sales = 99
	require.NoError(t, s.CommitSyncResult(ctx, a, nil, false))

	products, _, err := s.ListProducts(ctx, &store.ProductQuery{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "MLB21", products[0].ID)
}

func TestPostgresStore_UserLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	u := &domain.User{
		Username:     "operador",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         domain.RoleAdmin,
		Permissions:  domain.AllPermissions(),
	}
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := s.GetUserByUsername(ctx, "operador")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.True(t, got.Permissions.ManageUsers)

	got.Permissions.ManageUsers = false
	require.NoError(t, s.UpdateUser(ctx, got))

	reloaded, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Permissions.ManageUsers)
	assert.True(t, reloaded.Permissions.ViewDashboard)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_SyncRuns(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	a := testAccount("LOJA_F")
	require.NoError(t, s.CreateAccount(ctx, a))

	id, err := s.InsertSyncRun(ctx, a.ID, "manual")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.CompleteSyncRun(ctx, &domain.SyncRun{
		ID:             id,
		Profile:        domain.SyncPartOK,
		ProductsPart:   domain.SyncPartDegraded,
		StatsPart:      domain.SyncPartOK,
		ProductsReason: "métricas indisponíveis",
	}))

	runs, err := s.ListSyncRuns(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "manual", runs[0].Trigger)
	assert.Equal(t, domain.SyncPartDegraded, runs[0].ProductsPart)
	assert.NotNil(t, runs[0].FinishedAt)

	_, err = s.InsertSyncRun(ctx, a.ID, "scheduled")
	require.NoError(t, err)

	latest, err := s.ListLatestSyncRuns(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "scheduled", latest[0].Trigger)
}

func TestPostgresStore_GetSystemState(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	state, err := s.GetSystemState(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.Accounts)
	assert.Nil(t, state.LastSyncAt)

	a := testAccount("LOJA_G")
	a.Status = domain.AccountActive
	require.NoError(t, s.CreateAccount(ctx, a))
	require.NoError(t, s.ReplaceAccountProducts(ctx, "LOJA_G", []domain.Product{
		testProduct("MLB30", "LOJA_G"),
	}))

	id, err := s.InsertSyncRun(ctx, a.ID, "manual")
	require.NoError(t, err)
	require.NoError(t, s.CompleteSyncRun(ctx, &domain.SyncRun{
		ID:           id,
		Profile:      domain.SyncPartOK,
		ProductsPart: domain.SyncPartOK,
		StatsPart:    domain.SyncPartOK,
	}))

	state, err = s.GetSystemState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Accounts)
	assert.Equal(t, 1, state.ActiveAccounts)
	assert.Equal(t, 1, state.Products)
	assert.Equal(t, 1, state.SyncRuns)
	require.NotNil(t, state.LastSyncAt)
}

// Package store defines the datastore abstraction for meli-seller-hub.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables mock-based testing without a running database.
package store

import (
	"context"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// ProductQuery defines optional filters for product listing queries.
type ProductQuery struct {
	Account *string // owning account nickname
	Status  *string
	Search  *string // title substring, case-insensitive
	Limit   int     // default 50
	Offset  int
	OrderBy string // "price", "sales", "views", "title"
}

// Store defines all data access operations for meli-seller-hub.
type Store interface {
	// Accounts
	CreateAccount(ctx context.Context, a *domain.Account) error
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByNickname(ctx context.Context, nickname string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListAutoSyncAccounts(ctx context.Context) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, a *domain.Account) error
	DeleteAccount(ctx context.Context, id string) error
	SetAccountAutoSync(ctx context.Context, id string, enabled bool) error

	// Products
	ListProducts(ctx context.Context, opts *ProductQuery) ([]domain.Product, int, error)
	GetProduct(ctx context.Context, itemID string) (*domain.Product, error)
	ReplaceAccountProducts(ctx context.Context, nickname string, products []domain.Product) error

	// CommitSyncResult applies a finished sync atomically: the account row
	// is updated and, when the products part succeeded, the account's
	// product set is replaced wholesale.
	CommitSyncResult(ctx context.Context, a *domain.Account, products []domain.Product, replaceProducts bool) error

	// Users
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	DeleteUser(ctx context.Context, id string) error

	// Sync runs
	InsertSyncRun(ctx context.Context, accountID, trigger string) (id string, err error)
	CompleteSyncRun(ctx context.Context, run *domain.SyncRun) error
	ListSyncRuns(ctx context.Context, accountID string, limit int) ([]domain.SyncRun, error)
	ListLatestSyncRuns(ctx context.Context) ([]domain.SyncRun, error)

	// State
	GetSystemState(ctx context.Context) (*domain.SystemState, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}

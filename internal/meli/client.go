// Package meli provides a Mercado Livre REST API client behind interfaces
// for testability: OAuth code exchange, profile/product/sales fetching, and
// the account synchronization pipeline.
package meli

import (
	"context"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// Outcome is the result envelope returned by every network-facing operation.
// Success=false means Data is the zero value or an unmodified echo of the
// input; the pipeline never partially commits.
type Outcome[T any] struct {
	Data    T      `json:"data"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ok wraps a value in a successful Outcome.
func ok[T any](data T) Outcome[T] {
	return Outcome[T]{Data: data, Success: true}
}

// fail wraps an error message in a failed Outcome carrying data as echo.
func fail[T any](data T, msg string) Outcome[T] {
	return Outcome[T]{Data: data, Success: false, Error: msg}
}

// SyncResult is the payload of a successful account sync: the updated
// account, the freshly fetched product list for reconciliation, and the
// per-part provenance report.
type SyncResult struct {
	Account  domain.Account   `json:"account"`
	Products []domain.Product `json:"products"`
	Report   SyncReport       `json:"report"`
}

// SyncReport carries per-part provenance for one sync attempt. The profile
// part is mandatory; products and stats degrade instead of failing the run.
type SyncReport struct {
	Profile  PartResult `json:"profile"`
	Products PartResult `json:"products"`
	Stats    PartResult `json:"stats"`
}

// PartResult is the outcome of one part of a sync run.
type PartResult struct {
	Status domain.SyncPartStatus `json:"status"`
	Reason string                `json:"reason,omitempty"`
}

// API defines the operations the sync engine needs from a Mercado Livre
// client. One instance corresponds to one credential pair.
type API interface {
	GetUserInfo(ctx context.Context) Outcome[UserProfile]
	GetProducts(ctx context.Context, sellerID string) Outcome[[]domain.Product]
	GetSalesStats(ctx context.Context, sellerID string) Outcome[SalesStats]
	SyncAccount(ctx context.Context, account domain.Account) Outcome[SyncResult]
	RefreshAccessToken(ctx context.Context, clientID, clientSecret string) Outcome[TokenPayload]
}

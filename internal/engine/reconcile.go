package engine

import (
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// MergeAccount applies incoming provider data onto an already stored
// account. Internal identity (id, creation time) and local-only settings
// stay with the stored row; credentials only rotate when the incoming
// link carries them.
func MergeAccount(local, incoming domain.Account) domain.Account {
	merged := incoming
	merged.ID = local.ID
	merged.CreatedAt = local.CreatedAt
	merged.AutoSync = local.AutoSync

	if merged.AccessToken == "" {
		merged.AccessToken = local.AccessToken
	}
	if merged.RefreshToken == "" {
		merged.RefreshToken = local.RefreshToken
	}

	// Counters and sync provenance survive until the next sync overwrites
	// them with fresh values.
	if merged.Sales == 0 {
		merged.Sales = local.Sales
	}
	if merged.Products == 0 {
		merged.Products = local.Products
	}
	if merged.LastSync == "" {
		merged.LastSync = local.LastSync
	}
	if merged.Reputation == 0 {
		merged.Reputation = local.Reputation
	}

	return merged
}

// SameSeller reports whether two accounts refer to the same marketplace
// identity, keyed by nickname or by external user id.
func SameSeller(a, b domain.Account) bool {
	if a.Nickname != "" && a.Nickname == b.Nickname {
		return true
	}
	return a.UserID != 0 && a.UserID == b.UserID
}

// RekeyProducts stamps every product with the owning account's nickname.
// The provider-side fetch keys products by seller id; stored products are
// keyed by nickname so listings join against accounts without an extra
// lookup.
func RekeyProducts(products []domain.Product, nickname string) []domain.Product {
	out := make([]domain.Product, len(products))
	for i := range products {
		out[i] = products[i]
		out[i].Account = nickname
	}
	return out
}

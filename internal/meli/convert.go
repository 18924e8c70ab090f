package meli

import (
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// Fallback display text for items the provider returns incomplete.
const (
	fallbackTitle    = "Produto sem título"
	fallbackCategory = "Sem categoria"
)

// toProduct maps a raw item detail payload into a domain Product owned by
// ownerKey. Missing numerics default to 0 and missing strings to fixed
// fallback text. View counts are not reliably obtainable from the provider
// and always start at 0.
func toProduct(item *itemDetail, ownerKey string) domain.Product {
	p := domain.Product{
		ID:          item.ID,
		Title:       item.Title,
		Price:       item.Price,
		Stock:       item.AvailableQuantity,
		Status:      parseProductStatus(item.Status),
		Account:     ownerKey,
		Views:       0,
		Sales:       item.SoldQuantity,
		Category:    item.CategoryID,
		Description: item.Description,
	}

	if p.Title == "" {
		p.Title = fallbackTitle
	}
	if p.Category == "" {
		p.Category = fallbackCategory
	}

	for _, pic := range item.Pictures {
		if pic.URL != "" {
			p.Images = append(p.Images, pic.URL)
		}
	}

	return p
}

// parseProductStatus normalizes provider listing statuses. Anything that is
// not active or explicitly closed counts as paused.
func parseProductStatus(status string) domain.ProductStatus {
	switch status {
	case "active":
		return domain.ProductActive
	case "closed", "ended":
		return domain.ProductEnded
	default:
		return domain.ProductPaused
	}
}

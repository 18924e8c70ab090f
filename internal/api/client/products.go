package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// ProductFilters narrows a product listing request.
type ProductFilters struct {
	Account string
	Status  string
	Search  string
	Limit   int
	Offset  int
	OrderBy string
}

// productList mirrors the list-products response body.
type productList struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

// ListProducts returns products matching the filters plus the total count.
func (c *Client) ListProducts(ctx context.Context, f ProductFilters) ([]domain.Product, int, error) {
	q := url.Values{}
	if f.Account != "" {
		q.Set("account", f.Account)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Limit != 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset != 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.OrderBy != "" {
		q.Set("order_by", f.OrderBy)
	}

	path := "/api/v1/products"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var list productList
	if err := c.get(ctx, path, &list); err != nil {
		return nil, 0, err
	}
	return list.Products, list.Total, nil
}

// GetProduct returns a single product by its marketplace item ID.
func (c *Client) GetProduct(ctx context.Context, itemID string) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "/api/v1/products/"+itemID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

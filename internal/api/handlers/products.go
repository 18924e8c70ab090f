package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vieirasantos/meli-seller-hub/internal/store"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// ProductsProvider defines the store methods required by the products handler.
type ProductsProvider interface {
	ListProducts(ctx context.Context, opts *store.ProductQuery) ([]domain.Product, int, error)
	GetProduct(ctx context.Context, itemID string) (*domain.Product, error)
}

// ProductsHandler handles product query endpoints.
type ProductsHandler struct {
	store ProductsProvider
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(s ProductsProvider) *ProductsHandler {
	return &ProductsHandler{store: s}
}

// --- Input/Output types ---

// ListProductsInput is the input for listing products with optional filters.
type ListProductsInput struct {
	Account string `query:"account"  doc:"Filter by owning account nickname"`
	Status  string `query:"status"   doc:"Filter by listing status"          enum:"active,paused,ended,"`
	Search  string `query:"search"   doc:"Title substring, case-insensitive"`
	Limit   int    `query:"limit"    doc:"Number of results (default 50)"    minimum:"1" maximum:"500"`
	Offset  int    `query:"offset"   doc:"Pagination offset"                 minimum:"0"`
	OrderBy string `query:"order_by" doc:"Sort field"                        enum:"price,sales,views,title,"`
}

// ListProductsOutput is the response for listing products.
type ListProductsOutput struct {
	Body struct {
		Products []domain.Product `json:"products"`
		Total    int              `json:"total"`
		Limit    int              `json:"limit"`
		Offset   int              `json:"offset"`
	}
}

// GetProductInput is the input for getting a single product.
type GetProductInput struct {
	ID string `path:"id" doc:"Mercado Livre item ID (e.g. MLB123456789)"`
}

// GetProductOutput is the response for getting a single product.
type GetProductOutput struct {
	Body domain.Product
}

// --- Handlers ---

// ListProducts returns products with optional filters for account, status,
// title search, and pagination.
func (h *ProductsHandler) ListProducts(
	ctx context.Context,
	input *ListProductsInput,
) (*ListProductsOutput, error) {
	q := &store.ProductQuery{
		Offset:  input.Offset,
		OrderBy: input.OrderBy,
	}

	if input.Account != "" {
		q.Account = &input.Account
	}

	if input.Status != "" {
		q.Status = &input.Status
	}

	if input.Search != "" {
		q.Search = &input.Search
	}

	if input.Limit != 0 {
		q.Limit = input.Limit
	}

	products, total, err := h.store.ListProducts(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("product query failed: " + err.Error())
	}

	if products == nil {
		products = []domain.Product{}
	}

	resp := &ListProductsOutput{}
	resp.Body.Products = products
	resp.Body.Total = total
	resp.Body.Limit = q.Limit
	resp.Body.Offset = q.Offset

	return resp, nil
}

// GetProduct returns a single product by its marketplace item ID.
func (h *ProductsHandler) GetProduct(
	ctx context.Context,
	input *GetProductInput,
) (*GetProductOutput, error) {
	p, err := h.store.GetProduct(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("product not found")
		}
		return nil, huma.Error500InternalServerError("fetching product failed: " + err.Error())
	}

	return &GetProductOutput{Body: *p}, nil
}

// RegisterProductRoutes registers product endpoints with the Huma API.
func RegisterProductRoutes(api huma.API, h *ProductsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Description: "Returns products with optional filters for owning account, status, title search, and pagination.",
		Tags:        []string{"products"},
	}, h.ListProducts)

	huma.Register(api, huma.Operation{
		OperationID: "get-product",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}",
		Summary:     "Get a product by item ID",
		Tags:        []string{"products"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetProduct)
}
